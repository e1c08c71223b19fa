package journal

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb/opt"
	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/logging"
)

var genesisKey = []byte("meta/genesis")

// Genesis returns the genesis hash of the chain the journal is bound to.
func (j *Journal) Genesis() []byte {
	return j.genesis
}

// bind ties the journal to the chain identified by genesis. A journal
// written for another chain, or before journals were bound to a chain, is
// emptied in the same transaction that records the new genesis.
func (j *Journal) bind(ctx context.Context, genesis []byte) error {
	if len(genesis) == 0 {
		return errors.New("binding journal: empty genesis hash")
	}
	log := logging.FromContext(ctx).With(zap.String("genesis", "0x"+hex.EncodeToString(genesis)))

	trans, err := j.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("opening journal transaction: %w", err)
	}
	bound, err := trans.Get(genesisKey, nil)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		trans.Discard()
		return fmt.Errorf("reading journal genesis: %w", err)
	case bytes.Equal(bound, genesis):
		trans.Discard()
		j.genesis = append([]byte(nil), genesis...)
		return nil
	}

	var stale [][]byte
	iter := trans.NewIterator(nil, nil)
	for iter.Next() {
		if !bytes.Equal(iter.Key(), genesisKey) {
			stale = append(stale, append([]byte(nil), iter.Key()...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		trans.Discard()
		return fmt.Errorf("reading journal: %w", err)
	}
	for _, key := range stale {
		if err := trans.Delete(key, nil); err != nil {
			trans.Discard()
			return fmt.Errorf("dropping key %q: %w", key, err)
		}
	}
	if err := trans.Put(genesisKey, genesis, &opt.WriteOptions{Sync: true}); err != nil {
		trans.Discard()
		return fmt.Errorf("storing journal genesis: %w", err)
	}
	if err := trans.Commit(); err != nil {
		return fmt.Errorf("committing journal transaction: %w", err)
	}
	j.genesis = append([]byte(nil), genesis...)

	if len(stale) > 0 {
		log.Warn("journal belonged to another chain, records dropped",
			zap.String("previous", "0x"+hex.EncodeToString(bound)),
			zap.Int("records", len(stale)),
		)
	} else {
		log.Debug("journal bound to chain")
	}
	return nil
}
