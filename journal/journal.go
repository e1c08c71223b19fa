// Package journal persists the steps a registrar run has completed, so that a
// restarted run does not submit registrations or leases twice.
package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	xdr "github.com/nullstyle/go-xdr/xdr3"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/logging"
)

var ErrNotFound = leveldb.ErrNotFound

type Step uint32

const (
	StepNone Step = iota
	StepReserved
	StepRegistered
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepReserved:
		return "reserved"
	case StepRegistered:
		return "registered"
	default:
		return fmt.Sprintf("step(%d)", uint32(s))
	}
}

type Record struct {
	ParaID uint32
	Step   Step
	Period uint32
	TxHash []byte
	At     int64
}

func (r Record) Time() time.Time {
	return time.Unix(r.At, 0)
}

type Journal struct {
	db      *leveldb.DB
	now     func() time.Time
	genesis []byte
}

// Open opens (or creates) a journal stored in dir for the chain with the
// given genesis hash. Records written for any other chain are dropped.
func Open(ctx context.Context, dir string, genesis []byte) (*Journal, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal @ %s: %w", dir, err)
	}
	j := &Journal{db: db, now: time.Now}
	if err := j.bind(ctx, genesis); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// OpenInMemory opens a journal that lives as long as the process. It is not
// bound to a chain.
func OpenInMemory() (*Journal, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory journal: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func paraKey(para uint32) []byte {
	return []byte(fmt.Sprintf("para/%010d", para))
}

func leaseKey(para, period uint32) []byte {
	return []byte(fmt.Sprintf("lease/%010d/%010d", para, period))
}

// MarkReserved records that para was handed out to the signer.
func (j *Journal) MarkReserved(ctx context.Context, para uint32, txHash []byte) error {
	return j.advance(ctx, para, StepReserved, txHash)
}

// MarkRegistered records that genesis data was submitted for para.
func (j *Journal) MarkRegistered(ctx context.Context, para uint32, txHash []byte) error {
	return j.advance(ctx, para, StepRegistered, txHash)
}

// advance stores step for para unless a later step is already recorded.
func (j *Journal) advance(ctx context.Context, para uint32, step Step, txHash []byte) error {
	trans, err := j.db.OpenTransaction()
	if err != nil {
		return err
	}

	current, err := get(trans.Get, paraKey(para))
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		trans.Discard()
		return fmt.Errorf("querying para %d: %w", para, err)
	case current.Step >= step:
		trans.Discard()
		logging.FromContext(ctx).Debug("journal already ahead",
			zap.Uint32("para", para), zap.Stringer("have", current.Step), zap.Stringer("want", step))
		return nil
	}

	rec := Record{ParaID: para, Step: step, TxHash: txHash, At: j.now().Unix()}
	data, err := serialize(rec)
	if err != nil {
		trans.Discard()
		return err
	}
	if err := trans.Put(paraKey(para), data, &opt.WriteOptions{Sync: true}); err != nil {
		trans.Discard()
		return fmt.Errorf("storing para %d: %w", para, err)
	}
	return trans.Commit()
}

// Step returns the last recorded step for para, StepNone if there is none.
func (j *Journal) Step(ctx context.Context, para uint32) (Step, error) {
	rec, err := get(j.db.Get, paraKey(para))
	switch {
	case errors.Is(err, ErrNotFound):
		return StepNone, nil
	case err != nil:
		return StepNone, fmt.Errorf("get para %d from journal: %w", para, err)
	}
	return rec.Step, nil
}

// MarkLeased records that a lease starting at period was forced for para.
func (j *Journal) MarkLeased(ctx context.Context, para, period uint32, txHash []byte) error {
	rec := Record{ParaID: para, Period: period, TxHash: txHash, At: j.now().Unix()}
	data, err := serialize(rec)
	if err != nil {
		return err
	}
	if err := j.db.Put(leaseKey(para, period), data, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("storing lease of para %d: %w", para, err)
	}
	return nil
}

func (j *Journal) Leased(ctx context.Context, para, period uint32) (bool, error) {
	return j.db.Has(leaseKey(para, period), nil)
}

// Paras lists the para records ordered by para id.
func (j *Journal) Paras(ctx context.Context) ([]Record, error) {
	iter := j.db.NewIterator(util.BytesPrefix([]byte("para/")), nil)
	defer iter.Release()

	var records []Record
	for iter.Next() {
		var rec Record
		if _, err := xdr.Unmarshal(bytes.NewReader(iter.Value()), &rec); err != nil {
			return nil, fmt.Errorf("failed to deserialize %s: %w", iter.Key(), err)
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}

func get(getter func([]byte, *opt.ReadOptions) ([]byte, error), key []byte) (*Record, error) {
	data, err := getter(key, nil)
	if err != nil {
		return nil, err
	}
	rec := &Record{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize: %w", err)
	}
	return rec, nil
}

func serialize(rec Record) ([]byte, error) {
	var dataBuf bytes.Buffer
	if _, err := xdr.Marshal(&dataBuf, rec); err != nil {
		return nil, fmt.Errorf("serialization failure: %w", err)
	}
	return dataBuf.Bytes(), nil
}
