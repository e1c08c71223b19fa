// Package chain wraps the substrate RPC client with the handful of queries
// and extrinsics needed to bring a parachain onto a relay chain.
package chain

import (
	"context"
	"fmt"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/logging"
)

type Client struct {
	api         *gsrpc.SubstrateAPI
	meta        *types.Metadata
	genesisHash types.Hash
	runtime     *types.RuntimeVersion

	fallbackTerms LeaseTerms
}

type dialOptions struct {
	fallbackTerms LeaseTerms
}

type DialOptionFunc func(*dialOptions)

// WithFallbackLeaseTerms sets the lease terms used when the runtime does not
// expose Slots.LeasePeriod and Slots.LeaseOffset.
func WithFallbackLeaseTerms(terms LeaseTerms) DialOptionFunc {
	return func(o *dialOptions) {
		o.fallbackTerms = terms
	}
}

// Dial connects to the node at url and loads the runtime metadata, runtime
// version and genesis hash needed to build and sign extrinsics.
func Dial(ctx context.Context, url string, opts ...DialOptionFunc) (*Client, error) {
	options := dialOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	c := &Client{api: api, fallbackTerms: options.fallbackTerms}
	if err := c.load(); err != nil {
		c.Close()
		return nil, err
	}
	logging.FromContext(ctx).Info("connected to node",
		zap.String("url", url),
		zap.Stringer("genesis", Hash(c.genesisHash)),
		zap.Uint32("spec_version", uint32(c.runtime.SpecVersion)),
	)
	return c, nil
}

func (c *Client) load() error {
	meta, err := c.api.RPC.State.GetMetadataLatest()
	if err != nil {
		return fmt.Errorf("fetching metadata: %w", err)
	}
	genesisHash, err := c.api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return fmt.Errorf("fetching genesis hash: %w", err)
	}
	runtime, err := c.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return fmt.Errorf("fetching runtime version: %w", err)
	}
	c.meta = meta
	c.genesisHash = genesisHash
	c.runtime = runtime
	return nil
}

// GenesisHash identifies the chain the client is connected to.
func (c *Client) GenesisHash() Hash {
	return Hash(c.genesisHash)
}

func (c *Client) Close() {
	if closer, ok := c.api.Client.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (c *Client) storage(target interface{}, pallet, item string, args ...[]byte) (bool, error) {
	key, err := types.CreateStorageKey(c.meta, pallet, item, args...)
	if err != nil {
		return false, fmt.Errorf("creating storage key %s.%s: %w", pallet, item, err)
	}
	ok, err := c.api.RPC.State.GetStorageLatest(key, target)
	if err != nil {
		return false, fmt.Errorf("querying %s.%s: %w", pallet, item, err)
	}
	return ok, nil
}

// NextFreeParaID returns the id the next Registrar.reserve will hand out.
func (c *Client) NextFreeParaID(ctx context.Context) (uint32, error) {
	var id types.U32
	if _, err := c.storage(&id, "Registrar", "NextFreeParaId"); err != nil {
		return 0, err
	}
	return uint32(id), nil
}

// AccountNonce returns the next nonce of acc, counting extrinsics that are
// still in the transaction pool.
func (c *Client) AccountNonce(ctx context.Context, acc Account) (uint64, error) {
	var nonce uint64
	if err := c.api.Client.Call(&nonce, "system_accountNextIndex", acc.Address()); err != nil {
		return 0, fmt.Errorf("querying nonce of %s: %w", acc.Address(), err)
	}
	return nonce, nil
}

func (c *Client) BestNumber(ctx context.Context) (uint32, error) {
	header, err := c.api.RPC.Chain.GetHeaderLatest()
	if err != nil {
		return 0, fmt.Errorf("fetching best header: %w", err)
	}
	return uint32(header.Number), nil
}

// LeaseTerms reads the slot lease period length and offset from the runtime
// constants, falling back to the configured terms.
func (c *Client) LeaseTerms(ctx context.Context) (LeaseTerms, error) {
	period, err := c.constantU32("Slots", "LeasePeriod")
	if err != nil {
		if c.fallbackTerms.Period == 0 {
			return LeaseTerms{}, err
		}
		logging.FromContext(ctx).Warn("using configured lease terms", zap.Error(err))
		return c.fallbackTerms, nil
	}
	offset, err := c.constantU32("Slots", "LeaseOffset")
	if err != nil {
		// runtimes predating LeaseOffset start leases at block zero
		offset = 0
	}
	return LeaseTerms{Period: period, Offset: offset}, nil
}

func (c *Client) constantU32(pallet, name string) (uint32, error) {
	if c.meta.Version != 14 {
		return 0, fmt.Errorf("%w: %s.%s (metadata v%d)", ErrMissingConstant, pallet, name, c.meta.Version)
	}
	for _, p := range c.meta.AsMetadataV14.Pallets {
		if string(p.Name) != pallet {
			continue
		}
		for _, constant := range p.Constants {
			if string(constant.Name) != name {
				continue
			}
			var v types.U32
			if err := codec.Decode(constant.Value, &v); err != nil {
				return 0, fmt.Errorf("decoding %s.%s: %w", pallet, name, err)
			}
			return uint32(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s", ErrMissingConstant, pallet, name)
}

// leaseSlot is one Option<(AccountId, Balance)> entry of Slots.Leases.
type leaseSlot struct {
	Some   bool
	Leaser types.AccountID
	Amount types.U128
}

func (l *leaseSlot) Decode(decoder scale.Decoder) error {
	b, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	switch b {
	case 0:
		return nil
	case 1:
		l.Some = true
	default:
		return fmt.Errorf("invalid option byte %d", b)
	}
	if err := decoder.Decode(&l.Leaser); err != nil {
		return err
	}
	return decoder.Decode(&l.Amount)
}

func anyLease(raw []byte) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}
	var slots []leaseSlot
	if err := codec.Decode(raw, &slots); err != nil {
		return false, fmt.Errorf("decoding leases: %w", err)
	}
	for _, s := range slots {
		if s.Some {
			return true, nil
		}
	}
	return false, nil
}

// HasLease reports whether para holds a lease for the current or any future
// lease period.
func (c *Client) HasLease(ctx context.Context, para uint32) (bool, error) {
	arg, err := codec.Encode(types.NewU32(para))
	if err != nil {
		return false, err
	}
	key, err := types.CreateStorageKey(c.meta, "Slots", "Leases", arg)
	if err != nil {
		return false, fmt.Errorf("creating storage key Slots.Leases: %w", err)
	}
	raw, err := c.api.RPC.State.GetStorageRawLatest(key)
	if err != nil {
		return false, fmt.Errorf("querying leases of para %d: %w", para, err)
	}
	if raw == nil {
		return false, nil
	}
	return anyLease(*raw)
}

type electionCandidate struct {
	Who     types.AccountID
	Deposit types.U128
}

// CandidateCount returns the number of council candidates, the hint
// PhragmenElection.submit_candidacy expects.
func (c *Client) CandidateCount(ctx context.Context) (uint32, error) {
	var candidates []electionCandidate
	if _, err := c.storage(&candidates, "PhragmenElection", "Candidates"); err != nil {
		return 0, err
	}
	return uint32(len(candidates)), nil
}

// SubscribeNewHeads streams new block headers until ctx is done or the
// subscription fails; the channel is closed in both cases.
func (c *Client) SubscribeNewHeads(ctx context.Context) (<-chan Header, error) {
	sub, err := c.api.RPC.Chain.SubscribeNewHeads()
	if err != nil {
		return nil, fmt.Errorf("subscribing to new heads: %w", err)
	}
	logger := logging.FromContext(ctx)
	out := make(chan Header)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				logger.Warn("new heads subscription failed", zap.Error(err))
				return
			case h := <-sub.Chan():
				header := Header{Number: uint32(h.Number), ParentHash: Hash(h.ParentHash)}
				select {
				case out <- header:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
