package registrar

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/chain"
	"github.com/mangata-finance/parachain-ops/journal"
	"github.com/mangata-finance/parachain-ops/logging"
)

//go:generate mockgen -package mocks -destination mocks/chain.go . Chain

// Chain is the part of the relay chain the registrar talks to.
type Chain interface {
	NextFreeParaID(ctx context.Context) (uint32, error)
	AccountNonce(ctx context.Context, acc chain.Account) (uint64, error)
	BestNumber(ctx context.Context) (uint32, error)
	LeaseTerms(ctx context.Context) (chain.LeaseTerms, error)
	HasLease(ctx context.Context, para uint32) (bool, error)
	CandidateCount(ctx context.Context) (uint32, error)
	SubscribeNewHeads(ctx context.Context) (<-chan chain.Header, error)

	Reserve(ctx context.Context, tx chain.TxOptions) (chain.Hash, error)
	ReserveBatch(ctx context.Context, count int, tx chain.TxOptions) (chain.Hash, error)
	Register(ctx context.Context, para uint32, genesis chain.Genesis, tx chain.TxOptions) (chain.Hash, error)
	ScheduleParaInit(ctx context.Context, para uint32, genesis chain.Genesis, tx chain.TxOptions) (chain.Hash, error)
	ForceLease(ctx context.Context, lease chain.Lease, tx chain.TxOptions) (chain.Hash, error)
	ProposeForceLease(ctx context.Context, lease chain.Lease, threshold uint32, tx chain.TxOptions) (chain.Hash, error)
	SubmitCandidacy(ctx context.Context, candidates uint32, tx chain.TxOptions) (chain.Hash, error)
	Vote(ctx context.Context, candidates [][]byte, stake *big.Int, tx chain.TxOptions) (chain.Hash, error)
}

var (
	ErrReservationStalled = errors.New("reservation makes no progress")
	ErrSubscriptionClosed = errors.New("new heads subscription closed")
	ErrZeroLeasePeriod    = errors.New("lease period length is zero")
	ErrNoParas            = errors.New("no para to register")
)

// Para is a parachain to bring onto the relay chain.
type Para struct {
	ID        uint32
	StateFile string
	WasmFile  string
}

// Accounts sign the extrinsics of a run. The voter is only used to elect
// the signer into the council.
type Accounts struct {
	Signer chain.Account
	Voter  chain.Account
}

type leaseKey struct {
	para, period uint32
}

// Registrar reserves para ids, registers genesis data and keeps leases in
// place for a fixed set of paras.
type Registrar struct {
	chain    Chain
	cfg      Config
	paras    []Para
	accounts Accounts

	journal     *journal.Journal
	ownsJournal bool
	leases      *lru.Cache
	sleep       func(context.Context, time.Duration) error
	runID       uuid.UUID
}

type newRegistrarOptions struct {
	journal *journal.Journal
	sleep   func(context.Context, time.Duration) error
}

type OptionFunc func(*newRegistrarOptions)

// WithJournal records progress in j instead of an in-memory journal.
func WithJournal(j *journal.Journal) OptionFunc {
	return func(opts *newRegistrarOptions) {
		opts.journal = j
	}
}

// WithSleep replaces the function used for the configured delays.
func WithSleep(sleep func(context.Context, time.Duration) error) OptionFunc {
	return func(opts *newRegistrarOptions) {
		opts.sleep = sleep
	}
}

func New(c Chain, cfg Config, paras []Para, accounts Accounts, opts ...OptionFunc) (*Registrar, error) {
	if len(paras) == 0 {
		return nil, ErrNoParas
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := newRegistrarOptions{sleep: sleep}
	for _, opt := range opts {
		opt(&options)
	}

	r := &Registrar{
		chain:    c,
		cfg:      cfg,
		paras:    paras,
		accounts: accounts,
		journal:  options.journal,
		sleep:    options.sleep,
		runID:    uuid.New(),
	}
	if r.journal == nil {
		j, err := journal.OpenInMemory()
		if err != nil {
			return nil, err
		}
		r.journal = j
		r.ownsJournal = true
	}
	size := cfg.Lease.CacheSize
	if size < 1 {
		size = 1
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating lease cache: %w", err)
	}
	r.leases = cache
	return r, nil
}

func (r *Registrar) Close() error {
	if r.ownsJournal {
		return r.journal.Close()
	}
	return nil
}

// Run executes a full registration: optional council bootstrap, reservation,
// registration and the configured lease handling. With lease watching
// enabled it only returns on error or when ctx is done.
func (r *Registrar) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx).Named("registrar").With(zap.Stringer("run", r.runID))
	ctx = logging.NewContext(ctx, logger)
	logger.Info("starting", zap.Object("config", r.cfg), zap.String("signer", r.accounts.Signer.Address()))

	if r.cfg.Council.Bootstrap {
		if err := r.BootstrapCouncil(ctx); err != nil {
			return fmt.Errorf("bootstrapping council: %w", err)
		}
	}
	if err := r.Reserve(ctx); err != nil {
		return err
	}
	if err := r.waitBlocks(ctx, r.cfg.SettleBlocks); err != nil {
		return err
	}
	if err := r.RegisterParas(ctx); err != nil {
		return err
	}
	if r.cfg.Lease.Force {
		logger.Info("waiting before forcing leases", zap.Duration("delay", r.cfg.Lease.Delay))
		if err := r.sleep(ctx, r.cfg.Lease.Delay); err != nil {
			return err
		}
		if err := r.ForceLeases(ctx); err != nil {
			return err
		}
	}
	if r.cfg.Lease.Watch {
		return r.Watch(ctx)
	}
	logger.Info("done")
	return nil
}

func (r *Registrar) tx(signer chain.Account, nonce *uint64) chain.TxOptions {
	return chain.TxOptions{Signer: signer, Nonce: nonce, Wait: r.cfg.txWait()}
}

// afterSubmit waits for the next block when extrinsics are not watched.
func (r *Registrar) afterSubmit(ctx context.Context) error {
	if r.cfg.Wait != WaitBlock {
		return nil
	}
	_, err := WaitForNewBlock(ctx, r.chain)
	return err
}

func (r *Registrar) maxTarget() uint32 {
	var max uint32
	for _, p := range r.paras {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
