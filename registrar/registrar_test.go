package registrar_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mangata-finance/parachain-ops/chain"
	"github.com/mangata-finance/parachain-ops/journal"
	"github.com/mangata-finance/parachain-ops/logging"
	"github.com/mangata-finance/parachain-ops/registrar"
	"github.com/mangata-finance/parachain-ops/registrar/mocks"
)

func testContext(t *testing.T) context.Context {
	return logging.NewContext(context.Background(), zaptest.NewLogger(t))
}

func testAccounts(t *testing.T) registrar.Accounts {
	signer, err := chain.NewAccount("//Alice", chain.DefaultNetwork)
	require.NoError(t, err)
	voter, err := chain.NewAccount("//Bob", chain.DefaultNetwork)
	require.NoError(t, err)
	return registrar.Accounts{Signer: signer, Voter: voter}
}

func testPara(t *testing.T, id uint32) registrar.Para {
	dir := t.TempDir()
	state := filepath.Join(dir, "genesis-state")
	wasm := filepath.Join(dir, "genesis-wasm")
	require.NoError(t, os.WriteFile(state, []byte("0x0102"), 0o600))
	require.NoError(t, os.WriteFile(wasm, []byte("0x0304"), 0o600))
	return registrar.Para{ID: id, StateFile: state, WasmFile: wasm}
}

func testConfig() registrar.Config {
	cfg := registrar.DefaultConfig()
	cfg.SettleBlocks = 0
	return cfg
}

// heads returns a closed channel holding headers with the given numbers.
func heads(numbers ...uint32) <-chan chain.Header {
	ch := make(chan chain.Header, len(numbers))
	for _, n := range numbers {
		ch <- chain.Header{Number: n}
	}
	close(ch)
	return ch
}

func noSleep(context.Context, time.Duration) error { return nil }

func newRegistrar(
	t *testing.T,
	c registrar.Chain,
	cfg registrar.Config,
	paras []registrar.Para,
	opts ...registrar.OptionFunc,
) *registrar.Registrar {
	opts = append([]registrar.OptionFunc{registrar.WithSleep(noSleep)}, opts...)
	r, err := registrar.New(c, cfg, paras, testAccounts(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, r.Close()) })
	return r
}

func TestNewRequiresParas(t *testing.T) {
	_, err := registrar.New(nil, testConfig(), nil, registrar.Accounts{})
	require.ErrorIs(t, err, registrar.ErrNoParas)
}

func TestLeasePeriod(t *testing.T) {
	tests := []struct {
		name                  string
		block, offset, length uint32
		want                  uint32
	}{
		{name: "genesis", block: 0, length: 10, want: 0},
		{name: "inside first period", block: 9, length: 10, want: 0},
		{name: "period boundary", block: 10, length: 10, want: 1},
		{name: "with offset", block: 25, offset: 5, length: 10, want: 2},
		{name: "before offset", block: 3, offset: 5, length: 10, want: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := registrar.LeasePeriod(tc.block, tc.offset, tc.length)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := registrar.LeasePeriod(10, 0, 0)
	require.ErrorIs(t, err, registrar.ErrZeroLeasePeriod)
}

func TestWaitForNewBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)

	c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(7, 8, 9), nil)
	head, err := registrar.WaitForNewBlock(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, uint32(8), head.Number)

	c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(7), nil)
	_, err = registrar.WaitForNewBlock(context.Background(), c)
	require.ErrorIs(t, err, registrar.ErrSubscriptionClosed)
}

func TestReserveSequential(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	j, err := journal.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })

	paras := []registrar.Para{testPara(t, 2000)}
	r := newRegistrar(t, c, testConfig(), paras, registrar.WithJournal(j))

	gomock.InOrder(
		c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(1999), nil),
		c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(chain.Hash{}, nil),
		c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2000), nil),
		c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(chain.Hash{}, nil),
		c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2001), nil),
	)
	ctx := testContext(t)
	require.NoError(t, r.Reserve(ctx))

	step, err := j.Step(ctx, 2000)
	require.NoError(t, err)
	require.Equal(t, journal.StepReserved, step)
}

func TestReserveNothingMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	r := newRegistrar(t, c, testConfig(), []registrar.Para{testPara(t, 2000)})

	c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2005), nil)
	require.NoError(t, r.Reserve(testContext(t)))
}

func TestReserveBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Strategy = registrar.StrategyBatch
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000), testPara(t, 2001)})

	gomock.InOrder(
		c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(1998), nil),
		c.EXPECT().ReserveBatch(gomock.Any(), 4, gomock.Any()).Return(chain.Hash{}, nil),
		c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2002), nil),
	)
	require.NoError(t, r.Reserve(testContext(t)))
}

func TestReservePipelined(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Strategy = registrar.StrategyPipelined
	cfg.ReserveConcurrency = 2
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2002)})

	var (
		mu     sync.Mutex
		nonces []uint64
	)
	c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2000), nil)
	c.EXPECT().AccountNonce(gomock.Any(), gomock.Any()).Return(uint64(7), nil)
	c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, tx chain.TxOptions) (chain.Hash, error) {
			mu.Lock()
			defer mu.Unlock()
			nonces = append(nonces, *tx.Nonce)
			return chain.Hash{}, nil
		},
	)
	c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(1, 2), nil)
	c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2003), nil)

	require.NoError(t, r.Reserve(testContext(t)))
	require.ElementsMatch(t, []uint64{7, 8, 9}, nonces)
}

func TestReservePipelinedAggregatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Strategy = registrar.StrategyPipelined
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2001)})

	c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2000), nil)
	c.EXPECT().AccountNonce(gomock.Any(), gomock.Any()).Return(uint64(0), nil)
	c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Times(2).Return(chain.Hash{}, chain.ErrTxInvalid)

	err := r.Reserve(testContext(t))
	require.ErrorIs(t, err, chain.ErrTxInvalid)
	require.Contains(t, err.Error(), "2 errors occurred")
}

func TestReserveStalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.MaxStalls = 2
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)})

	c.EXPECT().NextFreeParaID(gomock.Any()).Times(3).Return(uint32(1999), nil)
	c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Times(2).Return(chain.Hash{}, nil)

	require.ErrorIs(t, r.Reserve(testContext(t)), registrar.ErrReservationStalled)
}

func TestReserveFailureIgnoredInSudoMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Mode = registrar.ModeSudo
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)})

	c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(1999), nil)
	c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(chain.Hash{}, chain.ErrTxDropped)

	require.NoError(t, r.Reserve(testContext(t)))
}

func TestReserveFailurePropagatesInRegisterMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	r := newRegistrar(t, c, testConfig(), []registrar.Para{testPara(t, 2000)})

	c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(1999), nil)
	c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(chain.Hash{}, chain.ErrTxDropped)

	require.ErrorIs(t, r.Reserve(testContext(t)), chain.ErrTxDropped)
}

func TestRegisterParas(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	j, err := journal.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })

	paras := []registrar.Para{testPara(t, 2000), testPara(t, 2001)}
	r := newRegistrar(t, c, testConfig(), paras, registrar.WithJournal(j))

	want := chain.Genesis{Head: []byte{1, 2}, Code: []byte{3, 4}}
	gomock.InOrder(
		c.EXPECT().Register(gomock.Any(), uint32(2000), want, gomock.Any()).Return(chain.Hash{1}, nil),
		c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(1, 2), nil),
		c.EXPECT().Register(gomock.Any(), uint32(2001), want, gomock.Any()).Return(chain.Hash{2}, nil),
	)
	ctx := testContext(t)
	require.NoError(t, r.RegisterParas(ctx))

	records, err := j.Paras(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		require.Equal(t, journal.StepRegistered, rec.Step)
	}

	// journaled paras are not submitted again
	require.NoError(t, r.RegisterParas(ctx))
}

func TestRegisterParasSudo(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Mode = registrar.ModeSudo
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)})

	c.EXPECT().ScheduleParaInit(gomock.Any(), uint32(2000), gomock.Any(), gomock.Any()).Return(chain.Hash{}, nil)
	require.NoError(t, r.RegisterParas(testContext(t)))
}

func TestRegisterParasMissingGenesis(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	para := registrar.Para{ID: 2000, StateFile: filepath.Join(t.TempDir(), "missing"), WasmFile: "missing"}
	r := newRegistrar(t, c, testConfig(), []registrar.Para{para})

	require.ErrorIs(t, r.RegisterParas(testContext(t)), os.ErrNotExist)
}

func TestForceLeases(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Lease.Periods = 5
	cfg.Lease.Amount = registrar.NewBalance(big.NewInt(42))
	accounts := testAccounts(t)
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)})

	c.EXPECT().BestNumber(gomock.Any()).Return(uint32(125), nil)
	c.EXPECT().LeaseTerms(gomock.Any()).Return(chain.LeaseTerms{Period: 50, Offset: 20}, nil)
	c.EXPECT().ForceLease(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, lease chain.Lease, _ chain.TxOptions) (chain.Hash, error) {
			require.Equal(t, uint32(2000), lease.ParaID)
			require.Equal(t, uint32(2), lease.FirstPeriod)
			require.Equal(t, uint32(5), lease.Periods)
			require.Equal(t, int64(42), lease.Amount.Int64())
			require.Equal(t, accounts.Signer.PublicKey(), lease.Leaser)
			return chain.Hash{}, nil
		},
	)
	require.NoError(t, r.ForceLeases(testContext(t)))
}

func TestForceLeasesThroughCouncil(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Lease.Origin = registrar.OriginCouncil
	cfg.Lease.Period = 10
	cfg.Council.Threshold = 3
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)})

	c.EXPECT().BestNumber(gomock.Any()).Return(uint32(35), nil)
	c.EXPECT().ProposeForceLease(gomock.Any(), gomock.Any(), uint32(3), gomock.Any()).DoAndReturn(
		func(_ context.Context, lease chain.Lease, _ uint32, _ chain.TxOptions) (chain.Hash, error) {
			require.Equal(t, uint32(3), lease.FirstPeriod)
			return chain.Hash{}, nil
		},
	)
	require.NoError(t, r.ForceLeases(testContext(t)))
}

func TestWatchForcesMissingLeases(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Lease.Period = 100
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000), testPara(t, 2001)})

	c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(10, 11, 12), nil)
	c.EXPECT().HasLease(gomock.Any(), uint32(2000)).Return(true, nil)
	c.EXPECT().HasLease(gomock.Any(), uint32(2001)).Return(false, nil)
	c.EXPECT().ForceLease(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, lease chain.Lease, _ chain.TxOptions) (chain.Hash, error) {
			require.Equal(t, uint32(2001), lease.ParaID)
			require.Equal(t, uint32(0), lease.FirstPeriod)
			return chain.Hash{}, nil
		},
	)

	require.ErrorIs(t, r.Watch(testContext(t)), registrar.ErrSubscriptionClosed)
}

func TestWatchStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	r := newRegistrar(t, c, testConfig(), []registrar.Para{testPara(t, 2000)})

	c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(make(chan chain.Header), nil)
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()
	require.ErrorIs(t, r.Watch(ctx), context.Canceled)
}

func TestBootstrapCouncil(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Council.Bootstrap = true
	accounts := testAccounts(t)

	var slept []time.Duration
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)},
		registrar.WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	gomock.InOrder(
		c.EXPECT().CandidateCount(gomock.Any()).Return(uint32(4), nil),
		c.EXPECT().SubmitCandidacy(gomock.Any(), uint32(4), gomock.Any()).Return(chain.Hash{}, nil),
		c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(1, 2), nil),
		c.EXPECT().Vote(gomock.Any(), [][]byte{accounts.Signer.PublicKey()}, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ [][]byte, stake *big.Int, tx chain.TxOptions) (chain.Hash, error) {
				require.Equal(t, cfg.Lease.Amount.Int(), stake)
				require.Equal(t, accounts.Voter.Address(), tx.Signer.Address())
				return chain.Hash{}, nil
			}),
		c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(3, 4), nil),
	)
	require.NoError(t, r.BootstrapCouncil(testContext(t)))
	require.Equal(t, []time.Duration{cfg.Council.ElectionDelay}, slept)
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.SettleBlocks = 1
	cfg.Lease.Force = true
	cfg.Lease.Period = 10
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)})

	gomock.InOrder(
		c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(1999), nil),
		c.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(chain.Hash{}, nil),
		c.EXPECT().NextFreeParaID(gomock.Any()).Return(uint32(2001), nil),
		c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(1, 2), nil),
		c.EXPECT().Register(gomock.Any(), uint32(2000), gomock.Any(), gomock.Any()).Return(chain.Hash{}, nil),
		c.EXPECT().BestNumber(gomock.Any()).Return(uint32(3), nil),
		c.EXPECT().ForceLease(gomock.Any(), gomock.Any(), gomock.Any()).Return(chain.Hash{}, nil),
	)
	require.NoError(t, r.Run(testContext(t)))
}

func TestWaitBlockModeWaitsAfterSubmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	cfg := testConfig()
	cfg.Wait = registrar.WaitBlock
	r := newRegistrar(t, c, cfg, []registrar.Para{testPara(t, 2000)})

	gomock.InOrder(
		c.EXPECT().Register(gomock.Any(), uint32(2000), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uint32, _ chain.Genesis, tx chain.TxOptions) (chain.Hash, error) {
				require.Equal(t, chain.WaitNone, tx.Wait)
				return chain.Hash{}, nil
			}),
		c.EXPECT().SubscribeNewHeads(gomock.Any()).Return(heads(1, 2), nil),
	)
	require.NoError(t, r.RegisterParas(testContext(t)))
}

func TestRegisterAgainAfterChainReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockChain(ctrl)
	ctx := testContext(t)
	dir := t.TempDir()

	j, err := journal.Open(ctx, dir, chain.Hash{1}.Bytes())
	require.NoError(t, err)
	require.NoError(t, j.MarkRegistered(ctx, 2000, []byte{0x01}))
	require.NoError(t, j.Close())

	// the network was restarted from a new genesis
	j, err = journal.Open(ctx, dir, chain.Hash{2}.Bytes())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	r := newRegistrar(t, c, testConfig(), []registrar.Para{testPara(t, 2000)}, registrar.WithJournal(j))

	c.EXPECT().Register(gomock.Any(), uint32(2000), gomock.Any(), gomock.Any()).Times(1).Return(chain.Hash{}, nil)
	require.NoError(t, r.RegisterParas(ctx))
}
