package registrar

import (
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/mangata-finance/parachain-ops/chain"
)

// Mode selects how genesis data is put on chain.
type Mode string

const (
	// ModeRegister uses Registrar.register; the signer must own the reserved id.
	ModeRegister Mode = "register"
	// ModeSudo uses ParasSudoWrapper.sudo_schedule_para_initialize via sudo.
	ModeSudo Mode = "sudo"
)

type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyBatch      Strategy = "batch"
	StrategyPipelined  Strategy = "pipelined"
)

type WaitMode string

const (
	WaitFinalized WaitMode = "finalized"
	WaitInBlock   WaitMode = "in-block"
	// WaitBlock submits without watching and waits for the next block instead.
	WaitBlock WaitMode = "block"
)

type Origin string

const (
	OriginSudo    Origin = "sudo"
	OriginCouncil Origin = "council"
)

func DefaultConfig() Config {
	return Config{
		Mode:               ModeRegister,
		Strategy:           StrategySequential,
		Wait:               WaitFinalized,
		ReserveConcurrency: 16,
		MaxStalls:          3,
		SettleBlocks:       2,
		Lease: LeaseConfig{
			Origin:    OriginSudo,
			Periods:   999,
			Amount:    NewBalance(new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)),
			Delay:     4 * time.Minute,
			CacheSize: 1024,
		},
		Council: CouncilConfig{
			Threshold:     1,
			ElectionDelay: 3 * time.Minute,
		},
	}
}

//nolint:lll
type Config struct {
	Mode               Mode     `long:"mode"                description:"How genesis data is registered"                          choice:"register" choice:"sudo"`
	Strategy           Strategy `long:"reserve-strategy"    description:"How missing para ids are reserved"                        choice:"sequential" choice:"batch" choice:"pipelined"`
	Wait               WaitMode `long:"wait"                description:"What to wait for after submitting an extrinsic"           choice:"finalized" choice:"in-block" choice:"block"`
	ReserveConcurrency int      `long:"reserve-concurrency" description:"Maximum in-flight reservations with the pipelined strategy"`
	MaxStalls          int      `long:"reserve-max-stalls"  description:"Reservation rounds without progress before giving up"`
	SettleBlocks       int      `long:"settle-blocks"       description:"New blocks to wait for between reservation and registration"`

	Lease   LeaseConfig   `group:"Lease"   namespace:"lease"`
	Council CouncilConfig `group:"Council" namespace:"council"`
}

//nolint:lll
type LeaseConfig struct {
	Force     bool          `long:"force"      description:"Force a slot lease for every para after registration"`
	Watch     bool          `long:"watch"      description:"Keep following new blocks and force a lease whenever one is missing"`
	Origin    Origin        `long:"origin"     description:"Origin dispatching Slots.force_lease"                   choice:"sudo" choice:"council"`
	Periods   uint32        `long:"periods"    description:"Number of lease periods to grant"`
	Amount    *Balance      `long:"amount"     description:"Deposit recorded for the lease, in plancks"`
	Delay     time.Duration `long:"delay"      description:"Time to wait after registration before forcing leases"`
	Period    uint32        `long:"period"     description:"Lease period length in blocks, used when the runtime does not expose it"`
	Offset    uint32        `long:"offset"     description:"Lease offset in blocks, used together with --lease.period"`
	CacheSize int           `long:"cache-size" description:"Number of (para, period) lease lookups to remember"`
}

//nolint:lll
type CouncilConfig struct {
	Bootstrap     bool          `long:"bootstrap"      description:"Elect the signer into the council before registering"`
	Threshold     uint32        `long:"threshold"      description:"Council approval threshold for force_lease proposals"`
	ElectionDelay time.Duration `long:"election-delay" description:"Time to wait for the election round after voting"`
}

func (c *Config) Validate() error {
	if c.MaxStalls < 1 {
		return fmt.Errorf("reserve-max-stalls must be at least 1, got %d", c.MaxStalls)
	}
	if c.Strategy == StrategyPipelined && c.ReserveConcurrency < 1 {
		return fmt.Errorf("reserve-concurrency must be at least 1, got %d", c.ReserveConcurrency)
	}
	if (c.Lease.Force || c.Lease.Watch || c.Council.Bootstrap) && (c.Lease.Amount == nil || c.Lease.Amount.Int().Sign() < 0) {
		return fmt.Errorf("lease.amount must be a non-negative amount")
	}
	if c.Lease.Origin == OriginCouncil && c.Council.Threshold == 0 {
		return fmt.Errorf("council.threshold must be at least 1")
	}
	return nil
}

func (c *Config) txWait() chain.Wait {
	switch c.Wait {
	case WaitInBlock:
		return chain.WaitInBlock
	case WaitBlock:
		return chain.WaitNone
	default:
		return chain.WaitFinalized
	}
}

// implement zap.ObjectMarshaler interface.
func (c Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("mode", string(c.Mode))
	enc.AddString("reserve-strategy", string(c.Strategy))
	enc.AddString("wait", string(c.Wait))
	enc.AddInt("settle-blocks", c.SettleBlocks)
	enc.AddBool("lease-force", c.Lease.Force)
	enc.AddBool("lease-watch", c.Lease.Watch)
	enc.AddString("lease-origin", string(c.Lease.Origin))
	enc.AddUint32("lease-periods", c.Lease.Periods)
	if c.Lease.Amount != nil {
		enc.AddString("lease-amount", c.Lease.Amount.String())
	}
	enc.AddBool("council-bootstrap", c.Council.Bootstrap)
	return nil
}

// Balance is an on-chain amount given on the command line in plancks.
type Balance big.Int

func NewBalance(i *big.Int) *Balance {
	return (*Balance)(new(big.Int).Set(i))
}

// UnmarshalFlag implements flags.Unmarshaler.
func (b *Balance) UnmarshalFlag(value string) error {
	i, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", value)
	}
	b.Int().Set(i)
	return nil
}

// MarshalFlag implements flags.Marshaler.
func (b *Balance) MarshalFlag() (string, error) {
	return b.String(), nil
}

func (b *Balance) Int() *big.Int {
	return (*big.Int)(b)
}

func (b *Balance) String() string {
	return b.Int().String()
}
