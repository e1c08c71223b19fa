package chain

import (
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

var (
	ErrTxDropped       = errors.New("extrinsic dropped from the pool")
	ErrTxInvalid       = errors.New("extrinsic is invalid")
	ErrTxUsurped       = errors.New("extrinsic usurped by another with the same nonce")
	ErrFinalityTimeout = errors.New("extrinsic block not finalized in time")
	ErrMissingConstant = errors.New("runtime constant not found")
)

// DefaultNetwork is the generic substrate SS58 prefix.
const DefaultNetwork uint16 = 42

type Hash [32]byte

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

type Header struct {
	Number     uint32
	ParentHash Hash
}

// Wait selects how long Submit follows an extrinsic.
type Wait int

const (
	// WaitNone returns once the pool accepted the extrinsic.
	WaitNone Wait = iota
	WaitInBlock
	WaitFinalized
)

func (w Wait) String() string {
	switch w {
	case WaitNone:
		return "none"
	case WaitInBlock:
		return "in-block"
	case WaitFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// TxOptions describe how an extrinsic is signed and followed.
type TxOptions struct {
	Signer Account
	// Nonce overrides the pool-aware next index of the signer.
	Nonce *uint64
	Wait  Wait
}

// Genesis is the data a parachain is initialized with.
type Genesis struct {
	Head []byte
	Code []byte
}

type Lease struct {
	ParaID      uint32
	Leaser      []byte
	Amount      *big.Int
	FirstPeriod uint32
	Periods     uint32
}

// LeaseTerms are the lease period length and offset, in blocks.
type LeaseTerms struct {
	Period uint32
	Offset uint32
}

// Account is an sr25519 signing key.
type Account struct {
	pair signature.KeyringPair
}

// NewAccount derives an account from a secret URI such as "//Alice" or a
// mnemonic with an optional derivation path.
func NewAccount(suri string, network uint16) (Account, error) {
	pair, err := signature.KeyringPairFromSecret(suri, network)
	if err != nil {
		return Account{}, err
	}
	return Account{pair: pair}, nil
}

func (a Account) Address() string {
	return a.pair.Address
}

func (a Account) PublicKey() []byte {
	return a.pair.PublicKey
}

func (a Account) accountID() (types.AccountID, error) {
	id, err := types.NewAccountID(a.pair.PublicKey)
	if err != nil {
		return types.AccountID{}, err
	}
	return *id, nil
}
