package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/digest"
	"github.com/mangata-finance/parachain-ops/logging"
)

func (c *Client) newCall(name string, args ...interface{}) (types.Call, error) {
	call, err := types.NewCall(c.meta, name, args...)
	if err != nil {
		return types.Call{}, fmt.Errorf("building %s: %w", name, err)
	}
	return call, nil
}

// submit signs call and hands it to the node, following it as far as
// tx.Wait asks for. It returns the extrinsic hash.
func (c *Client) submit(ctx context.Context, name string, call types.Call, tx TxOptions) (Hash, error) {
	logger := logging.FromContext(ctx).With(zap.String("call", name), zap.String("signer", tx.Signer.Address()))

	var nonce uint64
	if tx.Nonce != nil {
		nonce = *tx.Nonce
	} else {
		var err error
		if nonce, err = c.AccountNonce(ctx, tx.Signer); err != nil {
			return Hash{}, err
		}
	}

	ext := types.NewExtrinsic(call)
	err := ext.Sign(tx.Signer.pair, types.SignatureOptions{
		BlockHash:          c.genesisHash,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        c.genesisHash,
		Nonce:              types.NewUCompactFromUInt(nonce),
		SpecVersion:        c.runtime.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: c.runtime.TransactionVersion,
	})
	if err != nil {
		return Hash{}, fmt.Errorf("signing %s: %w", name, err)
	}
	encoded, err := codec.Encode(ext)
	if err != nil {
		return Hash{}, fmt.Errorf("encoding %s: %w", name, err)
	}
	sum, err := digest.Sum(digest.Blake2b256, encoded)
	if err != nil {
		return Hash{}, err
	}
	var txHash Hash
	copy(txHash[:], sum)
	logger = logger.With(zap.Uint64("nonce", nonce), zap.Stringer("tx", txHash))

	if tx.Wait == WaitNone {
		if _, err := c.api.RPC.Author.SubmitExtrinsic(ext); err != nil {
			return Hash{}, fmt.Errorf("submitting %s: %w", name, err)
		}
		logger.Debug("extrinsic submitted")
		return txHash, nil
	}

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return Hash{}, fmt.Errorf("submitting %s: %w", name, err)
	}
	defer sub.Unsubscribe()
	logger.Debug("extrinsic submitted, watching", zap.Stringer("wait", tx.Wait))

	for {
		select {
		case <-ctx.Done():
			return Hash{}, ctx.Err()
		case err := <-sub.Err():
			return Hash{}, fmt.Errorf("watching %s: %w", name, err)
		case status := <-sub.Chan():
			switch {
			case status.IsInBlock:
				logger.Info("extrinsic in block", zap.Stringer("block", Hash(status.AsInBlock)))
				if tx.Wait == WaitInBlock {
					return txHash, nil
				}
			case status.IsFinalized:
				logger.Info("extrinsic finalized", zap.Stringer("block", Hash(status.AsFinalized)))
				return txHash, nil
			case status.IsDropped:
				return Hash{}, fmt.Errorf("%s: %w", name, ErrTxDropped)
			case status.IsInvalid:
				return Hash{}, fmt.Errorf("%s: %w", name, ErrTxInvalid)
			case status.IsUsurped:
				return Hash{}, fmt.Errorf("%s: %w", name, ErrTxUsurped)
			case status.IsFinalityTimeout:
				return Hash{}, fmt.Errorf("%s: %w", name, ErrFinalityTimeout)
			}
		}
	}
}

func (c *Client) Reserve(ctx context.Context, tx TxOptions) (Hash, error) {
	call, err := c.newCall("Registrar.reserve")
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "Registrar.reserve", call, tx)
}

func (c *Client) reserveBatchCall(count int) (types.Call, error) {
	calls := make([]types.Call, 0, count)
	for i := 0; i < count; i++ {
		call, err := c.newCall("Registrar.reserve")
		if err != nil {
			return types.Call{}, err
		}
		calls = append(calls, call)
	}
	return c.newCall("Utility.batch_all", calls)
}

// ReserveBatch reserves count para ids in a single Utility.batch_all.
func (c *Client) ReserveBatch(ctx context.Context, count int, tx TxOptions) (Hash, error) {
	batch, err := c.reserveBatchCall(count)
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "Utility.batch_all", batch, tx)
}

func (c *Client) registerCall(para uint32, genesis Genesis) (types.Call, error) {
	return c.newCall("Registrar.register",
		types.NewU32(para),
		types.NewBytes(genesis.Head),
		types.NewBytes(genesis.Code),
	)
}

// Register registers genesis data for a para id reserved by the signer.
func (c *Client) Register(ctx context.Context, para uint32, genesis Genesis, tx TxOptions) (Hash, error) {
	call, err := c.registerCall(para, genesis)
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "Registrar.register", call, tx)
}

type paraGenesisArgs struct {
	GenesisHead    types.Bytes
	ValidationCode types.Bytes
	ParaKind       types.Bool
}

// ScheduleParaInit initializes para as a parachain through sudo, without
// requiring the id to be reserved.
func (c *Client) ScheduleParaInit(ctx context.Context, para uint32, genesis Genesis, tx TxOptions) (Hash, error) {
	inner, err := c.newCall("ParasSudoWrapper.sudo_schedule_para_initialize",
		types.NewU32(para),
		paraGenesisArgs{
			GenesisHead:    types.NewBytes(genesis.Head),
			ValidationCode: types.NewBytes(genesis.Code),
			ParaKind:       types.NewBool(true),
		},
	)
	if err != nil {
		return Hash{}, err
	}
	call, err := c.newCall("Sudo.sudo", inner)
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "Sudo.sudo(ParasSudoWrapper.sudo_schedule_para_initialize)", call, tx)
}

func (c *Client) forceLeaseCall(lease Lease) (types.Call, error) {
	leaser, err := types.NewAccountID(lease.Leaser)
	if err != nil {
		return types.Call{}, fmt.Errorf("leaser account: %w", err)
	}
	return c.newCall("Slots.force_lease",
		types.NewU32(lease.ParaID),
		*leaser,
		types.NewU128(*lease.Amount),
		types.NewU32(lease.FirstPeriod),
		types.NewU32(lease.Periods),
	)
}

// ForceLease grants lease through sudo.
func (c *Client) ForceLease(ctx context.Context, lease Lease, tx TxOptions) (Hash, error) {
	inner, err := c.forceLeaseCall(lease)
	if err != nil {
		return Hash{}, err
	}
	call, err := c.newCall("Sudo.sudo", inner)
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "Sudo.sudo(Slots.force_lease)", call, tx)
}

// proposeCall wraps inner in a Council.propose with the given threshold.
func (c *Client) proposeCall(inner types.Call, threshold uint32) (types.Call, error) {
	encoded, err := codec.Encode(inner)
	if err != nil {
		return types.Call{}, fmt.Errorf("encoding proposal: %w", err)
	}
	return c.newCall("Council.propose",
		types.NewUCompactFromUInt(uint64(threshold)),
		inner,
		types.NewUCompactFromUInt(uint64(len(encoded))),
	)
}

// ProposeForceLease puts Slots.force_lease to the council. With a threshold
// of one the proposal executes immediately.
func (c *Client) ProposeForceLease(ctx context.Context, lease Lease, threshold uint32, tx TxOptions) (Hash, error) {
	inner, err := c.forceLeaseCall(lease)
	if err != nil {
		return Hash{}, err
	}
	call, err := c.proposeCall(inner, threshold)
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "Council.propose(Slots.force_lease)", call, tx)
}

func (c *Client) SubmitCandidacy(ctx context.Context, candidates uint32, tx TxOptions) (Hash, error) {
	call, err := c.newCall("PhragmenElection.submit_candidacy", types.NewUCompactFromUInt(uint64(candidates)))
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "PhragmenElection.submit_candidacy", call, tx)
}

// Vote backs the candidates, given by public key, with stake.
func (c *Client) Vote(ctx context.Context, candidates [][]byte, stake *big.Int, tx TxOptions) (Hash, error) {
	votes := make([]types.AccountID, 0, len(candidates))
	for _, pub := range candidates {
		id, err := types.NewAccountID(pub)
		if err != nil {
			return Hash{}, fmt.Errorf("candidate account: %w", err)
		}
		votes = append(votes, *id)
	}
	call, err := c.newCall("PhragmenElection.vote", votes, types.NewUCompact(stake))
	if err != nil {
		return Hash{}, err
	}
	return c.submit(ctx, "PhragmenElection.vote", call, tx)
}
