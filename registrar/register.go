package registrar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/chain"
	"github.com/mangata-finance/parachain-ops/journal"
	"github.com/mangata-finance/parachain-ops/logging"
)

// RegisterParas puts the genesis data of every para on chain, skipping
// paras the journal already holds as registered.
func (r *Registrar) RegisterParas(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	submitted := 0
	for _, p := range r.paras {
		step, err := r.journal.Step(ctx, p.ID)
		if err != nil {
			return err
		}
		if step >= journal.StepRegistered {
			logger.Info("para already registered", zap.Uint32("para", p.ID))
			continue
		}
		if submitted > 0 {
			if _, err := WaitForNewBlock(ctx, r.chain); err != nil {
				return err
			}
		}
		if err := r.register(ctx, p); err != nil {
			return err
		}
		submitted++
	}
	return nil
}

func (r *Registrar) register(ctx context.Context, p Para) error {
	logger := logging.FromContext(ctx).With(zap.Uint32("para", p.ID), zap.String("mode", string(r.cfg.Mode)))
	genesis, err := chain.ReadGenesis(p.StateFile, p.WasmFile)
	if err != nil {
		return fmt.Errorf("para %d: %w", p.ID, err)
	}
	logger.Info("registering para", zap.Int("head", len(genesis.Head)), zap.Int("code", len(genesis.Code)))

	var (
		hash  chain.Hash
		call  string
		start = time.Now()
	)
	switch r.cfg.Mode {
	case ModeSudo:
		call = "ParasSudoWrapper.sudo_schedule_para_initialize"
		hash, err = r.chain.ScheduleParaInit(ctx, p.ID, genesis, r.tx(r.accounts.Signer, nil))
	default:
		call = "Registrar.register"
		hash, err = r.chain.Register(ctx, p.ID, genesis, r.tx(r.accounts.Signer, nil))
	}
	observe(call, start, err)
	if err != nil {
		return fmt.Errorf("registering para %d: %w", p.ID, err)
	}
	if err := r.afterSubmit(ctx); err != nil {
		return err
	}
	logger.Info("para registered", zap.Stringer("tx", hash))
	return r.journal.MarkRegistered(ctx, p.ID, hash[:])
}
