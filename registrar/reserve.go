package registrar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mangata-finance/parachain-ops/logging"
)

// Reserve reserves para ids until the next free id is past the highest
// target id. In sudo mode failures are logged and ignored since
// scheduling a para does not depend on a reservation.
func (r *Registrar) Reserve(ctx context.Context) error {
	err := r.reserve(ctx)
	if err != nil && r.cfg.Mode == ModeSudo && ctx.Err() == nil {
		logging.FromContext(ctx).Warn("reservation failed, continuing", zap.Error(err))
		return nil
	}
	return err
}

func (r *Registrar) reserve(ctx context.Context) error {
	logger := logging.FromContext(ctx).With(zap.String("strategy", string(r.cfg.Strategy)))
	target := r.maxTarget()

	next, err := r.chain.NextFreeParaID(ctx)
	if err != nil {
		return fmt.Errorf("reading next free para id: %w", err)
	}
	stalls := 0
	for next <= target {
		missing := int(target - next + 1)
		logger.Info("reserving para ids", zap.Uint32("next", next), zap.Uint32("target", target), zap.Int("missing", missing))
		reservationRoundsMetric.WithLabelValues(string(r.cfg.Strategy)).Inc()

		if err := r.reserveRound(ctx, missing); err != nil {
			return err
		}

		current, err := r.chain.NextFreeParaID(ctx)
		if err != nil {
			return fmt.Errorf("reading next free para id: %w", err)
		}
		if current <= next {
			stalls++
			logger.Warn("reservation made no progress", zap.Uint32("next", current), zap.Int("stalls", stalls))
			if stalls >= r.cfg.MaxStalls {
				return fmt.Errorf("%w: next free id %d after %d rounds, want > %d", ErrReservationStalled, current, stalls, target)
			}
		} else {
			stalls = 0
		}
		next = current
	}

	for _, p := range r.paras {
		if p.ID < next {
			if err := r.journal.MarkReserved(ctx, p.ID, nil); err != nil {
				return err
			}
		}
	}
	logger.Info("para ids reserved", zap.Uint32("next", next))
	return nil
}

func (r *Registrar) reserveRound(ctx context.Context, missing int) error {
	switch r.cfg.Strategy {
	case StrategyBatch:
		start := time.Now()
		_, err := r.chain.ReserveBatch(ctx, missing, r.tx(r.accounts.Signer, nil))
		observe("Utility.batch_all", start, err)
		if err != nil {
			return fmt.Errorf("reserving %d para ids: %w", missing, err)
		}
		return r.afterSubmit(ctx)
	case StrategyPipelined:
		return r.reservePipelined(ctx, missing)
	default:
		start := time.Now()
		_, err := r.chain.Reserve(ctx, r.tx(r.accounts.Signer, nil))
		observe("Registrar.reserve", start, err)
		if err != nil {
			return fmt.Errorf("reserving para id: %w", err)
		}
		return r.afterSubmit(ctx)
	}
}

// reservePipelined submits missing reservations at once with consecutive
// nonces so they can land in the same block.
func (r *Registrar) reservePipelined(ctx context.Context, missing int) error {
	nonce, err := r.chain.AccountNonce(ctx, r.accounts.Signer)
	if err != nil {
		return fmt.Errorf("reading signer nonce: %w", err)
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ReserveConcurrency)
	for i := 0; i < missing; i++ {
		n := nonce + uint64(i)
		g.Go(func() error {
			start := time.Now()
			_, err := r.chain.Reserve(gctx, r.tx(r.accounts.Signer, &n))
			observe("Registrar.reserve", start, err)
			if err != nil {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("reserve with nonce %d: %w", n, err))
				mu.Unlock()
			}
			// individual failures must not cancel the rest of the pipeline
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	_, err = WaitForNewBlock(ctx, r.chain)
	return err
}
