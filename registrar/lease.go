package registrar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/chain"
	"github.com/mangata-finance/parachain-ops/logging"
)

// LeasePeriod returns the lease period block falls into. Blocks before the
// offset belong to period 0.
func LeasePeriod(block, offset, length uint32) (uint32, error) {
	if length == 0 {
		return 0, ErrZeroLeasePeriod
	}
	if block < offset {
		return 0, nil
	}
	return (block - offset) / length, nil
}

func (r *Registrar) leaseTerms(ctx context.Context) (chain.LeaseTerms, error) {
	if r.cfg.Lease.Period > 0 {
		return chain.LeaseTerms{Period: r.cfg.Lease.Period, Offset: r.cfg.Lease.Offset}, nil
	}
	return r.chain.LeaseTerms(ctx)
}

func (r *Registrar) currentPeriod(ctx context.Context, block uint32) (uint32, error) {
	terms, err := r.leaseTerms(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading lease terms: %w", err)
	}
	return LeasePeriod(block, terms.Offset, terms.Period)
}

// ForceLeases forces a lease for every para starting at the current lease
// period.
func (r *Registrar) ForceLeases(ctx context.Context) error {
	best, err := r.chain.BestNumber(ctx)
	if err != nil {
		return fmt.Errorf("reading best block: %w", err)
	}
	period, err := r.currentPeriod(ctx, best)
	if err != nil {
		return err
	}
	for _, p := range r.paras {
		if err := r.forceLease(ctx, p.ID, period); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registrar) forceLease(ctx context.Context, para, period uint32) error {
	logger := logging.FromContext(ctx).With(
		zap.Uint32("para", para),
		zap.Uint32("period", period),
		zap.String("origin", string(r.cfg.Lease.Origin)),
	)
	lease := chain.Lease{
		ParaID:      para,
		Leaser:      r.accounts.Signer.PublicKey(),
		Amount:      r.cfg.Lease.Amount.Int(),
		FirstPeriod: period,
		Periods:     r.cfg.Lease.Periods,
	}

	var (
		hash  chain.Hash
		err   error
		call  string
		start = time.Now()
	)
	switch r.cfg.Lease.Origin {
	case OriginCouncil:
		call = "Council.propose"
		hash, err = r.chain.ProposeForceLease(ctx, lease, r.cfg.Council.Threshold, r.tx(r.accounts.Signer, nil))
	default:
		call = "Slots.force_lease"
		hash, err = r.chain.ForceLease(ctx, lease, r.tx(r.accounts.Signer, nil))
	}
	observe(call, start, err)
	if err != nil {
		return fmt.Errorf("forcing lease for para %d: %w", para, err)
	}
	leasesForcedMetric.Inc()
	logger.Info("lease forced", zap.Stringer("tx", hash), zap.Uint32("periods", lease.Periods))
	if err := r.journal.MarkLeased(ctx, para, period, hash[:]); err != nil {
		return err
	}
	r.leases.Add(leaseKey{para: para, period: period}, struct{}{})
	return r.afterSubmit(ctx)
}

// Watch follows new heads and forces a lease for any para that has none in
// the current lease period. It returns when ctx is done or the
// subscription ends.
func (r *Registrar) Watch(ctx context.Context) error {
	logger := logging.FromContext(ctx).Named("watch")
	ctx = logging.NewContext(ctx, logger)

	heads, err := r.chain.SubscribeNewHeads(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to new heads: %w", err)
	}
	logger.Info("watching leases", zap.Int("paras", len(r.paras)))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case head, ok := <-heads:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrSubscriptionClosed
			}
			headMetric.Set(float64(head.Number))
			if err := r.checkLeases(ctx, head.Number); err != nil {
				return err
			}
		}
	}
}

func (r *Registrar) checkLeases(ctx context.Context, block uint32) error {
	period, err := r.currentPeriod(ctx, block)
	if err != nil {
		return err
	}
	for _, p := range r.paras {
		if err := r.ensureLease(ctx, p.ID, period); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registrar) ensureLease(ctx context.Context, para, period uint32) error {
	key := leaseKey{para: para, period: period}
	if r.leases.Contains(key) {
		return nil
	}
	leased, err := r.journal.Leased(ctx, para, period)
	if err != nil {
		return err
	}
	if !leased {
		leased, err = r.chain.HasLease(ctx, para)
		if err != nil {
			return fmt.Errorf("reading lease of para %d: %w", para, err)
		}
	}
	if leased {
		r.leases.Add(key, struct{}{})
		return nil
	}
	logging.FromContext(ctx).Info("lease missing", zap.Uint32("para", para), zap.Uint32("period", period))
	return r.forceLease(ctx, para, period)
}
