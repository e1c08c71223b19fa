package registrar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/logging"
)

// BootstrapCouncil elects the signer into the council: the signer stands as
// candidate, the voter backs it with the lease amount as stake and the
// election round is awaited.
func (r *Registrar) BootstrapCouncil(ctx context.Context) error {
	logger := logging.FromContext(ctx).Named("council")

	count, err := r.chain.CandidateCount(ctx)
	if err != nil {
		return fmt.Errorf("reading candidate count: %w", err)
	}
	start := time.Now()
	_, err = r.chain.SubmitCandidacy(ctx, count, r.tx(r.accounts.Signer, nil))
	observe("PhragmenElection.submit_candidacy", start, err)
	if err != nil {
		return fmt.Errorf("submitting candidacy: %w", err)
	}
	logger.Info("candidacy submitted", zap.String("candidate", r.accounts.Signer.Address()), zap.Uint32("candidates", count))
	if _, err := WaitForNewBlock(ctx, r.chain); err != nil {
		return err
	}

	stake := r.cfg.Lease.Amount.Int()
	start = time.Now()
	_, err = r.chain.Vote(ctx, [][]byte{r.accounts.Signer.PublicKey()}, stake, r.tx(r.accounts.Voter, nil))
	observe("PhragmenElection.vote", start, err)
	if err != nil {
		return fmt.Errorf("voting: %w", err)
	}
	logger.Info("vote cast", zap.String("voter", r.accounts.Voter.Address()), zap.Stringer("stake", stake))

	logger.Info("waiting for election", zap.Duration("delay", r.cfg.Council.ElectionDelay))
	if err := r.sleep(ctx, r.cfg.Council.ElectionDelay); err != nil {
		return err
	}
	_, err = WaitForNewBlock(ctx, r.chain)
	return err
}
