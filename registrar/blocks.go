package registrar

import (
	"context"

	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/chain"
	"github.com/mangata-finance/parachain-ops/logging"
)

// WaitForNewBlock subscribes to new heads and returns the first head
// produced after the call. The head delivered on subscription is the
// current one and is skipped.
func WaitForNewBlock(ctx context.Context, c Chain) (chain.Header, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	heads, err := c.SubscribeNewHeads(ctx)
	if err != nil {
		return chain.Header{}, err
	}
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return chain.Header{}, ctx.Err()
		case head, ok := <-heads:
			if !ok {
				return chain.Header{}, ErrSubscriptionClosed
			}
			headMetric.Set(float64(head.Number))
			seen++
			if seen == 2 {
				return head, nil
			}
		}
	}
}

func (r *Registrar) waitBlocks(ctx context.Context, n int) error {
	logger := logging.FromContext(ctx)
	for i := 0; i < n; i++ {
		head, err := WaitForNewBlock(ctx, r.chain)
		if err != nil {
			return err
		}
		logger.Debug("new block", zap.Uint32("number", head.Number))
	}
	return nil
}
