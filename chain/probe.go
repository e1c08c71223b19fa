package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/logging"
)

const probeTimeout = 5 * time.Second

type Health struct {
	Peers           int  `json:"peers"`
	IsSyncing       bool `json:"isSyncing"`
	ShouldHavePeers bool `json:"shouldHavePeers"`
}

type rpcRequest struct {
	ID      int           `json:"id"`
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Probe opens a websocket to url and asks the node for system_health.
func Probe(ctx context.Context, url string) (Health, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return Health{}, fmt.Errorf("dialing %s: %w", url, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}

	req := rpcRequest{ID: 1, JSONRPC: "2.0", Method: "system_health", Params: []interface{}{}}
	if err := conn.WriteJSON(req); err != nil {
		return Health{}, fmt.Errorf("sending system_health: %w", err)
	}
	var resp rpcResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return Health{}, fmt.Errorf("reading system_health: %w", err)
	}
	if resp.Error != nil {
		return Health{}, fmt.Errorf("system_health: %d %s", resp.Error.Code, resp.Error.Message)
	}
	var health Health
	if err := json.Unmarshal(resp.Result, &health); err != nil {
		return Health{}, fmt.Errorf("decoding system_health: %w", err)
	}
	return health, nil
}

// WaitReachable probes url every interval until the node answers or ctx is
// done.
func WaitReachable(ctx context.Context, url string, interval time.Duration) error {
	logger := logging.FromContext(ctx).With(zap.String("url", url))
	timer := time.NewTimer(0)
	defer timer.Stop()
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		health, err := Probe(ctx, url)
		if err == nil {
			logger.Info("node is reachable",
				zap.Int("peers", health.Peers),
				zap.Bool("syncing", health.IsSyncing),
			)
			return nil
		}
		logger.Info("node not reachable yet", zap.Int("attempt", attempt), zap.Error(err))
		timer.Reset(interval)
	}
}
