package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mangata-finance/parachain-ops/chain"
	"github.com/mangata-finance/parachain-ops/config"
	"github.com/mangata-finance/parachain-ops/journal"
	"github.com/mangata-finance/parachain-ops/logging"
	"github.com/mangata-finance/parachain-ops/registrar"
)

// Binary version.
// It should be passed during the build with '-ldflags "-X main.version="'.
var version = "unknown"

// registrarMain is the true entry point. This function is required since
// defers created in the top-level scope of a main method aren't executed if
// os.Exit() is called.
func registrarMain() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logLevel := zap.InfoLevel
	if cfg.DebugLog {
		logLevel = zap.DebugLevel
	}
	logger := logging.New(
		logLevel,
		filepath.Join(cfg.LogDir, "registrar.log"),
		cfg.JSONLog,
		logging.WithRotation(cfg.MaxLogFileSize, cfg.MaxLogFiles),
	)
	ctx := logging.NewContext(context.Background(), logger)
	defer func() {
		logger.Info("shutdown complete")
		_ = logger.Sync()
	}()

	logger.Sugar().Infof("version: %s, dir: %v, datadir: %v", version, cfg.BaseDir, cfg.DataDir)
	logger.Info("configuration", zap.Object("node", cfg.Node), zap.Object("para", cfg.Para))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if cfg.MetricsPort != nil {
		srv := serveMetrics(ctx, *cfg.MetricsPort)
		defer srv.Close()
	}

	paras, err := cfg.Paras()
	if err != nil {
		return err
	}
	signer, err := chain.NewAccount(cfg.Accounts.Signer, cfg.Node.Network)
	if err != nil {
		return fmt.Errorf("loading signer: %w", err)
	}
	voter, err := chain.NewAccount(cfg.Accounts.Voter, cfg.Node.Network)
	if err != nil {
		return fmt.Errorf("loading voter: %w", err)
	}

	if cfg.Node.ProbeInterval > 0 {
		probeCtx := ctx
		if cfg.Node.ProbeTimeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, cfg.Node.ProbeTimeout)
			defer cancel()
		}
		if err := chain.WaitReachable(probeCtx, cfg.Node.Address, cfg.Node.ProbeInterval); err != nil {
			return fmt.Errorf("node not reachable: %w", err)
		}
	}

	client, err := chain.Dial(ctx, cfg.Node.Address, chain.WithFallbackLeaseTerms(chain.LeaseTerms{
		Period: cfg.Registry.Lease.Period,
		Offset: cfg.Registry.Lease.Offset,
	}))
	if err != nil {
		return err
	}
	defer client.Close()

	opts := []registrar.OptionFunc{}
	if !cfg.NoJournal {
		j, err := journal.Open(ctx, cfg.JournalDir(), client.GenesisHash().Bytes())
		if err != nil {
			return err
		}
		defer j.Close()
		opts = append(opts, registrar.WithJournal(j))
	}

	r, err := registrar.New(client, cfg.Registry, paras, registrar.Accounts{Signer: signer, Voter: voter}, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("registrar failed: %w", err)
	}
	return nil
}

func serveMetrics(ctx context.Context, port uint16) *http.Server {
	logger := logging.FromContext(ctx)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(int(port))),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := registrarMain(); err != nil {
		// If it's the flag utility error don't print it,
		// because it was already printed.
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
