// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers

// Package config loads the registrar settings from defaults, environment,
// an optional ini file and the command line.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"

	"github.com/mangata-finance/parachain-ops/chain"
	"github.com/mangata-finance/parachain-ops/logging"
	"github.com/mangata-finance/parachain-ops/registrar"
)

const (
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultJournalDirname = "journal"
	defaultMaxLogFiles    = 3
	defaultMaxLogFileSize = 10

	defaultAddress       = "ws://10.0.0.2:9944"
	defaultParaID        = 2000
	defaultStateFile     = "/code/genesis-state"
	defaultWasmFile      = "/code/genesis-wasm"
	defaultAcalaState    = "/code/genesis-state-acala"
	defaultAcalaWasm     = "/code/genesis-wasm-acala"
	defaultSignerSURI    = "//Alice"
	defaultVoterSURI     = "//Bob"
	defaultProbeInterval = 5 * time.Second
)

var ErrDuplicatePara = errors.New("para id configured twice")

// Config defines the configuration options of the registrar.
//
//nolint:lll
type Config struct {
	BaseDir        string  `long:"basedir"        description:"The base directory that contains data, logs and the journal"`
	ConfigFile     string  `long:"configfile"     description:"Path to configuration file"                                short:"c"`
	DataDir        string  `long:"datadir"        description:"The directory to store the journal within"                 short:"b"`
	LogDir         string  `long:"logdir"         description:"Directory to log output"`
	DebugLog       bool    `long:"debuglog"       description:"Enable debug logs"`
	JSONLog        bool    `long:"jsonlog"        description:"Whether to log in JSON format"`
	MaxLogFiles    int     `long:"maxlogfiles"    description:"Maximum logfiles to keep (0 for no rotation)"`
	MaxLogFileSize int     `long:"maxlogfilesize" description:"Maximum logfile size in MB"`
	MetricsPort    *uint16 `long:"metrics-port"   description:"The port to expose metrics"`
	NoJournal      bool    `long:"no-journal"     description:"Keep progress in memory only"`

	Node     NodeConfig       `group:"Node"     namespace:"node"`
	Accounts AccountsConfig   `group:"Accounts"`
	Para     ParaConfig       `group:"Para"     namespace:"para"`
	Acala    AcalaConfig      `group:"Acala"    namespace:"acala"`
	Registry registrar.Config `group:"Registrar"`
}

//nolint:lll
type NodeConfig struct {
	Address       string        `long:"address"        description:"WebSocket RPC endpoint of the relay chain node" env:"COLLATOR_ADDR"`
	Network       uint16        `long:"network"        description:"SS58 network prefix used to render addresses"`
	ProbeInterval time.Duration `long:"probe-interval" description:"Interval between reachability probes before dialing (0 disables probing)"`
	ProbeTimeout  time.Duration `long:"probe-timeout"  description:"Give up when the node is not reachable within this time (0 waits forever)"`
}

//nolint:lll
type AccountsConfig struct {
	Signer string `long:"signer" description:"Secret URI of the account signing reservations, registrations and leases" env:"SIGNER_SURI"`
	Voter  string `long:"voter"  description:"Secret URI of the account voting the signer into the council"           env:"VOTER_SURI"`
}

//nolint:lll
type ParaConfig struct {
	ID        uint32 `long:"id"         description:"Id of the parachain"               env:"PARA_ID"`
	StateFile string `long:"state-file" description:"File holding the genesis head"     env:"STATE_FILE"`
	WasmFile  string `long:"wasm-file"  description:"File holding the validation code"  env:"WASM_FILE"`
}

// AcalaConfig describes an optional second parachain. It is skipped while
// its id is 0.
//
//nolint:lll
type AcalaConfig struct {
	ID        uint32 `long:"id"         description:"Id of the second parachain (0 disables it)" env:"ACALA_PARA_ID"`
	StateFile string `long:"state-file" description:"File holding the genesis head"              env:"STATE_FILE_ACALA"`
	WasmFile  string `long:"wasm-file"  description:"File holding the validation code"           env:"WASM_FILE_ACALA"`
}

// DefaultConfig returns a config with default hardcoded values.
func DefaultConfig() *Config {
	baseDir := "./parachain-ops"
	cacheDir, err := os.UserCacheDir()
	if err == nil {
		baseDir = filepath.Join(cacheDir, "parachain-ops")
	}

	return &Config{
		BaseDir:        baseDir,
		DataDir:        filepath.Join(baseDir, defaultDataDirname),
		LogDir:         filepath.Join(baseDir, defaultLogDirname),
		MaxLogFiles:    defaultMaxLogFiles,
		MaxLogFileSize: defaultMaxLogFileSize,
		Node: NodeConfig{
			Address:       defaultAddress,
			Network:       chain.DefaultNetwork,
			ProbeInterval: defaultProbeInterval,
		},
		Accounts: AccountsConfig{
			Signer: defaultSignerSURI,
			Voter:  defaultVoterSURI,
		},
		Para: ParaConfig{
			ID:        defaultParaID,
			StateFile: defaultStateFile,
			WasmFile:  defaultWasmFile,
		},
		Acala: AcalaConfig{
			StateFile: defaultAcalaState,
			WasmFile:  defaultAcalaWasm,
		},
		Registry: registrar.DefaultConfig(),
	}
}

// ParseFlags reads values from command line arguments and the environment.
func ParseFlags(preCfg *Config, args []string) (*Config, error) {
	if _, err := flags.NewParser(preCfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}
	return preCfg, nil
}

// Load builds the configuration from defaults, an optional ini file and the
// command line, in increasing order of precedence.
func Load(args []string) (*Config, error) {
	// Pre-parse the command line to check for an alternative config file.
	cfg, err := ParseFlags(DefaultConfig(), args)
	if err != nil {
		return nil, err
	}
	cfg, err = ReadConfigFile(cfg)
	if err != nil {
		return nil, err
	}
	// Parse the command line again so it takes precedence over the file.
	cfg, err = ParseFlags(cfg, args)
	if err != nil {
		return nil, err
	}
	// Paths are expanded last, so no parse can put back unexpanded values.
	return SetupConfig(cfg)
}

// ReadConfigFile reads config from an ini file.
// It uses the provided `cfg` as a base config and overrides it with the values
// from the config file.
func ReadConfigFile(cfg *Config) (*Config, error) {
	if cfg.ConfigFile == "" {
		return cfg, nil
	}
	logging.FromContext(context.Background()).Sugar().Debugf("reading config from %s", cfg.ConfigFile)
	if err := flags.IniParse(cfg.ConfigFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from %v: %w", cfg.ConfigFile, err)
	}

	return cfg, nil
}

// SetupConfig expands paths, validates the settings and initializes the
// filesystem.
func SetupConfig(cfg *Config) (*Config, error) {
	// Directories left at their defaults follow a non-default base directory.
	defaultCfg := DefaultConfig()
	if cfg.BaseDir != defaultCfg.BaseDir {
		if cfg.DataDir == defaultCfg.DataDir {
			cfg.DataDir = filepath.Join(cfg.BaseDir, defaultDataDirname)
		}
		if cfg.LogDir == defaultCfg.LogDir {
			cfg.LogDir = filepath.Join(cfg.BaseDir, defaultLogDirname)
		}
	}

	cfg.BaseDir = cleanAndExpandPath(cfg.BaseDir)
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.Para.StateFile = cleanAndExpandPath(cfg.Para.StateFile)
	cfg.Para.WasmFile = cleanAndExpandPath(cfg.Para.WasmFile)
	cfg.Acala.StateFile = cleanAndExpandPath(cfg.Acala.StateFile)
	cfg.Acala.WasmFile = cleanAndExpandPath(cfg.Acala.WasmFile)

	if _, err := cfg.Paras(); err != nil {
		return nil, err
	}
	if err := cfg.Registry.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{cfg.DataDir, cfg.LogDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create %v: %w", dir, err)
		}
	}
	return cfg, nil
}

// JournalDir is where the registrar journal lives.
func (c *Config) JournalDir() string {
	return filepath.Join(c.DataDir, defaultJournalDirname)
}

// Paras returns the parachains to register in registration order.
func (c *Config) Paras() ([]registrar.Para, error) {
	if c.Para.ID == 0 {
		return nil, fmt.Errorf("para.id must be set")
	}
	paras := []registrar.Para{{ID: c.Para.ID, StateFile: c.Para.StateFile, WasmFile: c.Para.WasmFile}}
	if c.Acala.ID != 0 {
		if c.Acala.ID == c.Para.ID {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePara, c.Acala.ID)
		}
		paras = append(paras, registrar.Para{ID: c.Acala.ID, StateFile: c.Acala.StateFile, WasmFile: c.Acala.WasmFile})
	}
	return paras, nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
// This function is taken from https://github.com/btcsuite/btcd
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		user, err := user.Current()
		if err == nil {
			homeDir = user.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// implement zap.ObjectMarshaler interface.
func (c NodeConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("address", c.Address)
	enc.AddUint16("network", c.Network)
	enc.AddDuration("probe-interval", c.ProbeInterval)
	enc.AddDuration("probe-timeout", c.ProbeTimeout)
	return nil
}

// implement zap.ObjectMarshaler interface.
func (c ParaConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint32("id", c.ID)
	enc.AddString("state-file", c.StateFile)
	enc.AddString("wasm-file", c.WasmFile)
	return nil
}
