package main

import (
	"fmt"

	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/cas/boltdb"
	"github.com/dialogdb/dialog/pkg/cas/memory"
	"github.com/dialogdb/dialog/pkg/config"
	"github.com/dialogdb/dialog/pkg/log"
	"github.com/dialogdb/dialog/pkg/replica"
	"github.com/spf13/cobra"
)

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// loadConfig reads the --config file named on cmd, or falls back to
// config.Default() if no path was given.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openBackend opens the cas.Backend named by cfg.Storage.
func openBackend(cfg config.Config) (cas.Backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageBolt, "":
		backend, err := boltdb.Open(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open bolt backend at %s: %w", cfg.DataDir, err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Storage)
	}
}

// openReplica builds the *replica.Replica a subcommand operates
// against: it loads cfg, opens the configured backend, derives the
// process's Subject from cfg.Passphrase, and registers every
// configured remote. It also returns the opened backend so callers
// that also need to serve raw storage (e.g. `serve`) reuse the same
// handle instead of reopening the bolt file a second time.
func openReplica(cmd *cobra.Command) (*replica.Replica, cas.Backend, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	subject := subjectFromPassphrase(cfg.Passphrase)
	r := replica.Open(subject, backend)
	for _, remote := range cfg.Remotes {
		r.AddRemote(remote.Site, remote.Address)
	}
	log.WithSubject(subject.String()).Info().Msg("replica opened")
	return r, backend, cfg, nil
}
