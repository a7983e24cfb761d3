// Package config loads cmd/dialog's process configuration from a YAML
// file, the way the teacher's cmd/warren apply command reads resource
// manifests: gopkg.in/yaml.v3 into a plain struct, defaults filled in
// after unmarshal rather than via struct tags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StorageKind selects which cas.Backend cmd/dialog opens.
type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageBolt   StorageKind = "bolt"
)

// RemoteConfig is one entry of the remotes list: a named site and the
// router address it resolves to, fed into replica.Replica.AddRemote at
// startup.
type RemoteConfig struct {
	Site    string `yaml:"site"`
	Address string `yaml:"address"`
}

// Config is the top-level shape of a dialog.yaml file.
type Config struct {
	// DataDir is where the bolt backend stores its database file;
	// ignored when Storage is "memory".
	DataDir string `yaml:"dataDir"`
	// Storage selects the cas.Backend: "memory" (volatile, for
	// development and tests) or "bolt" (durable, the default).
	Storage StorageKind `yaml:"storage"`

	// Passphrase derives this process's local operator key, the way
	// the original's Operator::from_passphrase does: blake3(passphrase)
	// seeds an Ed25519 signing key. It exists purely so cmd/dialog has
	// an identity to scope replica storage under without requiring a
	// key file; production deployments should treat it as a secret.
	Passphrase string `yaml:"passphrase"`

	// ListenAddress is where `dialog serve` exposes the gRPC router
	// service; empty disables serving.
	ListenAddress string `yaml:"listenAddress"`
	// MetricsAddress is where `dialog serve` exposes /metrics; empty
	// disables the metrics endpoint.
	MetricsAddress string `yaml:"metricsAddress"`

	// Log configures pkg/log.
	Log LogConfig `yaml:"log"`

	// Remotes is the set of named sites registered on the replica at
	// startup.
	Remotes []RemoteConfig `yaml:"remotes"`
}

// LogConfig mirrors log.Config's fields so the YAML file can set them
// without cmd/dialog importing zerolog directly.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration cmd/dialog runs with if no file is
// given: an in-process bolt store under ./dialog-data, info logging,
// and no remotes.
func Default() Config {
	return Config{
		DataDir: "./dialog-data",
		Storage: StorageBolt,
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads and parses path, filling any field the file omits from
// Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Storage == "" {
		cfg.Storage = StorageBolt
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}
