package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/nspcc-dev/nftrader/pkg/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDialTimeout is the default RPC connection timeout.
	DefaultDialTimeout = 5 * time.Second
	// DefaultRequestTimeout is the default RPC request timeout.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultPollInterval is the default supply polling interval for the
	// watcher, it's the approximate time of one Neo N3 block.
	DefaultPollInterval = 15 * time.Second
)

// Version is the version of the client, set at build time.
var Version string

// Config top level struct representing the config for the client.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Default returns configuration with all defaults set. It's valid except
// for contract hashes that have no sensible defaults.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			Logger: Logger{
				LogLevel: "info",
			},
			RPC: RPC{
				DialTimeout:    DefaultDialTimeout,
				RequestTimeout: DefaultRequestTimeout,
			},
			Methods: Methods{
				Assigned: "getYourNftCardProperties",
				Supply:   "nftSupply",
				Mint:     "mint",
			},
			Attributes: Attributes{
				Layout: traits.DefaultLayout,
			},
			Trade: Trade{
				RelaxedTraits: []string{"class", "rarity"},
				PollInterval:  DefaultPollInterval,
				Await:         true,
			},
			Journal: dbconfig.DBConfiguration{
				Type: dbconfig.BoltDB,
				BoltDBOptions: dbconfig.BoltDBOptions{
					FilePath: "./data/journal.bolt",
				},
			},
		},
	}
}

// LoadFile loads config from the provided path. Unknown fields are not
// allowed, missing ones get default values.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err = decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("config is invalid: %w", err)
	}
	return config, nil
}

// Validate checks Config for errors. Contract hashes are checked for
// syntax only if set, commands requiring them check for presence.
func (c Config) Validate() error {
	return c.ApplicationConfiguration.Validate()
}
