package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/nspcc-dev/nftrader/pkg/storage/dbconfig"
	"github.com/stretchr/testify/require"
)

const testConfig = `ApplicationConfiguration:
  LogLevel: debug
  RPC:
    Endpoint: http://localhost:20331
    RequestTimeout: 3s
  UnlockWallet:
    Path: ./wallet.json
    Password: one
  Contracts:
    Exchange: 0x0a0b0c0d0e0f101112131415161718191a1b1c1d
    Collection: d2a4cff31913016155e38e474a2c06d08be276cf
  Attributes:
    Layout:
      Class: 8
      Rarity: 3
      Power: 1
  Trade:
    RelaxedTraits: [class]
    PollInterval: 1m
  Journal:
    Type: inmemory
  Prometheus:
    Enabled: true
    Addresses:
      - ":2112"
`

func writeConfig(t *testing.T, data string) string {
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(data), 0600))
	return p
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	a := cfg.ApplicationConfiguration
	require.Equal(t, "debug", a.LogLevel)
	require.Equal(t, "http://localhost:20331", a.RPC.Endpoint)
	require.Equal(t, DefaultDialTimeout, a.RPC.DialTimeout)
	require.Equal(t, 3*time.Second, a.RPC.RequestTimeout)
	require.Equal(t, Wallet{Path: "./wallet.json", Password: "one"}, a.UnlockWallet)
	require.Equal(t, traits.Layout{Class: 8, Rarity: 3, Power: 1}, a.Attributes.Layout)
	require.Equal(t, "nftSupply", a.Methods.Supply)
	require.Equal(t, time.Minute, a.Trade.PollInterval)
	require.True(t, a.Trade.Await)
	require.Equal(t, dbconfig.InMemoryDB, a.Journal.Type)
	require.Equal(t, []string{":2112"}, a.Prometheus.Addresses)

	fs, err := a.Trade.RelaxedFields()
	require.NoError(t, err)
	require.Equal(t, []traits.Field{traits.Class}, fs)

	h, err := a.Contracts.ExchangeHash()
	require.NoError(t, err)
	expected, err := util.Uint160DecodeStringLE("0a0b0c0d0e0f101112131415161718191a1b1c1d")
	require.NoError(t, err)
	require.Equal(t, expected, h)

	_, err = a.Contracts.CollectionHash()
	require.NoError(t, err)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	for name, data := range map[string]string{
		"unknown field":    "ApplicationConfiguration:\n  Unknown: 1\n",
		"bad level":        "ApplicationConfiguration:\n  LogLevel: loud\n",
		"bad layout":       "ApplicationConfiguration:\n  Attributes:\n    Layout:\n      Class: 1\n",
		"bad trait":        "ApplicationConfiguration:\n  Trade:\n    RelaxedTraits: [speed]\n",
		"bad hash":         "ApplicationConfiguration:\n  Contracts:\n    Exchange: nothash\n",
		"bad journal":      "ApplicationConfiguration:\n  Journal:\n    Type: redis\n",
		"zero interval":    "ApplicationConfiguration:\n  Trade:\n    PollInterval: 0s\n",
		"no prom address":  "ApplicationConfiguration:\n  Prometheus:\n    Enabled: true\n",
		"no pprof address": "ApplicationConfiguration:\n  Pprof:\n    Enabled: true\n",
		"empty method":     "ApplicationConfiguration:\n  Methods:\n    Supply: \"\"\n",
		"not yaml":         "ApplicationConfiguration: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, data))
			require.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	_, err := cfg.ApplicationConfiguration.Contracts.ExchangeHash()
	require.Error(t, err)
	_, err = cfg.ApplicationConfiguration.Contracts.CollectionHash()
	require.Error(t, err)

	cfg, err = LoadFile(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSampleConfig(t *testing.T) {
	cfg, err := LoadFile("../../config/nftrader.yml")
	require.NoError(t, err)

	a := cfg.ApplicationConfiguration
	require.Equal(t, traits.DefaultLayout, a.Attributes.Layout)
	require.Equal(t, dbconfig.BoltDB, a.Journal.Type)
	require.False(t, a.Prometheus.Enabled)
	_, err = a.Contracts.ExchangeHash()
	require.NoError(t, err)
	_, err = a.Contracts.CollectionHash()
	require.NoError(t, err)
}
