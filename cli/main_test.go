package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/nftrader/pkg/journal"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/nspcc-dev/nftrader/pkg/storage"
	"github.com/nspcc-dev/nftrader/pkg/storage/dbconfig"
	"github.com/stretchr/testify/require"
)

func TestCLIVersion(t *testing.T) {
	e := newExecutor(t)
	e.Run(t, "nftrader", "--version")
	e.checkNextLine(t, "^nftrader$")
	e.checkNextLine(t, "^Version:")
	e.checkNextLine(t, "^GoVersion:")
	e.checkEOF(t)
}

func TestAttrs(t *testing.T) {
	e := newExecutor(t)

	t.Run("encode", func(t *testing.T) {
		e.Run(t, "nftrader", "nft", "attrs", "encode", "--class", "8", "--rarity", "3", "--power", "2")
		e.checkNextLine(t, "^080302$")
		e.checkNextLine(t, "^tags:class8;rarity3;power2$")
		e.checkEOF(t)
	})
	t.Run("encode with layout", func(t *testing.T) {
		cfg := writeConfig(t, "ApplicationConfiguration:\n  Attributes:\n    Layout:\n      Class: 8\n      Rarity: 3\n      Power: 1\n")
		e.Run(t, "nftrader", "nft", "attrs", "encode", "-c", cfg, "--class", "8", "--rarity", "3", "--power", "2")
		e.checkNextLine(t, "^000200030000000008$")

		e.Run(t, "nftrader", "nft", "attrs", "decode", "-c", cfg, "000200030000000008")
		e.checkNextLine(t, "^class=8 rarity=3 power=2$")
	})
	t.Run("encode errors", func(t *testing.T) {
		e.RunWithError(t, "nftrader", "nft", "attrs", "encode", "--class", "300", "--rarity", "3", "--power", "2")
		e.RunWithError(t, "nftrader", "nft", "attrs", "encode", "--class", "8", "--rarity", "3")
	})
	t.Run("decode", func(t *testing.T) {
		e.Run(t, "nftrader", "nft", "attrs", "decode", "0x08030201")
		e.checkNextLine(t, "^class=8 rarity=3 power=2$")
		e.checkEOF(t)

		e.Run(t, "nftrader", "nft", "attrs", "decode", "tags:power2;rarity3;class8")
		e.checkNextLine(t, "^class=8 rarity=3 power=2$")
	})
	t.Run("decode errors", func(t *testing.T) {
		e.RunWithError(t, "nftrader", "nft", "attrs", "decode")
		e.RunWithError(t, "nftrader", "nft", "attrs", "decode", "0803")
		e.RunWithError(t, "nftrader", "nft", "attrs", "decode", "zz")
		e.RunWithError(t, "nftrader", "nft", "attrs", "decode", "tags:class8")
	})
}

func TestWallet(t *testing.T) {
	e := newExecutor(t)
	path := filepath.Join(t.TempDir(), "wallet.json")

	e.In.WriteString("one\rtwo\r")
	e.RunWithError(t, "nftrader", "wallet", "init", "-w", path)

	e.In.WriteString("pass\rpass\r")
	e.Run(t, "nftrader", "wallet", "init", "-w", path, "--name", "main")
	e.checkNextLine(t, "^wallet successfully created")
	line := e.getNextLine(t)
	require.Regexp(t, "^account address: N", line)
	addr := line[len("account address: "):]

	e.In.WriteString("pass\rpass\r")
	e.RunWithError(t, "nftrader", "wallet", "init", "-w", path)

	e.In.WriteString("wrong\r")
	e.RunWithError(t, "nftrader", "wallet", "dump-keys", "-w", path)

	e.In.WriteString("pass\r")
	e.Run(t, "nftrader", "wallet", "dump-keys", "-w", path, "-a", addr)
	var k struct {
		Address   string `json:"address"`
		PublicKey string `json:"publickey"`
		WIF       string `json:"wif"`
	}
	require.NoError(t, json.Unmarshal(e.Out.Bytes(), &k))
	require.Equal(t, addr, k.Address)
	pk, err := keys.NewPrivateKeyFromWIF(k.WIF)
	require.NoError(t, err)
	require.Equal(t, addr, pk.Address())

	t.Run("import", func(t *testing.T) {
		imported := filepath.Join(t.TempDir(), "imported.json")
		e.In.WriteString("pass\rpass\r")
		e.Run(t, "nftrader", "wallet", "init", "-w", imported, "--wif", k.WIF)
		e.checkNextLine(t, "^wallet successfully created")
		e.checkNextLine(t, "^account address: "+addr+"$")

		cfg := writeConfig(t, "ApplicationConfiguration:\n  UnlockWallet:\n    Path: "+imported+"\n    Password: pass\n")
		e.Run(t, "nftrader", "wallet", "dump-keys", "-c", cfg)
		require.Contains(t, e.Out.String(), k.WIF)
	})
	t.Run("no path", func(t *testing.T) {
		e.RunWithError(t, "nftrader", "wallet", "init")
	})
}

func TestHistory(t *testing.T) {
	e := newExecutor(t)
	dbPath := filepath.Join(t.TempDir(), "journal.bolt")
	cfg := writeConfig(t, "ApplicationConfiguration:\n  Journal:\n    Type: boltdb\n    BoltDBOptions:\n      FilePath: "+dbPath+"\n")

	e.Run(t, "nftrader", "nft", "history", "-c", cfg)
	e.checkNextLine(t, `^\[\]$`)

	s, err := storage.NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: dbPath})
	require.NoError(t, err)
	j := journal.New(s)
	require.NoError(t, j.Put(journal.Entry{
		Tx:        util.Uint256{1, 2, 3},
		Nonce:     4,
		Token:     []byte{0xab},
		Payment:   []byte{0xcd},
		Traits:    traits.Traits{Class: 8, Rarity: 3, Power: 2},
		Match:     "exact",
		State:     journal.StateHalt,
		Timestamp: 1,
	}))
	require.NoError(t, j.Close())

	e.Run(t, "nftrader", "nft", "history", "-c", cfg)
	var res []map[string]any
	require.NoError(t, json.Unmarshal(e.Out.Bytes(), &res))
	require.Len(t, res, 1)
	require.Equal(t, "ab", res[0]["token"])
	require.Equal(t, "cd", res[0]["payment"])
	require.Equal(t, "tags:class8;rarity3;power2", res[0]["traits"])
	require.Equal(t, journal.StateHalt, res[0]["state"])
	require.Equal(t, float64(4), res[0]["nonce"])
}

func TestNetworkCommandErrors(t *testing.T) {
	e := newExecutor(t)
	withContracts := writeConfig(t, "ApplicationConfiguration:\n  Contracts:\n    Exchange: 0a0b0c0d0e0f101112131415161718191a1b1c1d\n    Collection: d2a4cff31913016155e38e474a2c06d08be276cf\n")

	for name, args := range map[string][]string{
		"no endpoint":      {"nft", "assigned", "-c", withContracts},
		"no exchange":      {"nft", "supply", "-r", "http://127.0.0.1:1"},
		"bad tags":         {"nft", "match", "-c", withContracts, "--tags", "class8"},
		"no card":          {"nft", "trade", "-c", withContracts},
		"bad card":         {"nft", "watch", "-c", withContracts, "--card", "xyz"},
		"no traits":        {"nft", "mint", "-c", withContracts, "--class", "1"},
		"no wallet":        {"nft", "trade", "-c", withContracts, "--card", "01"},
		"bad config file":  {"nft", "assigned", "-c", "/nonexistent/config.yml"},
		"trade bad config": {"nft", "trade", "-c", "/nonexistent/config.yml", "--card", "01"},
	} {
		t.Run(name, func(t *testing.T) {
			e.RunWithError(t, append([]string{"nftrader"}, args...)...)
		})
	}
}
