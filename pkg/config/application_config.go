package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/nspcc-dev/nftrader/pkg/storage/dbconfig"
	"go.uber.org/zap/zapcore"
)

// ApplicationConfiguration config specific to the client.
type ApplicationConfiguration struct {
	Logger `yaml:",inline"`

	RPC          RPC                      `yaml:"RPC"`
	UnlockWallet Wallet                   `yaml:"UnlockWallet"`
	Contracts    Contracts                `yaml:"Contracts"`
	Methods      Methods                  `yaml:"Methods"`
	Attributes   Attributes               `yaml:"Attributes"`
	Trade        Trade                    `yaml:"Trade"`
	Journal      dbconfig.DBConfiguration `yaml:"Journal"`
	Prometheus   BasicService             `yaml:"Prometheus"`
	Pprof        BasicService             `yaml:"Pprof"`
}

// Logger contains logger configuration.
type Logger struct {
	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`
}

// RPC is the RPC node connection configuration.
type RPC struct {
	Endpoint       string        `yaml:"Endpoint"`
	DialTimeout    time.Duration `yaml:"DialTimeout"`
	RequestTimeout time.Duration `yaml:"RequestTimeout"`
}

// Wallet is a wallet info.
type Wallet struct {
	Path     string `yaml:"Path"`
	Password string `yaml:"Password"`
}

// Contracts holds hashes (LE hex or address form) of contracts used.
type Contracts struct {
	// Exchange is the contract selling cards for other cards.
	Exchange string `yaml:"Exchange"`
	// Collection is the NEP-11 contract of cards owned by the user, it's
	// used for minting and paying the exchange.
	Collection string `yaml:"Collection"`
}

// Methods names exchange and collection contract methods that are not
// defined by NEP-11.
type Methods struct {
	Assigned string `yaml:"Assigned"`
	Supply   string `yaml:"Supply"`
	Mint     string `yaml:"Mint"`
}

// Attributes describes the attribute blob format.
type Attributes struct {
	Layout traits.Layout `yaml:"Layout"`
}

// Trade contains trading parameters.
type Trade struct {
	// RelaxedTraits lists traits used for the fallback match when there
	// is no exact one, empty list disables fallback.
	RelaxedTraits []string      `yaml:"RelaxedTraits"`
	PollInterval  time.Duration `yaml:"PollInterval"`
	// Await makes the client wait for transaction execution.
	Await bool `yaml:"Await"`
}

var errNoContract = errors.New("contract hash is not set")

// ParseHash parses a contract hash given either in LE hex (with an optional
// 0x prefix) or in address form.
func ParseHash(s string) (util.Uint160, error) {
	const uint160size = 2 * util.Uint160Size
	switch len(s) {
	case uint160size, uint160size + 2:
		return util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	default:
		return address.StringToUint160(s)
	}
}

// ExchangeHash returns parsed exchange contract hash.
func (c Contracts) ExchangeHash() (util.Uint160, error) {
	if c.Exchange == "" {
		return util.Uint160{}, fmt.Errorf("exchange %w", errNoContract)
	}
	return ParseHash(c.Exchange)
}

// CollectionHash returns parsed collection contract hash.
func (c Contracts) CollectionHash() (util.Uint160, error) {
	if c.Collection == "" {
		return util.Uint160{}, fmt.Errorf("collection %w", errNoContract)
	}
	return ParseHash(c.Collection)
}

// RelaxedFields returns parsed RelaxedTraits.
func (t Trade) RelaxedFields() ([]traits.Field, error) {
	return traits.ParseFields(t.RelaxedTraits)
}

// Validate checks ApplicationConfiguration for internal consistency.
func (a ApplicationConfiguration) Validate() error {
	if a.LogLevel != "" {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("invalid LogLevel: %w", err)
		}
	}
	if a.RPC.DialTimeout < 0 || a.RPC.RequestTimeout < 0 {
		return errors.New("negative RPC timeout")
	}
	for name, h := range map[string]string{
		"Exchange":   a.Contracts.Exchange,
		"Collection": a.Contracts.Collection,
	} {
		if h == "" {
			continue
		}
		if _, err := ParseHash(h); err != nil {
			return fmt.Errorf("invalid %s contract hash: %w", name, err)
		}
	}
	if a.Methods.Assigned == "" || a.Methods.Supply == "" || a.Methods.Mint == "" {
		return errors.New("empty contract method name")
	}
	if err := a.Attributes.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid attributes layout: %w", err)
	}
	if _, err := a.Trade.RelaxedFields(); err != nil {
		return fmt.Errorf("invalid RelaxedTraits: %w", err)
	}
	if a.Trade.PollInterval <= 0 {
		return errors.New("PollInterval must be positive")
	}
	switch a.Journal.Type {
	case dbconfig.BoltDB, dbconfig.LevelDB, dbconfig.InMemoryDB:
	default:
		return fmt.Errorf("unknown journal DB type: %q", a.Journal.Type)
	}
	for name, svc := range map[string]BasicService{
		"Prometheus": a.Prometheus,
		"Pprof":      a.Pprof,
	} {
		if svc.Enabled && len(svc.Addresses) == 0 {
			return fmt.Errorf("%s is enabled, but no Addresses specified", name)
		}
	}
	return nil
}
