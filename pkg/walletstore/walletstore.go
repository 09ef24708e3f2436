/*
Package walletstore creates, opens and unlocks NEP-6 wallets used to sign
client transactions.
*/
package walletstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

var (
	// ErrWalletExists is returned when trying to create a wallet over an
	// existing file.
	ErrWalletExists = errors.New("wallet file already exists")
	// ErrNoDefault is returned when a wallet has no default account.
	ErrNoDefault = errors.New("can't get default address")
	// ErrLocked is returned when private key of a locked account is
	// requested.
	ErrLocked = errors.New("account is locked")
)

// Keys is a printable set of account keys.
type Keys struct {
	Address   string `json:"address"`
	PublicKey string `json:"publickey"`
	WIF       string `json:"wif"`
}

// Create creates a new wallet file at path with a single new account
// encrypted with password.
func Create(path, label, password string) (*wallet.Wallet, *wallet.Account, error) {
	w, err := newWallet(path)
	if err != nil {
		return nil, nil, err
	}
	if err := w.CreateAccount(label, password); err != nil {
		return nil, nil, fmt.Errorf("can't create account: %w", err)
	}
	if err := w.Save(); err != nil {
		return nil, nil, fmt.Errorf("can't save wallet: %w", err)
	}
	return w, w.Accounts[0], nil
}

// Import creates a new wallet file at path with a single account made from
// the given WIF and encrypted with password.
func Import(path, label, wif, password string) (*wallet.Wallet, *wallet.Account, error) {
	acc, err := wallet.NewAccountFromWIF(wif)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid WIF: %w", err)
	}
	w, err := newWallet(path)
	if err != nil {
		return nil, nil, err
	}
	acc.Label = label
	if err := acc.Encrypt(password, w.Scrypt); err != nil {
		return nil, nil, fmt.Errorf("can't encrypt account: %w", err)
	}
	w.AddAccount(acc)
	if err := w.Save(); err != nil {
		return nil, nil, fmt.Errorf("can't save wallet: %w", err)
	}
	return w, acc, nil
}

func newWallet(path string) (*wallet.Wallet, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, path)
	}
	w, err := wallet.NewWallet(path)
	if err != nil {
		return nil, fmt.Errorf("can't create wallet: %w", err)
	}
	return w, nil
}

// Open reads wallet from the given file.
func Open(path string) (*wallet.Wallet, error) {
	return wallet.NewWalletFromFile(path)
}

// Account returns an account from the wallet without decrypting it. The
// default account is used if addr is nil.
func Account(w *wallet.Wallet, addr *util.Uint160) (*wallet.Account, error) {
	var h util.Uint160
	if addr != nil {
		h = *addr
	} else {
		h = w.GetChangeAddress()
		if h.Equals(util.Uint160{}) {
			return nil, ErrNoDefault
		}
	}
	acc := w.GetAccount(h)
	if acc == nil {
		return nil, fmt.Errorf("wallet contains no account for '%s'", address.Uint160ToString(h))
	}
	return acc, nil
}

// Unlock returns an account from the wallet ready for signing. The default
// account is used if addr is nil. Accounts that are already decrypted are
// returned as is.
func Unlock(w *wallet.Wallet, addr *util.Uint160, password string) (*wallet.Account, error) {
	acc, err := Account(w, addr)
	if err != nil {
		return nil, err
	}
	if acc.CanSign() || acc.EncryptedWIF == "" {
		return acc, nil
	}
	if err := acc.Decrypt(password, w.Scrypt); err != nil {
		return nil, err
	}
	return acc, nil
}

// Dump returns keys of an unlocked account.
func Dump(acc *wallet.Account) (Keys, error) {
	pk := acc.PrivateKey()
	if pk == nil {
		return Keys{}, ErrLocked
	}
	return Keys{
		Address:   acc.Address,
		PublicKey: pk.PublicKey().StringCompressed(),
		WIF:       pk.WIF(),
	}, nil
}
