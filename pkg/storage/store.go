/*
Package storage provides key-value backends for locally kept client data.
*/
package storage

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/nftrader/pkg/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// SeekRange represents options for Store.Seek operation.
type SeekRange struct {
	// Prefix denotes the Seek's lookup key.
	Prefix []byte
	// Start denotes value appended to the Prefix to start Seek from.
	// Seeking starting from some key includes this key to the result;
	// if no matching key was found then next suitable key is picked up.
	// Empty Start means seeking through all keys with matching Prefix.
	Start []byte
}

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

// Store is a simple KV backend.
type Store interface {
	Get([]byte) ([]byte, error)
	// PutChangeSet atomically applies all puts, nil values delete keys.
	PutChangeSet(puts map[string][]byte) error
	// Seek calls f for every key-value pair in rng sorted by key in
	// ascending order until f returns false. Key and value slices are
	// only valid until the next call to f and must not be modified.
	Seek(rng SeekRange, f func(k, v []byte) bool)
	Close() error
}

func seekRangeToPrefixes(sr SeekRange) *util.Range {
	var (
		rang  = util.BytesPrefix(sr.Prefix)
		start = make([]byte, len(sr.Prefix)+len(sr.Start))
	)
	copy(start, sr.Prefix)
	copy(start[len(sr.Prefix):], sr.Start)
	rang.Start = start
	return rang
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB:
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}
