package journal

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/nspcc-dev/nftrader/pkg/storage"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	j := New(storage.NewMemoryStore())
	t.Cleanup(func() { _ = j.Close() })

	_, err := j.Get(util.Uint256{1})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = j.ByToken([]byte("tok"))
	require.ErrorIs(t, err, ErrNotFound)
	paid, err := j.Paid([]byte("tok"), 0)
	require.NoError(t, err)
	require.False(t, paid)

	e1 := Entry{
		Tx:              util.Uint256{1, 2, 3},
		ValidUntilBlock: 100,
		Nonce:           3,
		Token:           []byte("tok"),
		Payment:         []byte("mine"),
		Traits:          traits.Traits{Class: 1, Rarity: 2, Power: 3},
		Match:           "exact",
		State:           StateSent,
		Timestamp:       20,
	}
	require.NoError(t, j.Put(e1))

	actual, err := j.Get(e1.Tx)
	require.NoError(t, err)
	require.Equal(t, e1, *actual)

	actual, err = j.ByToken([]byte("tok"))
	require.NoError(t, err)
	require.Equal(t, e1, *actual)

	paid, err = j.Paid([]byte("tok"), 0)
	require.NoError(t, err)
	require.True(t, paid)

	e1.State = StateFault
	e1.Exception = "at instruction 12 (ASSERT): ASSERT failed"
	require.NoError(t, j.Put(e1))
	paid, err = j.Paid([]byte("tok"), 0)
	require.NoError(t, err)
	require.False(t, paid)

	e2 := e1
	e2.Tx = util.Uint256{0xff}
	e2.State = StateHalt
	e2.Exception = ""
	e2.Timestamp = 10
	require.NoError(t, j.Put(e2))
	paid, err = j.Paid([]byte("tok"), 0)
	require.NoError(t, err)
	require.True(t, paid)

	all, err := j.All()
	require.NoError(t, err)
	require.Equal(t, []Entry{e2, e1}, all)
}

func TestJournalPaidExpiry(t *testing.T) {
	j := New(storage.NewMemoryStore())
	t.Cleanup(func() { _ = j.Close() })

	e := Entry{Tx: util.Uint256{7}, ValidUntilBlock: 100, Token: []byte("tok"), State: StateSent}
	require.NoError(t, j.Put(e))

	for height, expected := range map[uint32]bool{
		0:   true,
		50:  true,
		100: true,
		101: false,
	} {
		paid, err := j.Paid([]byte("tok"), height)
		require.NoError(t, err)
		require.Equal(t, expected, paid, height)
	}

	e.State = StateHalt
	require.NoError(t, j.Put(e))
	paid, err := j.Paid([]byte("tok"), 1000)
	require.NoError(t, err)
	require.True(t, paid)
}

func TestJournalCorrupted(t *testing.T) {
	s := storage.NewMemoryStore()
	j := New(s)
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		string(entryKey(util.Uint256{1})): []byte("not a json"),
		string(tokenKey([]byte("bad"))):   []byte{1, 2, 3},
	}))
	_, err := j.Get(util.Uint256{1})
	require.Error(t, err)
	_, err = j.ByToken([]byte("bad"))
	require.Error(t, err)
	_, err = j.All()
	require.Error(t, err)
}
