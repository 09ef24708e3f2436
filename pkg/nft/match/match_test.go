package match

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/nftrader/pkg/nft/traits"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{ID: []byte{0x01}, Nonce: 1, Traits: traits.Traits{Class: 1, Rarity: 2, Power: 3}},
		{ID: []byte{0x02}, Nonce: 2, Traits: traits.Traits{Class: 4, Rarity: 5, Power: 6}},
	}
}

func u8(v uint8) *uint8 { return &v }

func TestFindEmpty(t *testing.T) {
	for _, target := range []traits.Traits{{}, {Class: 1, Rarity: 2, Power: 3}} {
		_, ok := Find(nil, target)
		require.False(t, ok)
		_, ok = Find([]Record{}, target)
		require.False(t, ok)

		_, kind := FindWithFallback(nil, target, Partial{Class: u8(1)})
		require.Equal(t, None, kind)
		require.False(t, kind.Found())
	}
}

func TestFind(t *testing.T) {
	recs := sampleRecords()

	r, ok := Find(recs, traits.Traits{Class: 4, Rarity: 5, Power: 6})
	require.True(t, ok)
	require.Equal(t, 2, r.Nonce)

	_, ok = Find(recs, traits.Traits{Class: 9, Rarity: 9, Power: 9})
	require.False(t, ok)
}

func TestFindOrderStable(t *testing.T) {
	same := traits.Traits{Class: 7, Rarity: 7, Power: 7}
	recs := []Record{
		{ID: []byte{1}, Nonce: 1, Traits: same},
		{ID: []byte{2}, Nonce: 2, Traits: traits.Traits{}},
		{ID: []byte{3}, Nonce: 3, Traits: same},
	}
	r, ok := Find(recs, same)
	require.True(t, ok)
	require.Equal(t, 1, r.Nonce)

	reversed := make([]Record, len(recs))
	for i := range recs {
		reversed[len(recs)-1-i] = recs[i]
	}
	r, ok = Find(reversed, same)
	require.True(t, ok)
	require.Equal(t, 3, r.Nonce)

	for i := 0; i < 10; i++ {
		again, _ := Find(reversed, same)
		require.Equal(t, r, again)
	}
}

func TestFindWithFallback(t *testing.T) {
	recs := sampleRecords()

	t.Run("exact wins", func(t *testing.T) {
		r, kind := FindWithFallback(recs, traits.Traits{Class: 4, Rarity: 5, Power: 6}, Partial{Class: u8(1)})
		require.Equal(t, Exact, kind)
		require.Equal(t, 2, r.Nonce)
	})
	t.Run("class only", func(t *testing.T) {
		r, kind := FindWithFallback(recs, traits.Traits{Class: 9, Rarity: 9, Power: 9}, Partial{Class: u8(1)})
		require.Equal(t, Relaxed, kind)
		require.True(t, kind.Found())
		require.Equal(t, 1, r.Nonce)
	})
	t.Run("relaxed mismatch", func(t *testing.T) {
		_, kind := FindWithFallback(recs, traits.Traits{Class: 9, Rarity: 9, Power: 9}, Partial{Class: u8(1), Rarity: u8(5)})
		require.Equal(t, None, kind)
	})
	t.Run("empty partial", func(t *testing.T) {
		_, kind := FindWithFallback(recs, traits.Traits{Class: 9, Rarity: 9, Power: 9}, Partial{})
		require.Equal(t, None, kind)
	})
	t.Run("relax from target", func(t *testing.T) {
		target := traits.Traits{Class: 4, Rarity: 5, Power: 99}
		r, kind := FindWithFallback(recs, target, Relax(target, traits.Class, traits.Rarity))
		require.Equal(t, Relaxed, kind)
		require.Equal(t, 2, r.Nonce)
	})
}

func TestRelax(t *testing.T) {
	target := traits.Traits{Class: 1, Rarity: 2, Power: 3}
	require.True(t, Relax(target).IsEmpty())

	p := Relax(target, traits.Power)
	require.Nil(t, p.Class)
	require.Nil(t, p.Rarity)
	require.Equal(t, uint8(3), *p.Power)
	require.Equal(t, "power=3", p.String())
	require.Equal(t, "class=1 rarity=2 power=3", Relax(target, traits.Fields...).String())
	require.Equal(t, "any", Partial{}.String())

	require.True(t, p.Matches(traits.Traits{Class: 100, Power: 3}))
	require.False(t, p.Matches(traits.Traits{Class: 1, Rarity: 2, Power: 4}))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "exact", Exact.String())
	require.Equal(t, "relaxed", Relaxed.String())
	require.Equal(t, "none", None.String())
}

func TestDecodeAll(t *testing.T) {
	b := DecodeAll([]RawItem{
		{ID: []byte("a"), Attributes: []byte{1, 2, 3}},
		{ID: []byte("b"), Attributes: []byte{1}},
		{ID: nil, Attributes: []byte{1, 2, 3}},
		{ID: []byte("d"), Attributes: []byte{4, 5, 6, 7}},
		{ID: []byte("e"), Attributes: []byte{1, 2, 3}, Err: errors.New("not a struct")},
	}, traits.DefaultLayout)

	require.Equal(t, []Record{
		{ID: []byte("a"), Nonce: 1, Traits: traits.Traits{Class: 1, Rarity: 2, Power: 3}},
		{ID: []byte("d"), Nonce: 2, Traits: traits.Traits{Class: 4, Rarity: 5, Power: 6}},
	}, b.Records)
	require.Len(t, b.Skipped, 3)
	require.Equal(t, 2, b.Skipped[0].Position)
	var decErr *traits.DecodingError
	require.True(t, errors.As(b.Skipped[0].Err, &decErr))
	require.Equal(t, 3, b.Skipped[1].Position)
	require.ErrorIs(t, b.Skipped[1].Err, ErrNoID)
	require.Equal(t, 5, b.Skipped[2].Position)
	require.EqualError(t, b.Skipped[2].Err, "not a struct")

	b = DecodeAll(nil, traits.DefaultLayout)
	require.Empty(t, b.Records)
	require.Empty(t, b.Skipped)
}

func TestDecodeAllNoncesSkipGaps(t *testing.T) {
	b := DecodeAll([]RawItem{
		{ID: []byte("a"), Attributes: []byte{1, 2, 3}},
		{ID: []byte("b"), Attributes: []byte{1}},
		{ID: []byte("c"), Attributes: []byte{4, 5, 6}},
	}, traits.DefaultLayout)

	require.Len(t, b.Records, 2)
	require.Equal(t, 1, b.Records[0].Nonce)
	require.Equal(t, []byte("c"), b.Records[1].ID)
	require.Equal(t, 2, b.Records[1].Nonce)
	require.Equal(t, []Skip{{Position: 2, Err: b.Skipped[0].Err}}, b.Skipped)

	r, ok := Find(b.Records, traits.Traits{Class: 4, Rarity: 5, Power: 6})
	require.True(t, ok)
	require.Equal(t, 2, r.Nonce)
}
