package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOwnedAlwaysWinsOverShared(t *testing.T) {
	s := New()
	tok := NewToken[int]("test.ownership.int")

	s.HandleUpdateShared(Update{Key: tok.Key(), Value: 1})
	v, ok := Get(s, tok)
	require.True(t, ok)
	require.Equal(t, 1, v)

	Insert(s, tok, 2)
	v, ok = Get(s, tok)
	require.True(t, ok)
	require.Equal(t, 2, v)

	// A further shared update must not clobber the owned entry.
	s.HandleUpdateShared(Update{Key: tok.Key(), Value: 3})
	v, ok = Get(s, tok)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestRemoveOnlyAffectsSameClass(t *testing.T) {
	s := New()
	tok := NewToken[string]("test.ownership.remove")

	s.HandleUpdateShared(Update{Key: tok.Key(), Value: "shared"})
	Remove(s, tok) // owned remove on a shared-only key is a no-op

	v, ok := Get(s, tok)
	require.True(t, ok)
	require.Equal(t, "shared", v)
}

func TestGetTypeMismatchReturnsAbsent(t *testing.T) {
	s := New()
	intTok := NewToken[int]("test.typemismatch")
	s.HandleUpdateShared(Update{Key: intTok.Key(), Value: 42})

	// A retrieval through a token of a different type but the same key
	// must report absent rather than panic.
	foreign := Token[string]{key: intTok.Key()}
	_, ok := Get(s, foreign)
	require.False(t, ok)
}

func TestRefreshRefiresOwnedOnly(t *testing.T) {
	s := New()
	owned := NewToken[int]("test.refresh.owned")
	shared := NewToken[int]("test.refresh.shared")

	Insert(s, owned, 7)
	s.HandleUpdateShared(Update{Key: shared.Key(), Value: 9})

	updates := s.Refresh()
	require.Len(t, updates, 1)
	require.Equal(t, owned.Key(), updates[0].Key)
	require.Equal(t, 7, updates[0].Value)
}

func TestResetSharedDropsOnlySharedEntries(t *testing.T) {
	s := New()
	owned := NewToken[int]("test.reset.owned")
	shared := NewToken[int]("test.reset.shared")

	Insert(s, owned, 1)
	s.HandleUpdateShared(Update{Key: shared.Key(), Value: 2})

	s.ResetShared()

	_, ok := Get(s, owned)
	require.True(t, ok)
	_, ok = Get(s, shared)
	require.False(t, ok)
}

func TestRemoveRemovesOwnedEntry(t *testing.T) {
	s := New()
	tok := NewToken[int]("test.remove.owned")

	Insert(s, tok, 5)
	Remove(s, tok)

	_, ok := Get(s, tok)
	require.False(t, ok)
}

func TestPlainCodecRoundTrip(t *testing.T) {
	var codec Plain[int]
	b, err := codec.Encode(42)
	require.NoError(t, err)

	v, err := codec.Decode(b)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestTimestampedCodecRestampsOnDecode(t *testing.T) {
	var codec Timestamped[int]
	b, err := codec.Encode(42)
	require.NoError(t, err)

	tv, err := codec.Decode(b)
	require.NoError(t, err)
	require.Equal(t, 42, tv.Value)
	require.False(t, tv.At.IsZero())
}
