package styles

import (
	"context"
	"errors"
	"testing"

	"github.com/gnana997/stylebind/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	styles map[string]*host.Style
	err    error
	calls  map[string]int
}

func (r *countingResolver) StyleByID(ctx context.Context, id string) (*host.Style, error) {
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[id]++
	if r.err != nil {
		return nil, r.err
	}
	return r.styles[id], nil
}

func TestCache_HitsAfterFirstLookup(t *testing.T) {
	r := &countingResolver{styles: map[string]*host.Style{
		"S:1": {ID: "S:1", Name: "M3/sys/light/primary", Type: host.StylePaint},
	}}
	c := NewCache(r, 0, nil)

	for i := 0; i < 3; i++ {
		s, err := c.StyleByID(context.Background(), "S:1")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "M3/sys/light/primary", s.Name)
	}

	assert.Equal(t, 1, r.calls["S:1"])
	st := c.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, 1, st.Size)
}

func TestCache_CachesMissingStyle(t *testing.T) {
	r := &countingResolver{}
	c := NewCache(r, 0, nil)

	for i := 0; i < 2; i++ {
		s, err := c.StyleByID(context.Background(), "S:gone")
		require.NoError(t, err)
		assert.Nil(t, s)
	}
	assert.Equal(t, 1, r.calls["S:gone"])
}

func TestCache_ErrorsNotCached(t *testing.T) {
	boom := errors.New("boom")
	r := &countingResolver{err: boom}
	c := NewCache(r, 0, nil)

	_, err := c.StyleByID(context.Background(), "S:1")
	require.ErrorIs(t, err, boom)
	_, err = c.StyleByID(context.Background(), "S:1")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, r.calls["S:1"])
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCache_EvictsAndPurges(t *testing.T) {
	r := &countingResolver{styles: map[string]*host.Style{
		"a": {ID: "a"}, "b": {ID: "b"}, "c": {ID: "c"},
	}}
	c := NewCache(r, 2, nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "a"} {
		_, err := c.StyleByID(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, r.calls["a"], "a evicted by c")

	c.Purge()
	assert.Equal(t, 0, c.Stats().Size)
	_, err := c.StyleByID(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls["c"])
}
