package preset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsiec/timeframe/pkg/timecode"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	pal := &Preset{Name: "pal", Framerate: timecode.MustFramerate(timecode.Rate25)}
	require.NoError(t, store.Save(ctx, pal))
	created := pal.CreatedAt

	require.NoError(t, store.Save(ctx, &Preset{Name: "ntsc", Framerate: timecode.MustFramerate(timecode.Rate29_97DF)}))

	replaced := &Preset{Name: "pal", Framerate: timecode.MustFramerate(timecode.Rate50), Description: "progressive"}
	require.NoError(t, store.Save(ctx, replaced))
	assert.Equal(t, created, replaced.CreatedAt)

	got, err := store.Get(ctx, "pal")
	require.NoError(t, err)
	assert.Equal(t, "50", got.Framerate.String())
	assert.Equal(t, "progressive", got.Description)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ntsc", list[0].Name)
	assert.Equal(t, "pal", list[1].Name)

	require.NoError(t, store.Delete(ctx, "pal"))
	_, err = store.Get(ctx, "pal")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "pal"), ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, &Preset{Name: "pal", Framerate: timecode.MustFramerate(timecode.Rate25)}))

	got, err := store.Get(ctx, "pal")
	require.NoError(t, err)
	got.Description = "changed"

	again, err := store.Get(ctx, "pal")
	require.NoError(t, err)
	assert.Empty(t, again.Description)
}
