package trackingbag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/analytics-tagger/internal/analytics/flashstore"
)

func TestBag_IdempotentAdd(t *testing.T) {
	b := New()
	b.Add("ga('send', 'pageview');")
	b.Add("ga('send', 'pageview');")

	assert.Equal(t, []string{"ga('send', 'pageview');"}, b.Get())
}

func TestBag_ReadOnce(t *testing.T) {
	b := New()
	b.Add("a")

	assert.Equal(t, []string{"a"}, b.Get())
	assert.Empty(t, b.Get())
	assert.Equal(t, 0, b.Len())
}

func TestBag_GetOnEmpty(t *testing.T) {
	b := New()
	got := b.Get()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBag_OrderPreserved(t *testing.T) {
	b := New()
	b.Add("A")
	b.Add("B")
	b.Add("C")

	assert.Equal(t, []string{"A", "B", "C"}, b.Get())
}

func TestBag_DuplicateKeepsFirstPosition(t *testing.T) {
	b := New()
	b.Add("A")
	b.Add("B")
	b.Add("A")

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"A", "B"}, b.Get())
}

func TestBag_AddAfterGetStartsFresh(t *testing.T) {
	b := New()
	b.Add("A")
	b.Get()
	b.Add("A")

	assert.Equal(t, []string{"A"}, b.Get())
}

func TestBag_PersistMemoryOnlyIsNoop(t *testing.T) {
	b := New()
	b.Add("A")
	assert.NoError(t, b.Persist(context.Background()))
	assert.Equal(t, 1, b.Len())
}

func TestBag_SameRequestDoesNotTouchStore(t *testing.T) {
	ctx := context.Background()
	store := flashstore.NewMemoryStore(time.Minute, nil)

	b, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	b.Add("A")
	assert.Equal(t, []string{"A"}, b.Get())
	assert.Equal(t, 0, store.Len())

	require.NoError(t, b.Persist(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestBag_CarriesAcrossRedirect(t *testing.T) {
	ctx := context.Background()
	store := flashstore.NewMemoryStore(time.Minute, nil)

	// request 1 records events and redirects
	first, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	first.Add("A")
	first.Add("B")
	require.NoError(t, first.Persist(ctx))

	// request 2 renders
	second, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	second.Add("C")
	second.Add("A")
	assert.Equal(t, []string{"A", "B", "C"}, second.Get())
	require.NoError(t, second.Persist(ctx))

	// request 3 sees nothing
	third, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	assert.Empty(t, third.Get())
}

func TestBag_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := flashstore.NewMemoryStore(time.Minute, nil)

	a, _ := Restore(ctx, store, "a")
	a.Add("A")
	require.NoError(t, a.Persist(ctx))

	b, err := Restore(ctx, store, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Get())
}

func TestBag_RestoreConsumesEvenWithoutRender(t *testing.T) {
	ctx := context.Background()
	store := flashstore.NewMemoryStore(time.Minute, nil)

	first, _ := Restore(ctx, store, "s1")
	first.Add("A")
	require.NoError(t, first.Persist(ctx))

	second, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Len())
	require.NoError(t, second.Persist(ctx))

	ok, err := store.Has(ctx, SessionKey+":s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBag_PersistAfterDrainForgets(t *testing.T) {
	ctx := context.Background()
	store := flashstore.NewMemoryStore(time.Minute, nil)

	b, _ := Restore(ctx, store, "s1")
	b.Add("A")
	require.NoError(t, b.Persist(ctx))
	assert.Equal(t, 1, store.Len())

	b.Get()
	require.NoError(t, b.Persist(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestBag_RestoreIgnoresCorruptValue(t *testing.T) {
	ctx := context.Background()
	store := flashstore.NewMemoryStore(time.Minute, nil)
	require.NoError(t, store.Flash(ctx, SessionKey+":s1", []byte("not json")))

	b, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, store.Len())
}

type failingStore struct{ flashstore.Store }

var errStoreDown = errors.New("store down")

func (failingStore) Pull(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}
func (failingStore) Flash(context.Context, string, []byte) error {
	return errStoreDown
}

func TestBag_StoreErrorsSurface(t *testing.T) {
	ctx := context.Background()

	b, err := Restore(ctx, failingStore{}, "s1")
	require.ErrorIs(t, err, errStoreDown)
	require.NotNil(t, b)

	b.Add("A")
	assert.ErrorIs(t, b.Persist(ctx), errStoreDown)
	assert.Equal(t, []string{"A"}, b.Get())
}

// countingStore records which store calls a bag makes.
type countingStore struct {
	flashstore.Store
	calls []string
}

func (s *countingStore) Has(ctx context.Context, key string) (bool, error) {
	s.calls = append(s.calls, "has")
	return s.Store.Has(ctx, key)
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.calls = append(s.calls, "get")
	return s.Store.Get(ctx, key)
}

func (s *countingStore) Forget(ctx context.Context, key string) error {
	s.calls = append(s.calls, "forget")
	return s.Store.Forget(ctx, key)
}

func (s *countingStore) Pull(ctx context.Context, key string) ([]byte, bool, error) {
	s.calls = append(s.calls, "pull")
	return s.Store.Pull(ctx, key)
}

func TestBag_RestoreIsSingleStoreCall(t *testing.T) {
	ctx := context.Background()
	mem := flashstore.NewMemoryStore(time.Minute, nil)
	first, _ := Restore(ctx, mem, "s1")
	first.Add("A")
	require.NoError(t, first.Persist(ctx))

	store := &countingStore{Store: mem}
	b, err := Restore(ctx, store, "s1")
	require.NoError(t, err)

	assert.Equal(t, []string{"pull"}, store.calls)
	assert.Equal(t, []string{"A"}, b.Get())
	assert.Equal(t, 0, mem.Len())
}

func TestBag_RestoredCommandsReflashedWhenBagChanges(t *testing.T) {
	ctx := context.Background()
	store := flashstore.NewMemoryStore(time.Minute, nil)

	first, _ := Restore(ctx, store, "s1")
	first.Add("A")
	require.NoError(t, first.Persist(ctx))

	second, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	second.Add("B")
	require.NoError(t, second.Persist(ctx))

	third, err := Restore(ctx, store, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, third.Get())
}
