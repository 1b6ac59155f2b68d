package contextstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regmesh/core"
)

func TestInMemoryStoreLoadMissing(t *testing.T) {
	s := NewInMemoryStore()
	cc, err := s.Load(context.Background(), core.ConversationKey{TenantID: "t", ConversationID: "c"})
	require.NoError(t, err)
	assert.Nil(t, cc)
}

func TestInMemoryStoreSaveLoad(t *testing.T) {
	s := NewInMemoryStore()
	key := core.ConversationKey{TenantID: "t", ConversationID: "c"}

	require.NoError(t, s.Save(context.Background(), key, &core.ConversationContext{
		ActiveNodeIDs: []string{"a", "b"},
	}))

	cc, err := s.Load(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, cc)
	assert.Equal(t, []string{"a", "b"}, cc.ActiveNodeIDs)

	// Mutating the loaded copy must not leak back into the store.
	cc.ActiveNodeIDs[0] = "mutated"
	again, err := s.Load(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, again.ActiveNodeIDs)
}

func TestInMemoryStoreMergeActiveNodeIDs(t *testing.T) {
	s := NewInMemoryStore()
	key := core.ConversationKey{TenantID: "t", ConversationID: "c"}

	require.NoError(t, s.MergeActiveNodeIDs(context.Background(), key, []string{"a", "b"}))
	require.NoError(t, s.MergeActiveNodeIDs(context.Background(), key, []string{"b", "c", ""}))

	cc, err := s.Load(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cc.ActiveNodeIDs, "merge unions, never replaces")
}

func TestInMemoryStoreConcurrentMerge(t *testing.T) {
	s := NewInMemoryStore()
	key := core.ConversationKey{TenantID: "t", ConversationID: "c"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.MergeActiveNodeIDs(context.Background(), key, []string{"x", "y"})
		}()
	}
	wg.Wait()

	cc, err := s.Load(context.Background(), key)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, cc.ActiveNodeIDs)
}

func TestInMemoryStoreTenantIsolation(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.MergeActiveNodeIDs(ctx,
		core.ConversationKey{TenantID: "t1", ConversationID: "c"}, []string{"a"}))
	require.NoError(t, s.MergeActiveNodeIDs(ctx,
		core.ConversationKey{TenantID: "t2", ConversationID: "c"}, []string{"b"}))

	cc, err := s.Load(ctx, core.ConversationKey{TenantID: "t1", ConversationID: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, cc.ActiveNodeIDs)
}
