package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/store/memory"
	"github.com/brightline/agency-server/internal/store/storetest"
)

func TestMemoryStoreConformance(t *testing.T) {
	storetest.RunSuite(t, func(t *testing.T) store.Store {
		return memory.New()
	})
}

func TestSeedIsIdempotent(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))
	first, err := s.ListAddons(ctx, true)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// A second seed must not duplicate the catalog.
	require.NoError(t, s.Seed(ctx))
	second, err := s.ListAddons(ctx, true)
	require.NoError(t, err)
	require.Len(t, second, len(first))
}
