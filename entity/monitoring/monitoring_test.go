package monitoring_test

import (
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/entityrepo/asyncwrite"
	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/entity/monitoring"
	"github.com/rise-and-shine/entityrepo/internal/storetest"
	"github.com/rise-and-shine/entityrepo/repogen"
)

var now = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

func repos(t *testing.T) map[string]monitoring.Repository {
	t.Helper()

	db := storetest.SQLite(t)
	require.NoError(t, repogen.CreateTable[monitoring.Monitoring](t.Context(), db))

	return map[string]monitoring.Repository{
		"sqlite": monitoring.NewBunRepository(db),
		"memory": monitoring.NewDocRepository(docstore.NewMemoryStore()),
	}
}

func report(id, node string, evaluated time.Duration) *monitoring.Monitoring {
	return &monitoring.Monitoring{
		ID:          id,
		NodeID:      node,
		Type:        monitoring.TypeHealthCheck,
		Payload:     `{"healthy":true}`,
		EvaluatedAt: now.Add(evaluated),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ids(reports []monitoring.Monitoring) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func TestWriterCreatesAsynchronously(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			w, err := monitoring.NewWriter(repo, asyncwrite.Config{Timeout: 5 * time.Second, Buffer: 4})
			require.NoError(t, err)
			defer func() { require.NoError(t, w.Close()) }()

			tasks := []*asyncwrite.Task[monitoring.Monitoring]{
				w.Submit(t.Context(), report("m1", "gw-1", time.Minute)),
				w.Submit(t.Context(), report("m2", "gw-1", 2*time.Minute)),
				w.Submit(t.Context(), report("m3", "gw-2", 3*time.Minute)),
			}
			for _, task := range tasks {
				got, err := task.Await(t.Context())
				require.NoError(t, err)
				assert.NotEmpty(t, got.ID)
			}

			got, err := repo.Search(t.Context(), monitoring.NewCriteria().NodeIDs("gw-1").Build())
			require.NoError(t, err)
			assert.Equal(t, []string{"m2", "m1"}, ids(got))
		})
	}
}

func TestWriterReturnsStoreError(t *testing.T) {
	repo := monitoring.NewDocRepository(docstore.NewMemoryStore())
	_, err := repo.Create(t.Context(), report("m1", "gw-1", 0))
	require.NoError(t, err)

	w, err := monitoring.NewWriter(repo, asyncwrite.Config{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	_, err = w.Submit(t.Context(), report("m1", "gw-1", 0)).Await(t.Context())
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, repogen.CodeConflict))
}

func TestSearchWindowAndDelete(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			for _, m := range []*monitoring.Monitoring{
				report("m1", "gw-1", time.Minute),
				report("m2", "gw-1", 2*time.Minute),
				report("m3", "gw-2", 3*time.Minute),
			} {
				_, err := repo.Create(t.Context(), m)
				require.NoError(t, err)
			}

			got, err := repo.Search(t.Context(), monitoring.NewCriteria().
				From(now.Add(2*time.Minute)).To(now.Add(3*time.Minute)).Build())
			require.NoError(t, err)
			assert.Equal(t, []string{"m2"}, ids(got))

			removed, err := repo.DeleteByNodeID(t.Context(), "gw-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"m2", "m1"}, removed)

			count, err := repo.Count(t.Context(), monitoring.NewCriteria().Build())
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}
