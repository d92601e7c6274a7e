package audit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/entity/audit"
	"github.com/rise-and-shine/entityrepo/internal/storetest"
	"github.com/rise-and-shine/entityrepo/repogen"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var start = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

func repos(t *testing.T, c *clock) map[string]audit.Repository {
	t.Helper()

	db := storetest.SQLite(t)
	require.NoError(t, repogen.CreateTable[audit.Audit](t.Context(), db))

	return map[string]audit.Repository{
		"sqlite": audit.NewBunRepository(db, audit.WithClock(c.Now)),
		"memory": audit.NewDocRepository(docstore.NewMemoryStore(), audit.WithClock(c.Now)),
	}
}

func entry(id, env string, created time.Time) *audit.Audit {
	return &audit.Audit{
		ID:             id,
		OrganizationID: "org-1",
		EnvironmentID:  env,
		ReferenceType:  audit.ReferenceAPI,
		ReferenceID:    "api-1",
		User:           "user-1",
		Event:          "API_UPDATED",
		Properties:     map[string]string{"name": "petstore"},
		Patch:          `[{"op":"replace","path":"/name"}]`,
		CreatedAt:      created,
	}
}

func TestDeleteByEnvironmentIDAndAge(t *testing.T) {
	c := &clock{now: start}
	day := 24 * time.Hour

	for name, repo := range repos(t, c) {
		t.Run(name, func(t *testing.T) {
			for _, a := range []*audit.Audit{
				entry("old", "env-x", start.Add(-day-time.Hour)),
				entry("young", "env-x", start.Add(-day+time.Hour)),
				entry("boundary", "env-x", start.Add(-day)),
				entry("old-elsewhere", "env-y", start.Add(-2*day)),
			} {
				_, err := repo.Create(t.Context(), a)
				require.NoError(t, err)
			}

			removed, err := repo.DeleteByEnvironmentIDAndAge(t.Context(), "env-x", day)
			require.NoError(t, err)
			assert.Equal(t, []string{"old"}, removed)

			left, err := repo.Search(t.Context(), audit.NewCriteria().Environments("env-x").Build())
			require.NoError(t, err)
			assert.Len(t, left, 2, "records at or under the max age are kept")

			other, err := repo.FindByID(t.Context(), "old-elsewhere")
			require.NoError(t, err)
			assert.NotNil(t, other)
		})
	}
}

func TestRetentionReadsClockPerCall(t *testing.T) {
	c := &clock{now: start}
	day := 24 * time.Hour

	for name, repo := range repos(t, c) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Create(t.Context(), entry("a1", "env-x", start.Add(-day+time.Hour)))
			require.NoError(t, err)

			removed, err := repo.DeleteByEnvironmentIDAndAge(t.Context(), "env-x", day)
			require.NoError(t, err)
			assert.Empty(t, removed)

			c.Advance(2 * time.Hour)
			defer c.Advance(-2 * time.Hour)

			removed, err = repo.DeleteByEnvironmentIDAndAge(t.Context(), "env-x", day)
			require.NoError(t, err)
			assert.Equal(t, []string{"a1"}, removed)
		})
	}
}

func TestSearchByReference(t *testing.T) {
	for name, repo := range repos(t, &clock{now: start}) {
		t.Run(name, func(t *testing.T) {
			onEnv := entry("a2", "env-1", start.Add(-time.Minute))
			onEnv.ReferenceType = audit.ReferenceEnvironment
			onEnv.ReferenceID = "env-1"
			for _, a := range []*audit.Audit{entry("a1", "env-1", start.Add(-2*time.Minute)), onEnv} {
				_, err := repo.Create(t.Context(), a)
				require.NoError(t, err)
			}

			got, err := repo.Search(t.Context(), audit.NewCriteria().References(audit.ReferenceEnvironment, "env-1").Build())
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "a2", got[0].ID)

			got, err = repo.Search(t.Context(), audit.NewCriteria().Organizations("org-1").Build(),
				repogen.WithExcludedFields(audit.FieldPatch))
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Empty(t, got[0].Patch)
			assert.Equal(t, "petstore", got[0].Properties["name"])

			removed, err := repo.DeleteByReference(t.Context(), audit.ReferenceAPI, "api-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"a1"}, removed)
		})
	}
}

func TestDeleteByEnvironmentID(t *testing.T) {
	about := func(id, recordedIn string) *audit.Audit {
		a := entry(id, recordedIn, start)
		a.ReferenceType = audit.ReferenceEnvironment
		a.ReferenceID = "env-1"
		return a
	}

	for name, repo := range repos(t, &clock{now: start}) {
		t.Run(name, func(t *testing.T) {
			for _, a := range []*audit.Audit{
				entry("in-env", "env-1", start),
				about("about-env", "env-1"),
				about("about-env-elsewhere", "env-2"),
				entry("other-env", "env-2", start),
			} {
				_, err := repo.Create(t.Context(), a)
				require.NoError(t, err)
			}

			removed, err := repo.DeleteByEnvironmentID(t.Context(), "env-1")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"in-env", "about-env", "about-env-elsewhere"}, removed)

			left, err := repo.Search(t.Context(), audit.NewCriteria().Build())
			require.NoError(t, err)
			require.Len(t, left, 1)
			assert.Equal(t, "other-env", left[0].ID)

			removed, err = repo.DeleteByEnvironmentID(t.Context(), "env-1")
			require.NoError(t, err)
			assert.Empty(t, removed)
		})
	}
}
