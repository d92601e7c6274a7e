package apikey_test

import (
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/entity/apikey"
	"github.com/rise-and-shine/entityrepo/internal/storetest"
	"github.com/rise-and-shine/entityrepo/repogen"
)

var now = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

func repos(t *testing.T) map[string]apikey.Repository {
	t.Helper()

	db := storetest.SQLite(t)
	require.NoError(t, repogen.CreateTable[apikey.APIKey](t.Context(), db))

	return map[string]apikey.Repository{
		"sqlite": apikey.NewBunRepository(db),
		"memory": apikey.NewDocRepository(docstore.NewMemoryStore()),
		"redis":  apikey.NewDocRepository(storetest.Redis(t)),
	}
}

func key(id, env string, age time.Duration, subscriptions ...string) *apikey.APIKey {
	return &apikey.APIKey{
		ID:            id,
		Key:           "key-" + id,
		Subscriptions: subscriptions,
		Application:   "app-1",
		EnvironmentID: env,
		CreatedAt:     now.Add(-age),
		UpdatedAt:     now.Add(-age),
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func ids(keys []apikey.APIKey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.ID)
	}
	return out
}

func seed(t *testing.T, repo apikey.Repository, keys ...*apikey.APIKey) {
	t.Helper()
	for _, k := range keys {
		_, err := repo.Create(t.Context(), k)
		require.NoError(t, err)
	}
}

func TestFindByCriteriaRevoked(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			revoked := key("ak-3", "env-1", 3*time.Hour, "sub3")
			revoked.Revoked = true
			revoked.RevokedAt = &now
			seed(t, repo,
				key("ak-1", "env-1", time.Hour, "sub3"),
				key("ak-2", "env-1", 2*time.Hour, "sub1", "sub3"),
				revoked,
				key("ak-4", "env-1", 4*time.Hour, "sub1"),
				key("ak-5", "env-1", 5*time.Hour, "sub2"),
			)

			got, err := repo.Search(t.Context(), apikey.NewCriteria().Subscriptions("sub3").IncludeRevoked(false).Build())
			require.NoError(t, err)
			assert.Equal(t, []string{"ak-1", "ak-2"}, ids(got))

			got, err = repo.Search(t.Context(), apikey.NewCriteria().Subscriptions("sub3").IncludeRevoked(true).Build())
			require.NoError(t, err)
			assert.Equal(t, []string{"ak-1", "ak-2", "ak-3"}, ids(got))

			got, err = repo.FindBySubscription(t.Context(), "sub3")
			require.NoError(t, err)
			assert.Len(t, got, 3)
		})
	}
}

func TestCriteriaFilters(t *testing.T) {
	expiring := key("ak-2", "env-1", 2*time.Hour, "sub1")
	expiring.ExpireAt = timePtr(now.Add(48 * time.Hour))
	expired := key("ak-3", "env-2", 3*time.Hour, "sub2")
	expired.ExpireAt = timePtr(now.Add(-time.Hour))

	tests := []struct {
		name     string
		criteria apikey.Criteria
		want     []string
	}{
		{name: "no filter", criteria: apikey.NewCriteria().Build(), want: []string{"ak-1", "ak-2", "ak-3"}},
		{name: "empty ids", criteria: apikey.NewCriteria().IDs().Build(), want: []string{}},
		{name: "ids", criteria: apikey.NewCriteria().IDs("ak-3", "ak-9").Build(), want: []string{"ak-3"}},
		{name: "environment", criteria: apikey.NewCriteria().Environments("env-1").Build(), want: []string{"ak-1", "ak-2"}},
		{
			name:     "subscriptions and environment",
			criteria: apikey.NewCriteria().Subscriptions("sub1", "sub2").Environments("env-2").Build(),
			want:     []string{"ak-3"},
		},
		{
			name:     "updated window",
			criteria: apikey.NewCriteria().From(now.Add(-2 * time.Hour)).To(now.Add(-time.Hour)).Build(),
			want:     []string{"ak-2"},
		},
		{
			name:     "expire after without unexpiring keys",
			criteria: apikey.NewCriteria().ExpireAfter(now).Build(),
			want:     []string{"ak-2"},
		},
		{
			name:     "expire after with unexpiring keys",
			criteria: apikey.NewCriteria().ExpireAfter(now).IncludeWithoutExpiration(true).Build(),
			want:     []string{"ak-1", "ak-2"},
		},
		{
			name:     "expire before",
			criteria: apikey.NewCriteria().ExpireBefore(now).Build(),
			want:     []string{"ak-3"},
		},
	}

	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, repo, key("ak-1", "env-1", time.Hour, "sub1"), expiring, expired)

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := repo.Search(t.Context(), tt.criteria)
					require.NoError(t, err)
					assert.Equal(t, tt.want, ids(got))
				})
			}
		})
	}
}

func TestBuilderSnapshots(t *testing.T) {
	b := apikey.NewCriteria().Environments("env-1")
	first := b.Build()
	second := b.Environments("env-2").IncludeRevoked(true).Build()

	assert.NotEqual(t, first, second)
	assert.Equal(t, apikey.NewCriteria().Environments("env-1").Build(), first)
}

func TestFindByKey(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, repo, key("ak-1", "env-1", 0))

			got, err := repo.FindByKey(t.Context(), "key-ak-1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "ak-1", got.ID)

			got, err = repo.FindByKey(t.Context(), "unknown")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestCreateDuplicateKeyValue(t *testing.T) {
	db := storetest.SQLite(t)
	require.NoError(t, repogen.CreateTable[apikey.APIKey](t.Context(), db))
	repo := apikey.NewBunRepository(db)
	seed(t, repo, key("ak-1", "env-1", 0))

	dup := key("ak-2", "env-1", 0)
	dup.Key = "key-ak-1"
	_, err := repo.Create(t.Context(), dup)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, apikey.CodeKeyAlreadyExists))
	assert.Equal(t, errx.T_Conflict, errx.GetType(err))
}

func TestDeleteByEnvironmentID(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			revoked := key("ak-2", "env-1", 0)
			revoked.Revoked = true
			seed(t, repo, key("ak-1", "env-1", 0), revoked, key("ak-3", "env-2", 0))

			removed, err := repo.DeleteByEnvironmentID(t.Context(), "env-1")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"ak-1", "ak-2"}, removed)

			left, err := repo.Search(t.Context(), apikey.NewCriteria().Environments("env-1").IncludeRevoked(true).Build())
			require.NoError(t, err)
			assert.Empty(t, left)

			removed, err = repo.DeleteByEnvironmentID(t.Context(), "env-1")
			require.NoError(t, err)
			assert.Empty(t, removed)

			other, err := repo.FindByID(t.Context(), "ak-3")
			require.NoError(t, err)
			assert.NotNil(t, other)
		})
	}
}
