package fixtures_test

import (
	"strings"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/entity/apikey"
	"github.com/rise-and-shine/entityrepo/entity/subscription"
	"github.com/rise-and-shine/entityrepo/fixtures"
	"github.com/rise-and-shine/entityrepo/val"
)

const document = `
api_key:
  - id: key-1
    key: d41d8cd98f00b204e9800998ecf8427e
    subscriptions: [sub-1]
    environment_id: env-1
    created_at: "2024-05-10T08:00:00Z"
    updated_at: "2024-05-10T08:00:00Z"
subscription:
  - id: sub-1
    api: api-1
    plan: plan-1
    application: app-1
    environment_id: env-1
    status: ACCEPTED
    metadata:
      team: payments
    created_at: "2024-05-10T08:00:00Z"
    updated_at: "2024-05-10T08:00:00Z"
  - id: sub-2
    api: api-1
    plan: plan-1
    application: app-2
    environment_id: env-1
    status: PENDING
    created_at: "2024-05-10T09:00:00Z"
    updated_at: "2024-05-10T09:00:00Z"
`

type registry struct {
	*fixtures.Registry
	keys apikey.Repository
	subs subscription.Repository
}

func newRegistry() registry {
	r := registry{
		Registry: fixtures.NewRegistry(),
		keys:     apikey.NewDocRepository(docstore.NewMemoryStore()),
		subs:     subscription.NewDocRepository(docstore.NewMemoryStore()),
	}
	fixtures.Register(r.Registry, "subscription", r.subs.Create)
	fixtures.Register(r.Registry, "api_key", r.keys.Create)
	return r
}

func TestLoad(t *testing.T) {
	r := newRegistry()

	loaded, err := fixtures.Load(t.Context(), r.Registry, strings.NewReader(document))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"subscription": 2, "api_key": 1}, loaded)

	sub, err := r.subs.FindByID(t.Context(), "sub-1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, subscription.StatusAccepted, sub.Status)
	assert.Equal(t, "payments", sub.Metadata["team"])
	assert.True(t, time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC).Equal(sub.CreatedAt))

	key, err := r.keys.FindByKey(t.Context(), "d41d8cd98f00b204e9800998ecf8427e")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, []string{"sub-1"}, key.Subscriptions)
}

func TestLoadEmptyDocument(t *testing.T) {
	loaded, err := fixtures.Load(t.Context(), newRegistry().Registry, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadUnknownKind(t *testing.T) {
	r := newRegistry()

	_, err := fixtures.Load(t.Context(), r.Registry, strings.NewReader("application:\n  - id: app-1\n"))
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, fixtures.CodeUnknownKind))

	count, err := r.subs.Count(t.Context(), subscription.NewCriteria().Build())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLoadStopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantCode string
		want     map[string]int
	}{
		{
			name:     "entity fails validation",
			doc: "subscription:\n" +
				"  - {id: sub-1, api: api-1, plan: plan-1, application: app-1, environment_id: env-1, status: PENDING}\n" +
				"  - {id: sub-2, api: api-1, plan: plan-1, application: app-1, environment_id: env-1, status: WRONG}\n",
			wantCode: val.CodeValidationFailed,
			want:     map[string]int{"subscription": 1},
		},
		{
			name:     "entry does not decode",
			doc:      "subscription:\n  - id: [not, a, string]\n",
			wantCode: fixtures.CodeInvalidFixture,
			want:     map[string]int{"subscription": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded, err := fixtures.Load(t.Context(), newRegistry().Registry, strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errx.IsCodeIn(err, tt.wantCode))
			assert.Equal(t, tt.want, loaded)
		})
	}
}

func TestLoadBrokenYAML(t *testing.T) {
	_, err := fixtures.Load(t.Context(), newRegistry().Registry, strings.NewReader("subscription: ["))
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, fixtures.CodeInvalidFixture))
}

func TestKindsKeepRegistrationOrder(t *testing.T) {
	assert.Equal(t, []string{"subscription", "api_key"}, newRegistry().Kinds())
}
