package repogen_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sorter"
	"github.com/rise-and-shine/entityrepo/sqlitewr"
)

const codeNameTaken = "WIDGET_NAME_TAKEN"

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w" json:"-"`

	ID        string            `bun:"id,pk"               json:"id"`
	Name      string            `bun:"name,notnull,unique" json:"name"       validate:"required"`
	Rank      *int              `bun:"rank"                json:"rank"`
	Tags      []string          `bun:"tags"                json:"tags"`
	Props     map[string]string `bun:"props"               json:"props"`
	Note      string            `bun:"note"                json:"note"`
	CreatedAt time.Time         `bun:"created_at,notnull"  json:"created_at"`
	ExpireAt  *time.Time        `bun:"expire_at"           json:"expire_at"`
}

type widgetCriteria struct {
	cond filter.Cond
}

func (c widgetCriteria) Cond() filter.Cond { return c.cond }

func where(c filter.Cond) widgetCriteria { return widgetCriteria{cond: c} }

var widgetSchema = repogen.Schema[widget]{
	Entity:     "Widget",
	Collection: "widgets",
	Fields: map[string]repogen.Field[widget]{
		"id":   {Column: "id", Get: func(w *widget) any { return w.ID }},
		"name": {Column: "name", Get: func(w *widget) any { return w.Name }},
		"rank": {Column: "rank", Get: func(w *widget) any { return w.Rank }},
		"tags": {Column: "tags", Kind: filter.JSONArray, Get: func(w *widget) any { return w.Tags }},
		"props": {
			Column: "props",
			Kind:   filter.JSONMap,
			Get:    func(w *widget) any { return w.Props },
		},
		"note": {
			Column: "note",
			Get:    func(w *widget) any { return w.Note },
			Clear:  func(w *widget) { w.Note = "" },
		},
		"created_at": {Column: "created_at", Get: func(w *widget) any { return w.CreatedAt }},
		"expire_at":  {Column: "expire_at", Get: func(w *widget) any { return w.ExpireAt }},
	},
	DefaultSort:   sorter.ByDesc("created_at"),
	ID:            func(w *widget) string { return w.ID },
	SetID:         func(w *widget, id string) { w.ID = id },
	ConflictCodes: map[string]string{"widgets.name": codeNameTaken},
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func newWidget(id string, rank *int, age time.Duration) *widget {
	return &widget{
		ID:        id,
		Name:      "widget " + id,
		Rank:      rank,
		Tags:      []string{},
		Props:     map[string]string{},
		Note:      "note of " + id,
		CreatedAt: base.Add(-age),
	}
}

// engines returns one repository per backing store, each over an empty store.
func engines(t *testing.T) map[string]repogen.Repo[widget, widgetCriteria] {
	t.Helper()

	db, err := sqlitewr.New(t.Context(), sqlitewr.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repogen.CreateTable[widget](t.Context(), db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]repogen.Repo[widget, widgetCriteria]{
		"sqlite": repogen.NewBunRepoBuilder[widget, widgetCriteria](db, widgetSchema).Build(),
		"memory": repogen.NewDocRepoBuilder[widget, widgetCriteria](docstore.NewMemoryStore(), widgetSchema).Build(),
		"redis": repogen.NewDocRepoBuilder[widget, widgetCriteria](
			docstore.NewRedisStore(client), widgetSchema,
		).Build(),
	}
}

func seed(t *testing.T, repo repogen.Repo[widget, widgetCriteria], widgets ...*widget) {
	t.Helper()
	for _, w := range widgets {
		_, err := repo.Create(t.Context(), w)
		require.NoError(t, err)
	}
}

func ids(widgets []widget) []string {
	out := make([]string, 0, len(widgets))
	for _, w := range widgets {
		out = append(out, w.ID)
	}
	return out
}

func assertSameWidget(t *testing.T, want, got *widget) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Rank, got.Rank)
	assert.Equal(t, want.Tags, got.Tags)
	assert.Equal(t, want.Props, got.Props)
	assert.Equal(t, want.Note, got.Note)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", want.CreatedAt, got.CreatedAt)
	if want.ExpireAt == nil {
		assert.Nil(t, got.ExpireAt)
	} else {
		require.NotNil(t, got.ExpireAt)
		assert.True(t, want.ExpireAt.Equal(*got.ExpireAt))
	}
}
