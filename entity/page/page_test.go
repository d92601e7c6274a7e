package page_test

import (
	"strings"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/entity/page"
	"github.com/rise-and-shine/entityrepo/hasher"
	"github.com/rise-and-shine/entityrepo/internal/storetest"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/val"
)

var now = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

const (
	hashA = "d41d8cd98f00b204e9800998ecf8427e"
	hashB = "9e107d9d372bb6826bd81d3542a419d6"
)

func repos(t *testing.T) map[string]page.Repository {
	t.Helper()

	db := storetest.SQLite(t)
	require.NoError(t, repogen.CreateTable[page.Page](t.Context(), db))

	return map[string]page.Repository{
		"sqlite": page.NewBunRepository(db),
		"memory": page.NewDocRepository(docstore.NewMemoryStore()),
	}
}

func newPage(id string, refType page.ReferenceType, refID string, order int, media ...string) *page.Page {
	p := &page.Page{
		ID:            id,
		ReferenceType: refType,
		ReferenceID:   refID,
		Name:          id,
		Type:          page.TypeMarkdown,
		Content:       "# " + id,
		Order:         order,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, h := range media {
		p.AttachedMedia = append(p.AttachedMedia, page.Media{MediaHash: h, MediaName: h + ".png", AttachedAt: now})
	}
	return p
}

func ids(pages []page.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		criteria page.Criteria
		want     []string
	}{
		{name: "all by order", criteria: page.NewCriteria().Build(), want: []string{"p1", "p2", "p3", "p4"}},
		{
			name:     "reference",
			criteria: page.NewCriteria().Reference(page.ReferenceAPI, "api-1").Build(),
			want:     []string{"p1", "p2", "p3"},
		},
		{
			name:     "published only",
			criteria: page.NewCriteria().Reference(page.ReferenceAPI, "api-1").Published(true).Build(),
			want:     []string{"p1", "p3"},
		},
		{name: "unpublished", criteria: page.NewCriteria().Published(false).Build(), want: []string{"p2", "p4"}},
		{name: "root pages", criteria: page.NewCriteria().Parent("").Build(), want: []string{"p1", "p2", "p4"}},
		{name: "children", criteria: page.NewCriteria().Parent("p1").Build(), want: []string{"p3"}},
		{name: "types", criteria: page.NewCriteria().Types(page.TypeFolder).Build(), want: []string{"p1"}},
		{name: "names", criteria: page.NewCriteria().Names("p2", "p4").Build(), want: []string{"p2", "p4"}},
		{name: "no names", criteria: page.NewCriteria().Names().Build(), want: []string{}},
	}

	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			p1 := newPage("p1", page.ReferenceAPI, "api-1", 1)
			p1.Type = page.TypeFolder
			p1.Published = true
			p2 := newPage("p2", page.ReferenceAPI, "api-1", 2)
			p3 := newPage("p3", page.ReferenceAPI, "api-1", 3)
			p3.ParentID = "p1"
			p3.Published = true
			p4 := newPage("p4", page.ReferenceEnvironment, "env-1", 4)
			for _, p := range []*page.Page{p3, p1, p4, p2} {
				_, err := repo.Create(t.Context(), p)
				require.NoError(t, err)
			}

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

func TestCreateRejectsBadMediaHash(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Create(t.Context(), newPage("p1", page.ReferenceAPI, "api-1", 1, "not-a-hash"))
			require.Error(t, err)
			assert.True(t, errx.IsCodeIn(err, val.CodeValidationFailed))

			found, err := repo.FindByID(t.Context(), "p1")
			require.NoError(t, err)
			assert.Nil(t, found)
		})
	}
}

func TestMediaOrderIsKept(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Create(t.Context(), newPage("p1", page.ReferenceAPI, "api-1", 1, hashB, hashA))
			require.NoError(t, err)

			got, err := repo.FindByID(t.Context(), "p1")
			require.NoError(t, err)
			require.Len(t, got.AttachedMedia, 2)
			assert.Equal(t, hashB, got.AttachedMedia[0].MediaHash)
			assert.Equal(t, hashA, got.AttachedMedia[1].MediaHash)
			assert.True(t, now.Equal(got.AttachedMedia[0].AttachedAt))
		})
	}
}

func TestDeleteByReference(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range []*page.Page{
				newPage("p1", page.ReferenceAPI, "api-1", 1, hashA, hashB),
				newPage("p2", page.ReferenceAPI, "api-1", 2),
				newPage("p3", page.ReferenceAPI, "api-2", 1, hashA),
			} {
				_, err := repo.Create(t.Context(), p)
				require.NoError(t, err)
			}

			removed, err := repo.DeleteByReference(t.Context(), page.ReferenceAPI, "api-1")
			require.NoError(t, err)
			require.Len(t, removed, 2)
			assert.Equal(t, []string{hashA, hashB}, removed["p1"])
			assert.Empty(t, removed["p2"])

			left, err := repo.Search(t.Context(), page.NewCriteria().Build())
			require.NoError(t, err)
			assert.Equal(t, []string{"p3"}, ids(left))

			removed, err = repo.DeleteByReference(t.Context(), page.ReferenceAPI, "api-1")
			require.NoError(t, err)
			assert.Empty(t, removed)
		})
	}
}

func TestSearchWithoutContent(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Create(t.Context(), newPage("p1", page.ReferenceAPI, "api-1", 1, hashA))
			require.NoError(t, err)

			got, err := repo.Search(t.Context(), page.NewCriteria().Build(), repogen.WithExcludedFields(page.FieldContent))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Empty(t, got[0].Content)
			assert.Len(t, got[0].AttachedMedia, 1)
		})
	}
}

func TestAttachNewMedia(t *testing.T) {
	m, err := page.NewMedia("logo.png", strings.NewReader("png bytes"), now)
	require.NoError(t, err)
	assert.Equal(t, hasher.HashBytes([]byte("png bytes")), m.MediaHash)

	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			p := newPage("p1", page.ReferenceAPI, "api-1", 1)
			p.AttachedMedia = []page.Media{m}
			_, err := repo.Create(t.Context(), p)
			require.NoError(t, err)

			removed, err := repo.DeleteByReference(t.Context(), page.ReferenceAPI, "api-1")
			require.NoError(t, err)
			assert.Equal(t, map[string][]string{"p1": {m.MediaHash}}, removed)
		})
	}
}
