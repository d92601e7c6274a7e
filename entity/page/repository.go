package page

import (
	"context"

	"github.com/samber/lo"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sorter"
)

const (
	fieldID            = "id"
	fieldReferenceType = "reference_type"
	fieldReferenceID   = "reference_id"
	fieldName          = "name"
	fieldType          = "type"
	fieldContent       = "content"
	fieldOrder         = "order"
	fieldPublished     = "published"
	fieldParentID      = "parent_id"
	fieldAttachedMedia = "attached_media"
	fieldCreatedAt     = "created_at"
	fieldUpdatedAt     = "updated_at"
)

// FieldContent can be passed to repogen.WithExcludedFields to list pages without their content.
const FieldContent = fieldContent

type Repository interface {
	repogen.Repo[Page, Criteria]

	// DeleteByReference removes every page of the owner. The result maps each removed page
	// to the hashes of the media that were attached to it, in attachment order.
	DeleteByReference(ctx context.Context, refType ReferenceType, refID string) (map[string][]string, error)
}

var schema = repogen.Schema[Page]{
	Entity:     "Page",
	Collection: "pages",
	Fields: map[string]repogen.Field[Page]{
		fieldID:            {Column: "id", Get: func(p *Page) any { return p.ID }},
		fieldReferenceType: {Column: "reference_type", Get: func(p *Page) any { return string(p.ReferenceType) }},
		fieldReferenceID:   {Column: "reference_id", Get: func(p *Page) any { return p.ReferenceID }},
		fieldName:          {Column: "name", Get: func(p *Page) any { return p.Name }},
		fieldType:          {Column: "type", Get: func(p *Page) any { return string(p.Type) }},
		fieldContent: {
			Column: "content",
			Get:    func(p *Page) any { return p.Content },
			Clear:  func(p *Page) { p.Content = "" },
		},
		fieldOrder:     {Column: "order", Get: func(p *Page) any { return p.Order }},
		fieldPublished: {Column: "published", Get: func(p *Page) any { return p.Published }},
		fieldParentID:  {Column: "parent_id", Get: func(p *Page) any { return p.ParentID }},
		fieldAttachedMedia: {
			Column: "attached_media",
			Kind:   filter.JSONArray,
			Get:    func(p *Page) any { return p.AttachedMedia },
			Clear:  func(p *Page) { p.AttachedMedia = nil },
		},
		fieldCreatedAt: {Column: "created_at", Get: func(p *Page) any { return p.CreatedAt }},
		fieldUpdatedAt: {Column: "updated_at", Get: func(p *Page) any { return p.UpdatedAt }},
	},
	DefaultSort: sorter.By(fieldOrder),
	ID:          func(p *Page) string { return p.ID },
	SetID:       func(p *Page, id string) { p.ID = id },
}

type repository struct {
	repogen.Repo[Page, Criteria]
}

func NewBunRepository(idb bun.IDB) Repository {
	return &repository{repogen.NewBunRepoBuilder[Page, Criteria](idb, schema).Build()}
}

func NewDocRepository(store docstore.Store) Repository {
	return &repository{repogen.NewDocRepoBuilder[Page, Criteria](store, schema).Build()}
}

func (r *repository) DeleteByReference(
	ctx context.Context,
	refType ReferenceType,
	refID string,
) (map[string][]string, error) {
	pages, err := r.DeleteAndReturn(ctx, NewCriteria().Reference(refType, refID).Build())
	if err != nil {
		return nil, err
	}

	removed := make(map[string][]string, len(pages))
	for _, p := range pages {
		removed[p.ID] = lo.Map(p.AttachedMedia, func(m Media, _ int) string { return m.MediaHash })
	}
	return removed, nil
}

func SortableFields() []string {
	return schema.SortableFields()
}
