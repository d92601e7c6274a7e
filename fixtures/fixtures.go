// Package fixtures loads test data described in YAML into repositories.
//
// A document maps entity kinds to lists of entities written with the entities' JSON field names:
//
//	api_key:
//	  - id: key-1
//	    key: 9f1c...
//	    environment_id: env-1
//	subscription:
//	  - id: sub-1
//	    status: ACCEPTED
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/code19m/errx"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type loader func(ctx context.Context, entries []any) (int, error)

// Registry dispatches entity kinds to the functions that create them.
// Build it once at startup; it is not safe for concurrent registration.
type Registry struct {
	order   []string
	loaders map[string]loader
}

func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]loader)}
}

// Kinds lists the registered kinds in registration order.
func (r *Registry) Kinds() []string {
	return slices.Clone(r.order)
}

// Register binds kind to create. Registering a kind twice replaces the first binding
// and keeps its position.
func Register[E any](r *Registry, kind string, create func(ctx context.Context, entity *E) (*E, error)) {
	if _, ok := r.loaders[kind]; !ok {
		r.order = append(r.order, kind)
	}
	r.loaders[kind] = func(ctx context.Context, entries []any) (int, error) {
		for i, entry := range entries {
			entity, err := decode[E](entry)
			if err != nil {
				return i, errx.Wrap(err,
					errx.WithCode(CodeInvalidFixture),
					errx.WithType(errx.T_Validation),
					errx.WithDetails(errx.D{"kind": kind, "index": fmt.Sprint(i)}),
				)
			}
			if _, err = create(ctx, entity); err != nil {
				return i, errx.Wrap(err, errx.WithDetails(errx.D{"kind": kind, "index": fmt.Sprint(i)}))
			}
		}
		return len(entries), nil
	}
}

// Load creates every entity of the document read from src and returns how many were created per kind.
// Kinds are loaded in registration order, entries in document order. Loading stops at the first failure;
// the counts returned with the error tell what was already created.
func Load(ctx context.Context, r *Registry, src io.Reader) (map[string]int, error) {
	var doc map[string][]any
	if err := yaml.NewDecoder(src).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errx.Wrap(err, errx.WithCode(CodeInvalidFixture), errx.WithType(errx.T_Validation))
	}

	unknown := lo.Filter(lo.Keys(doc), func(kind string, _ int) bool {
		_, ok := r.loaders[kind]
		return !ok
	})
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, errx.New(
			fmt.Sprintf("unknown fixture kinds %v", unknown),
			errx.WithCode(CodeUnknownKind),
			errx.WithType(errx.T_Validation),
		)
	}

	loaded := make(map[string]int, len(doc))
	for _, kind := range r.order {
		entries, ok := doc[kind]
		if !ok {
			continue
		}
		n, err := r.loaders[kind](ctx, entries)
		loaded[kind] = n
		if err != nil {
			return loaded, err
		}
	}
	return loaded, nil
}

// decode converts a YAML entry to E through its JSON form so entities need no yaml tags.
func decode[E any](entry any) (*E, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	entity := new(E)
	if err = json.Unmarshal(data, entity); err != nil {
		return nil, err
	}
	return entity, nil
}
