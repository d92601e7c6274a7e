package filter

import (
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ColumnKind tells the SQL compiler how a column stores its value.
type ColumnKind int

const (
	Scalar    ColumnKind = iota
	JSONArray            // list serialized as a JSON array
	JSONMap              // string keyed map serialized as a JSON object
)

// Column is the storage of a logical field.
type Column struct {
	Name string
	Kind ColumnKind
}

// Resolver maps a logical field to its column.
type Resolver func(field string) (Column, bool)

// Fragment is a bun formatted WHERE expression with positional arguments.
type Fragment struct {
	Query string
	Args  []any
}

// Compile renders c as a WHERE expression over the table aliased as alias.
// Only PostgreSQL and SQLite are supported.
func Compile(c Cond, alias string, resolve Resolver, d dialect.Name) (Fragment, error) {
	if d != dialect.PG && d != dialect.SQLite {
		return Fragment{}, errx.New(
			fmt.Sprintf("unsupported dialect %s", d),
			errx.WithCode(CodeUnsupportedDialect),
		)
	}
	b := &sqlBuilder{alias: alias, resolve: resolve, dialect: d}
	if err := b.build(c); err != nil {
		return Fragment{}, err
	}
	return Fragment{Query: b.sb.String(), Args: b.args}, nil
}

type sqlBuilder struct {
	alias   string
	resolve Resolver
	dialect dialect.Name
	sb      strings.Builder
	args    []any
}

func (b *sqlBuilder) write(query string, args ...any) {
	b.sb.WriteString(query)
	b.args = append(b.args, args...)
}

func (b *sqlBuilder) column(field string, kinds ...ColumnKind) (bun.Ident, bun.Ident, error) {
	col, ok := b.resolve(field)
	if !ok {
		return "", "", errx.New(
			fmt.Sprintf("unknown filter field %q", field),
			errx.WithCode(CodeUnknownField),
			errx.WithType(errx.T_Validation),
		)
	}
	if len(kinds) > 0 && !lo.Contains(kinds, col.Kind) {
		return "", "", errx.New(
			fmt.Sprintf("field %q cannot be used with this condition", field),
			errx.WithCode(CodeUnknownField),
			errx.WithType(errx.T_Validation),
		)
	}
	return bun.Ident(b.alias), bun.Ident(col.Name), nil
}

func (b *sqlBuilder) build(c Cond) error {
	switch c := c.(type) {
	case nil, allCond:
		b.write("1 = 1")
	case noneCond:
		b.write("1 = 0")
	case inCond:
		t, col, err := b.column(c.field, Scalar)
		if err != nil {
			return err
		}
		if len(c.values) == 1 {
			b.write("?.? = ?", t, col, c.values[0])
			return nil
		}
		b.write("?.? IN (?)", t, col, bun.In(c.values))
	case rangeCond:
		t, col, err := b.column(c.field, Scalar)
		if err != nil {
			return err
		}
		var parts []string
		var args []any
		if c.from != nil {
			parts = append(parts, "?.? >= ?")
			args = append(args, t, col, c.from)
		}
		if c.to != nil {
			parts = append(parts, "?.? < ?")
			args = append(args, t, col, c.to)
		}
		b.write("("+strings.Join(parts, " AND ")+")", args...)
	case nullCond:
		t, col, err := b.column(c.field)
		if err != nil {
			return err
		}
		if c.null {
			b.write("?.? IS NULL", t, col)
		} else {
			b.write("?.? IS NOT NULL", t, col)
		}
	case textCond:
		pattern := "%" + escapeLike(strings.ToLower(c.query)) + "%"
		b.write("(")
		for i, f := range c.fields {
			t, col, err := b.column(f, Scalar)
			if err != nil {
				return err
			}
			if i > 0 {
				b.write(" OR ")
			}
			b.write("LOWER(?.?) LIKE ? ESCAPE '!'", t, col, pattern)
		}
		b.write(")")
	case containsAnyCond:
		t, col, err := b.column(c.field, JSONArray)
		if err != nil {
			return err
		}
		if b.dialect == dialect.PG {
			b.write("EXISTS (SELECT 1 FROM jsonb_array_elements_text(?.?::jsonb) AS elem(v) WHERE elem.v IN (?))",
				t, col, bun.In(c.values))
		} else {
			b.write("EXISTS (SELECT 1 FROM json_each(?.?) AS je WHERE je.value IN (?))",
				t, col, bun.In(c.values))
		}
	case propertyCond:
		t, col, err := b.column(c.field, JSONMap)
		if err != nil {
			return err
		}
		if b.dialect == dialect.PG {
			b.write("(?.?::jsonb ->> ?) IN (?)", t, col, c.key, bun.In(c.values))
		} else {
			b.write("json_extract(?.?, ?) IN (?)", t, col, jsonPath(c.key), bun.In(c.values))
		}
	case andCond:
		return b.join(" AND ", c.conds)
	case orCond:
		return b.join(" OR ", c.conds)
	case notCond:
		b.write("NOT COALESCE((")
		if err := b.build(c.cond); err != nil {
			return err
		}
		b.write("), FALSE)")
	default:
		return errx.New(fmt.Sprintf("unsupported condition %T", c), errx.WithCode(CodeUnknownField))
	}
	return nil
}

func (b *sqlBuilder) join(sep string, conds []Cond) error {
	b.write("(")
	for i, c := range conds {
		if i > 0 {
			b.write(sep)
		}
		if err := b.build(c); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}
