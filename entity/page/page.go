// Package page stores documentation pages and the media attached to them.
package page

import (
	"io"
	"time"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/hasher"
)

type ReferenceType string

const (
	ReferenceEnvironment ReferenceType = "ENVIRONMENT"
	ReferenceAPI         ReferenceType = "API"
)

type Type string

const (
	TypeMarkdown Type = "MARKDOWN"
	TypeSwagger  Type = "SWAGGER"
	TypeAsyncAPI Type = "ASYNCAPI"
	TypeFolder   Type = "FOLDER"
	TypeLink     Type = "LINK"
)

// Media is a file attached to a page, identified by the hash of its content.
type Media struct {
	MediaHash  string    `json:"media_hash"  validate:"media_hash"`
	MediaName  string    `json:"media_name"`
	AttachedAt time.Time `json:"attached_at"`
}

// Page is a documentation page owned by an environment or an API.
// AttachedMedia keeps the order media were attached in.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:pg" json:"-"`

	ID            string        `bun:"id,pk"                  json:"id"`
	ReferenceType ReferenceType `bun:"reference_type,notnull" json:"reference_type" validate:"oneof=ENVIRONMENT API"`
	ReferenceID   string        `bun:"reference_id,notnull"   json:"reference_id"   validate:"required"`
	Name          string        `bun:"name,notnull"           json:"name"           validate:"required"`
	Type          Type          `bun:"type,notnull"           json:"type"           validate:"required"`
	Content       string        `bun:"content"                json:"content"`
	Order         int           `bun:"order,notnull"          json:"order"`
	Published     bool          `bun:"published,notnull"      json:"published"`
	ParentID      string        `bun:"parent_id"              json:"parent_id"`
	AttachedMedia []Media       `bun:"attached_media"         json:"attached_media" validate:"dive"`
	CreatedAt     time.Time     `bun:"created_at,notnull"     json:"created_at"`
	UpdatedAt     time.Time     `bun:"updated_at,notnull"     json:"updated_at"`
}

// NewMedia describes content attached at the given time, identified by its digest.
func NewMedia(name string, content io.Reader, attachedAt time.Time) (Media, error) {
	hash, err := hasher.Hash(content)
	if err != nil {
		return Media{}, err
	}
	return Media{MediaHash: hash, MediaName: name, AttachedAt: attachedAt}, nil
}
