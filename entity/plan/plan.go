// Package plan stores the subscription plans offered by APIs.
package plan

import (
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusStaging    Status = "STAGING"
	StatusPublished  Status = "PUBLISHED"
	StatusDeprecated Status = "DEPRECATED"
	StatusClosed     Status = "CLOSED"
)

type Plan struct {
	bun.BaseModel `bun:"table:plans,alias:pl" json:"-"`

	ID            string    `bun:"id,pk"                  json:"id"`
	API           string    `bun:"api,notnull"            json:"api"            validate:"required"`
	EnvironmentID string    `bun:"environment_id,notnull" json:"environment_id" validate:"required"`
	Name          string    `bun:"name,notnull"           json:"name"           validate:"required"`
	Description   string    `bun:"description"            json:"description"`
	Status        Status    `bun:"status,notnull"         json:"status"         validate:"oneof=STAGING PUBLISHED DEPRECATED CLOSED"`
	Tags          []string  `bun:"tags"                   json:"tags"`
	Order         int       `bun:"order,notnull"          json:"order"`
	Definition    string    `bun:"definition"             json:"definition"`
	CreatedAt     time.Time `bun:"created_at,notnull"     json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"     json:"updated_at"`
}
