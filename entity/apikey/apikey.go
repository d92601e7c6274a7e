// Package apikey stores the API keys applications use to call subscribed APIs.
package apikey

import (
	"time"

	"github.com/uptrace/bun"
)

// APIKey is a key granting an application access to its subscriptions in one environment.
type APIKey struct {
	bun.BaseModel `bun:"table:api_keys,alias:ak" json:"-"`

	ID            string     `bun:"id,pk"                  json:"id"`
	Key           string     `bun:"key,notnull,unique"     json:"key"            validate:"required"`
	Subscriptions []string   `bun:"subscriptions"          json:"subscriptions"`
	Application   string     `bun:"application"            json:"application"`
	EnvironmentID string     `bun:"environment_id,notnull" json:"environment_id" validate:"required"`
	Revoked       bool       `bun:"revoked,notnull"        json:"revoked"`
	RevokedAt     *time.Time `bun:"revoked_at"             json:"revoked_at"`
	Paused        bool       `bun:"paused,notnull"         json:"paused"`
	ExpireAt      *time.Time `bun:"expire_at"              json:"expire_at"`
	CreatedAt     time.Time  `bun:"created_at,notnull"     json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull"     json:"updated_at"`
}
