// Package subscription stores application subscriptions to API plans.
package subscription

import (
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusPaused   Status = "PAUSED"
	StatusRejected Status = "REJECTED"
	StatusClosed   Status = "CLOSED"
)

// Subscription ties an application to a plan of an API in one environment.
type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions,alias:sub" json:"-"`

	ID            string            `bun:"id,pk"                  json:"id"`
	API           string            `bun:"api,notnull"            json:"api"            validate:"required"`
	Plan          string            `bun:"plan,notnull"           json:"plan"           validate:"required"`
	Application   string            `bun:"application,notnull"    json:"application"    validate:"required"`
	EnvironmentID string            `bun:"environment_id,notnull" json:"environment_id" validate:"required"`
	Status        Status            `bun:"status,notnull"         json:"status"         validate:"oneof=PENDING ACCEPTED PAUSED REJECTED CLOSED"`
	Metadata      map[string]string `bun:"metadata"               json:"metadata"`
	CreatedAt     time.Time         `bun:"created_at,notnull"     json:"created_at"`
	UpdatedAt     time.Time         `bun:"updated_at,notnull"     json:"updated_at"`
	StartingAt    *time.Time        `bun:"starting_at"            json:"starting_at"`
	EndingAt      *time.Time        `bun:"ending_at"              json:"ending_at"`
	ClosedAt      *time.Time        `bun:"closed_at"              json:"closed_at"`
}
