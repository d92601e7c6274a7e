// Package monitoring stores the health reports sent by gateway nodes.
//
// Reports arrive at a high rate, so callers usually go through NewWriter
// instead of calling Create directly.
package monitoring

import (
	"time"

	"github.com/uptrace/bun"
)

type Type string

const (
	TypeHealthCheck Type = "HEALTH_CHECK"
	TypeNodeStatus  Type = "NODE_STATUS"
)

type Monitoring struct {
	bun.BaseModel `bun:"table:monitoring,alias:mon" json:"-"`

	ID          string    `bun:"id,pk"                json:"id"`
	NodeID      string    `bun:"node_id,notnull"      json:"node_id"      validate:"required"`
	Type        Type      `bun:"type,notnull"         json:"type"         validate:"oneof=HEALTH_CHECK NODE_STATUS"`
	Payload     string    `bun:"payload"              json:"payload"`
	EvaluatedAt time.Time `bun:"evaluated_at,notnull" json:"evaluated_at"`
	CreatedAt   time.Time `bun:"created_at,notnull"   json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"   json:"updated_at"`
}
