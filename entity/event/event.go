// Package event stores the lifecycle events of APIs deployed to environments.
package event

import (
	"time"

	"github.com/uptrace/bun"
)

type Type string

const (
	TypePublishAPI   Type = "PUBLISH_API"
	TypeUnpublishAPI Type = "UNPUBLISH_API"
	TypeStartAPI     Type = "START_API"
	TypeStopAPI      Type = "STOP_API"
	TypeDebugAPI     Type = "DEBUG_API"
)

// PropertyAPIID is the property linking an event to its API.
const PropertyAPIID = "api_id"

type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev" json:"-"`

	ID           string            `bun:"id,pk"              json:"id"`
	Type         Type              `bun:"type,notnull"       json:"type"         validate:"required"`
	Payload      string            `bun:"payload"            json:"payload"`
	ParentID     string            `bun:"parent_id"          json:"parent_id"`
	Properties   map[string]string `bun:"properties"         json:"properties"`
	Environments []string          `bun:"environments"       json:"environments" validate:"required,min=1"`
	CreatedAt    time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time         `bun:"updated_at,notnull" json:"updated_at"`
}
