// Package audit stores the audit trail of changes made in the management plane.
package audit

import (
	"time"

	"github.com/uptrace/bun"
)

// ReferenceType is the kind of object an audit entry is about.
type ReferenceType string

const (
	ReferenceOrganization ReferenceType = "ORGANIZATION"
	ReferenceEnvironment  ReferenceType = "ENVIRONMENT"
	ReferenceAPI          ReferenceType = "API"
	ReferenceApplication  ReferenceType = "APPLICATION"
)

type Audit struct {
	bun.BaseModel `bun:"table:audits,alias:au" json:"-"`

	ID             string            `bun:"id,pk"                  json:"id"`
	OrganizationID string            `bun:"organization_id"        json:"organization_id"`
	EnvironmentID  string            `bun:"environment_id"         json:"environment_id"`
	ReferenceType  ReferenceType     `bun:"reference_type,notnull" json:"reference_type"  validate:"oneof=ORGANIZATION ENVIRONMENT API APPLICATION"`
	ReferenceID    string            `bun:"reference_id,notnull"   json:"reference_id"    validate:"required"`
	User           string            `bun:"user"                   json:"user"`
	Event          string            `bun:"event,notnull"          json:"event"           validate:"required"`
	Properties     map[string]string `bun:"properties"             json:"properties"`
	Patch          string            `bun:"patch"                  json:"patch"`
	CreatedAt      time.Time         `bun:"created_at,notnull"     json:"created_at"`
}
