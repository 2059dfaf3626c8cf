package entity

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type ChangeType string

const (
	ChangeCreate ChangeType = "CREATE"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeTypes lists every change type in capture order.
var ChangeTypes = []ChangeType{ChangeCreate, ChangeUpdate, ChangeDelete}

// ParseChangeType accepts any casing and reports false for unknown values.
func ParseChangeType(raw string) (ChangeType, bool) {
	ct := ChangeType(strings.ToUpper(strings.TrimSpace(raw)))
	switch ct {
	case ChangeCreate, ChangeUpdate, ChangeDelete:
		return ct, true
	}
	return "", false
}

// UnknownActor is presented in place of an actor that was never attributable
// or has since been deleted.
const UnknownActor = "unknown"

// AuditLog is one captured mutation. Rows are written only by the capture
// triggers; the application never updates or deletes them.
type AuditLog struct {
	ID               int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp        time.Time         `gorm:"column:timestamp;not null;default:clock_timestamp()" json:"timestamp"`
	ActorID          *int64            `gorm:"index" json:"actor_id"`
	ActorName        string            `gorm:"->;-:migration;column:actor_name" json:"actor_name"`
	Table            string            `gorm:"column:table_name;not null" json:"table_name"`
	ChangeType       ChangeType        `gorm:"column:change_type;not null" json:"change_type"`
	AffectedRecordID *int64            `gorm:"column:affected_record_id" json:"affected_record_id"`
	Payload          datatypes.JSONMap `gorm:"type:jsonb" json:"payload"`

	Actor *User `gorm:"constraint:OnDelete:SET NULL;foreignKey:ActorID;references:ID" json:"-"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// DisplayActor returns the actor's username or UnknownActor.
func (l AuditLog) DisplayActor() string {
	if l.ActorID == nil || l.ActorName == "" {
		return UnknownActor
	}
	return l.ActorName
}
