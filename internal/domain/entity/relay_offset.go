package entity

import "time"

// RelayOffset remembers the last audit log id a relay has published.
type RelayOffset struct {
	Name      string    `gorm:"primaryKey"`
	LastID    int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (RelayOffset) TableName() string {
	return "audit_relay_offsets"
}
