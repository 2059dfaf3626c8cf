package entity

import "time"

// User is the minimal view of the portal's account table that the audit
// subsystem needs: an id to reference and a name to present.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"not null;default:''" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
