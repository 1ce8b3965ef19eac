package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string       `gorm:"type:varchar(50);not null" json:"name"`
	Email         string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Salt          string       `gorm:"type:varchar(64)" json:"-"`
	Hash          string       `gorm:"type:varchar(255);not null" json:"-"`
	IsAdmin       bool         `gorm:"not null" json:"isAdmin"`
	Host          string       `gorm:"type:varchar(255);index:idx_users_host_api_key" json:"host"`
	APIKey        string       `gorm:"type:varchar(30);index:idx_users_host_api_key" json:"-"`
	Usage         []UsageEntry `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"usage,omitempty"`
	InvalidLogons int          `gorm:"not null;default:0" json:"-"`
	LastLogonTime *time.Time   `json:"lastLogonTime,omitempty"`
	PrevLogonTime *time.Time   `json:"prevLogonTime,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return nil
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

func (User) TableName() string {
	return "users"
}

// UsageOn returns the ledger entry for date, or nil.
func (u *User) UsageOn(date string) *UsageEntry {
	for i := range u.Usage {
		if u.Usage[i].Date == date {
			return &u.Usage[i]
		}
	}
	return nil
}
