package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reading tracks one user's progress through one book.
type Reading struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reading_user_book" json:"users_id"`
	BookID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reading_user_book" json:"books_id"`
	CurrentPage int       `json:"current_page"`
	TimeSpent   int       `json:"time_spent"`
	Rating      int       `json:"rating"`
	Comments    string    `gorm:"type:text" json:"comments"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"users_data,omitempty"`
	Book        *Book     `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"books_data,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r *Reading) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Reading) TableName() string {
	return "readings"
}
