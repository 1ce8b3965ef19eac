package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Author      string    `gorm:"type:varchar(255);not null" json:"author"`
	ISBN        string    `gorm:"column:isbn;type:varchar(20);uniqueIndex;not null" json:"ISBN"`
	Description string    `gorm:"type:text" json:"description"`
	Pages       int       `json:"pages"`
	ImageURL    string    `gorm:"type:varchar(1024)" json:"imageURL"`
	Readings    []Reading `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"readings_data,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (Book) TableName() string {
	return "books"
}
