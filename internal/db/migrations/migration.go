package migrations

import (
	"bux-api/internal/models"

	"gorm.io/gorm"
)

type Migration struct {
	Name string
	Run  func(*gorm.DB) error
}

func GetMigrations() []Migration {
	return []Migration{
		{
			Name: "CreateUsersAndUsageLedger",
			Run: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.User{}, &models.UsageEntry{})
			},
		},
		{
			Name: "CreateBooksAndReadings",
			Run: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Book{}, &models.Reading{})
			},
		},
		{
			Name: "CreateAuditLogs",
			Run: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.AuditLog{})
			},
		},
	}
}
