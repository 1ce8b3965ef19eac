package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageDateLayout is the calendar-day key of the usage ledger.
const UsageDateLayout = "2006-01-02"

// UsageEntry counts the API calls a user's key made on one UTC day.
// The (user_id, date) index keeps a single entry per day.
type UsageEntry struct {
	ID     uint      `gorm:"primarykey" json:"-"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_date" json:"-"`
	Date   string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_usage_user_date" json:"date"`
	Count  int       `gorm:"not null" json:"count"`
}

func (UsageEntry) TableName() string {
	return "usage_entries"
}

// UsageDate formats t as a ledger date in UTC.
func UsageDate(t time.Time) string {
	return t.UTC().Format(UsageDateLayout)
}

// UsageOutcome is the result of consuming one call from a daily quota.
type UsageOutcome int

const (
	// UsageIncremented means today's existing entry was below the limit and was bumped.
	UsageIncremented UsageOutcome = iota + 1
	// UsageCreatedToday means the first call of the day created a new entry at 1.
	UsageCreatedToday
	// UsageQuotaExceeded means today's entry already reached the limit and was left unchanged.
	UsageQuotaExceeded
)

func (o UsageOutcome) String() string {
	switch o {
	case UsageIncremented:
		return "incremented"
	case UsageCreatedToday:
		return "created_today"
	case UsageQuotaExceeded:
		return "quota_exceeded"
	default:
		return "unknown"
	}
}

// Allowed reports whether the call may proceed.
func (o UsageOutcome) Allowed() bool {
	return o == UsageIncremented || o == UsageCreatedToday
}

// UsageResult carries the outcome and today's count after it was applied.
type UsageResult struct {
	Outcome UsageOutcome
	Date    string
	Count   int
}
