package db

import (
	"time"
)

type UserConfig struct {
	ID        uint
	Key       string `gorm:"unique;not null"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppRecord is a catalog app the user has opened at least once.
type AppRecord struct {
	ID                   string `gorm:"primaryKey"`
	Name                 string `validate:"required"`
	BundleID             string
	IconURL              *string
	Version              *string
	LastSearched         time.Time `gorm:"index"`
	ReviewSummary        *string
	SummaryGeneratedDate *time.Time
	SummaryAppVersion    *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (AppRecord) TableName() string {
	return "app_records"
}

func (r *AppRecord) HasSummary() bool {
	return r.ReviewSummary != nil && *r.ReviewSummary != ""
}
