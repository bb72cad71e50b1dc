package migrations

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Snapshots of the schema at the time of the migration. The live models in
// package db may evolve independently.
type userConfig202610010900 struct {
	ID        uint
	Key       string `gorm:"unique;not null"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userConfig202610010900) TableName() string { return "user_configs" }

type appRecord202610010900 struct {
	ID                   string `gorm:"primaryKey"`
	Name                 string
	BundleID             string
	IconURL              *string
	LastSearched         time.Time `gorm:"index"`
	ReviewSummary        *string
	SummaryGeneratedDate *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (appRecord202610010900) TableName() string { return "app_records" }

var _202610010900_initial = &gormigrate.Migration{
	ID: "202610010900_initial",
	Migrate: func(tx *gorm.DB) error {
		return tx.AutoMigrate(&userConfig202610010900{}, &appRecord202610010900{})
	},
	Rollback: func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable("app_records"); err != nil {
			return err
		}
		return tx.Migrator().DropTable("user_configs")
	},
}
