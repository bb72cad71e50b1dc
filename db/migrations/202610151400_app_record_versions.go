package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

type appRecord202610151400 struct {
	Version           *string
	SummaryAppVersion *string
}

func (appRecord202610151400) TableName() string { return "app_records" }

var _202610151400_app_record_versions = &gormigrate.Migration{
	ID: "202610151400_app_record_versions",
	Migrate: func(tx *gorm.DB) error {
		for _, column := range []string{"Version", "SummaryAppVersion"} {
			if tx.Migrator().HasColumn(&appRecord202610151400{}, column) {
				continue
			}
			if err := tx.Migrator().AddColumn(&appRecord202610151400{}, column); err != nil {
				return err
			}
		}
		return nil
	},
	Rollback: func(tx *gorm.DB) error {
		for _, column := range []string{"SummaryAppVersion", "Version"} {
			if err := tx.Migrator().DropColumn(&appRecord202610151400{}, column); err != nil {
				return err
			}
		}
		return nil
	},
}
