package apps

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/db"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/logger"
)

type appsService struct {
	db             *gorm.DB
	eventPublisher events.EventPublisher
	defaultLimit   int
	now            func() time.Time
}

func NewAppsService(db *gorm.DB, eventPublisher events.EventPublisher, defaultLimit int) *appsService {
	if defaultLimit <= 0 {
		defaultLimit = constants.RECENT_APPS_LIMIT
	}
	return &appsService{
		db:             db,
		eventPublisher: eventPublisher,
		defaultLimit:   defaultLimit,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Upsert records that the candidate was opened. An existing record keeps its
// icon URL and version unless the candidate carries new ones.
func (svc *appsService) Upsert(candidate *catalog.SearchResult) error {
	if candidate == nil || strings.TrimSpace(candidate.ID) == "" {
		return apperrors.InvalidInput("save app", "App id is required")
	}

	now := svc.now()
	var saved db.AppRecord
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		var existing db.AppRecord
		result := tx.Where("id = ?", candidate.ID).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			saved = db.AppRecord{
				ID:           candidate.ID,
				Name:         candidate.Name,
				BundleID:     candidate.BundleID,
				IconURL:      candidate.IconURL,
				LastSearched: now,
			}
			if candidate.Version != "" {
				version := candidate.Version
				saved.Version = &version
			}
			return tx.Create(&saved).Error
		}

		updates := map[string]interface{}{
			"last_searched": now,
		}
		if candidate.IconURL != nil {
			updates["icon_url"] = *candidate.IconURL
		}
		if candidate.Version != "" {
			updates["version"] = candidate.Version
		}
		saved = existing
		return tx.Model(&existing).Updates(updates).Error
	})
	if err != nil {
		logger.Logger.Error().Err(err).Str("app_id", candidate.ID).Msg("Failed to save app")
		return apperrors.Store("save app", err)
	}

	logger.Logger.Debug().Str("app_id", candidate.ID).Str("name", candidate.Name).Msg("Saved app")
	svc.publish(constants.EVENT_APP_SAVED, &events.AppEventProperties{AppID: candidate.ID, Name: saved.Name})
	return nil
}

// GetApp returns nil without an error when the app is not stored.
func (svc *appsService) GetApp(id string) (*db.AppRecord, error) {
	var record db.AppRecord
	result := svc.db.Where("id = ?", id).Limit(1).Find(&record)
	if result.Error != nil {
		logger.Logger.Error().Err(result.Error).Str("app_id", id).Msg("Failed to fetch app")
		return nil, apperrors.Store("fetch app", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &record, nil
}

func (svc *appsService) RecentApps(limit int) ([]db.AppRecord, error) {
	if limit <= 0 {
		limit = svc.defaultLimit
	}

	records := []db.AppRecord{}
	err := svc.db.Order("last_searched DESC").Limit(limit).Find(&records).Error
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to fetch recent apps")
		return nil, apperrors.Store("fetch recent apps", err)
	}
	return records, nil
}

func (svc *appsService) TouchApp(id string) error {
	result := svc.db.Model(&db.AppRecord{}).Where("id = ?", id).Update("last_searched", svc.now())
	if result.Error != nil {
		logger.Logger.Error().Err(result.Error).Str("app_id", id).Msg("Failed to touch app")
		return apperrors.Store("touch app", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NoData("touch app", "App not found")
	}
	return nil
}

// UpdateSummary is a no-op for an app that is not stored.
func (svc *appsService) UpdateSummary(id string, summary string, appVersion *string) error {
	now := svc.now()
	result := svc.db.Model(&db.AppRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"review_summary":         summary,
		"summary_generated_date": now,
		"summary_app_version":    appVersion,
	})
	if result.Error != nil {
		logger.Logger.Error().Err(result.Error).Str("app_id", id).Msg("Failed to update app summary")
		return apperrors.Store("update summary", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Logger.Debug().Str("app_id", id).Msg("Skipped summary update for unknown app")
		return nil
	}

	svc.publish(constants.EVENT_APP_SUMMARY_UPDATED, &events.AppEventProperties{AppID: id})
	return nil
}

func (svc *appsService) DeleteApp(id string) error {
	result := svc.db.Where("id = ?", id).Delete(&db.AppRecord{})
	if result.Error != nil {
		logger.Logger.Error().Err(result.Error).Str("app_id", id).Msg("Failed to delete app")
		return apperrors.Store("delete app", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil
	}

	logger.Logger.Info().Str("app_id", id).Msg("Deleted app")
	svc.publish(constants.EVENT_APP_DELETED, &events.AppEventProperties{AppID: id})
	return nil
}

func (svc *appsService) ClearAll() error {
	result := svc.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.AppRecord{})
	if result.Error != nil {
		logger.Logger.Error().Err(result.Error).Msg("Failed to clear apps")
		return apperrors.Store("clear apps", result.Error)
	}

	logger.Logger.Info().Int64("deleted", result.RowsAffected).Msg("Cleared all apps")
	svc.publish(constants.EVENT_APPS_CLEARED, nil)
	return nil
}

func (svc *appsService) publish(event string, properties interface{}) {
	if svc.eventPublisher == nil {
		return
	}
	svc.eventPublisher.Publish(&events.Event{
		Event:      event,
		Properties: properties,
	})
}

// IsNotFound reports whether err means the app is not stored.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || apperrors.IsKind(err, apperrors.KindNoData)
}
