package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/db"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/utils"
)

type config struct {
	Env        *AppConfig
	db         *gorm.DB
	file       *FileConfig
	cache      map[string]string
	cacheMutex sync.Mutex
}

func NewConfig(env *AppConfig, db *gorm.DB) (*config, error) {
	cfg := &config{
		db:    db,
		cache: map[string]string{},
	}
	err := cfg.init(env)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *config) init(env *AppConfig) error {
	cfg.Env = env

	fileConfig, err := readFileConfig(cfg.configFilePath())
	if err != nil {
		logger.Logger.Error().Err(err).Str("path", cfg.configFilePath()).Msg("Failed to read config file")
		return err
	}
	cfg.file = fileConfig

	endpoints := map[string]string{
		"CATALOG_URL":     cfg.GetCatalogURL(),
		"REVIEW_FEED_URL": cfg.GetReviewFeedURL(),
		"OPENAI_BASE_URL": cfg.GetOpenAIBaseURL(),
	}
	for name, endpoint := range endpoints {
		if err := utils.ValidateHTTPURL(endpoint); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, endpoint, err)
		}
	}

	if cfg.file.OpenAIModel != "" {
		err := cfg.SetIgnore(OpenAIModelKey, cfg.file.OpenAIModel)
		if err != nil {
			return err
		}
	}

	return nil
}

func (cfg *config) configFilePath() string {
	path := cfg.Env.ConfigFile
	if path == "" {
		path = "config.yaml"
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.GetDefaultWorkDir(), path)
}

// readFileConfig returns an empty FileConfig when the file does not exist.
func readFileConfig(path string) (*FileConfig, error) {
	fileConfig := &FileConfig{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fileConfig, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return fileConfig, nil
}

func (cfg *config) Get(key string) (string, error) {
	cfg.cacheMutex.Lock()
	defer cfg.cacheMutex.Unlock()

	if cachedValue, ok := cfg.cache[key]; ok {
		logger.Logger.Debug().Str("key", key).Msg("hit config cache")
		return cachedValue, nil
	}
	logger.Logger.Debug().Str("key", key).Msg("missed config cache")

	var userConfig db.UserConfig
	err := cfg.db.Where(&db.UserConfig{Key: key}).Limit(1).Find(&userConfig).Error
	if err != nil {
		return "", fmt.Errorf("failed to get configuration value: %w", err)
	}

	cfg.cache[key] = userConfig.Value
	return userConfig.Value, nil
}

func (cfg *config) set(key string, value string, clauses clause.OnConflict) error {
	userConfig := db.UserConfig{Key: key, Value: value}
	result := cfg.db.Clauses(clauses).Create(&userConfig)
	if result.Error != nil {
		return fmt.Errorf("failed to save key to config: %w", result.Error)
	}

	logger.Logger.Debug().Str("key", key).Msg("clearing config cache")
	cfg.cacheMutex.Lock()
	defer cfg.cacheMutex.Unlock()
	delete(cfg.cache, key)

	return nil
}

func (cfg *config) SetIgnore(key string, value string) error {
	clauses := clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}
	err := cfg.set(key, value, clauses)
	if err != nil {
		logger.Logger.Error().Err(err).Str("key", key).Msg("Failed to set config key with ignore")
		return err
	}
	return nil
}

func (cfg *config) SetUpdate(key string, value string) error {
	clauses := clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}
	err := cfg.set(key, value, clauses)
	if err != nil {
		logger.Logger.Error().Err(err).Str("key", key).Msg("Failed to set config key with update")
		return err
	}
	return nil
}

func (cfg *config) GetEnv() *AppConfig {
	return cfg.Env
}

func (cfg *config) GetDefaultWorkDir() string {
	if cfg.Env.Workdir != "" {
		return cfg.Env.Workdir
	}
	return filepath.Join(xdg.DataHome, constants.APP_IDENTIFIER)
}

// GetOpenAIAPIKey resolves the summarization credential: a non-empty key in
// the local config file wins over the environment. The chosen key resolves
// to "" when it is invalid; an invalid file key never falls back to the env.
func (cfg *config) GetOpenAIAPIKey() string {
	key := strings.TrimSpace(cfg.Env.OpenAIAPIKey)
	if cfg.file != nil {
		if fileKey := strings.TrimSpace(cfg.file.OpenAIAPIKey); fileKey != "" {
			key = fileKey
		}
	}
	if !IsValidOpenAIAPIKey(key) {
		return ""
	}
	return key
}

func (cfg *config) HasOpenAIAPIKey() bool {
	return cfg.GetOpenAIAPIKey() != ""
}

func IsValidOpenAIAPIKey(key string) bool {
	return key != "" && strings.HasPrefix(key, constants.OPENAI_API_KEY_PREFIX)
}

func (cfg *config) GetOpenAIModel() string {
	model, err := cfg.Get(OpenAIModelKey)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to fetch OpenAI model")
	}
	if model != "" {
		return model
	}
	if cfg.Env.OpenAIModel != "" {
		return cfg.Env.OpenAIModel
	}
	return constants.SUMMARY_MODEL
}

func (cfg *config) SetOpenAIModel(value string) error {
	err := cfg.SetUpdate(OpenAIModelKey, strings.TrimSpace(value))
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to update OpenAI model")
		return err
	}
	return nil
}

func (cfg *config) GetCatalogURL() string {
	return withDefault(cfg.Env.CatalogURL, constants.DEFAULT_CATALOG_URL)
}

func (cfg *config) GetReviewFeedURL() string {
	return withDefault(cfg.Env.ReviewFeedURL, constants.DEFAULT_REVIEW_FEED_URL)
}

func (cfg *config) GetOpenAIBaseURL() string {
	return withDefault(cfg.Env.OpenAIBaseURL, constants.DEFAULT_OPENAI_BASE_URL)
}

func (cfg *config) GetUserAgent() string {
	return withDefault(cfg.Env.UserAgent, constants.USER_AGENT)
}

func (cfg *config) GetSearchDebounce() time.Duration {
	if cfg.Env.SearchDebounce <= 0 {
		return constants.SEARCH_DEBOUNCE
	}
	return cfg.Env.SearchDebounce
}

func (cfg *config) GetRecentAppsLimit() int {
	if cfg.Env.RecentAppsLimit <= 0 {
		return constants.RECENT_APPS_LIMIT
	}
	return cfg.Env.RecentAppsLimit
}

func (cfg *config) GetHTTPTimeout() time.Duration {
	if cfg.Env.HTTPTimeout <= 0 {
		return constants.HTTP_TIMEOUT
	}
	return cfg.Env.HTTPTimeout
}

func withDefault(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
