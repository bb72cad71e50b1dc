package config

import (
	"time"
)

const (
	OpenAIModelKey = "OpenAIModel"
)

type AppConfig struct {
	Workdir         string        `envconfig:"WORK_DIR"`
	Port            int           `envconfig:"PORT" default:"1610"`
	DatabaseUri     string        `envconfig:"DATABASE_URI" default:"appinion.db"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"4"`
	LogToFile       bool          `envconfig:"LOG_TO_FILE" default:"true"`
	LogDBQueries    bool          `envconfig:"LOG_DB_QUERIES" default:"false"`
	CatalogURL      string        `envconfig:"CATALOG_URL" default:"https://itunes.apple.com"`
	ReviewFeedURL   string        `envconfig:"REVIEW_FEED_URL" default:"https://itunes.apple.com/us/rss/customerreviews"`
	OpenAIBaseURL   string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey    string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string        `envconfig:"OPENAI_MODEL" default:"gpt-3.5-turbo"`
	ConfigFile      string        `envconfig:"CONFIG_FILE" default:"config.yaml"`
	SearchDebounce  time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"500ms"`
	RecentAppsLimit int           `envconfig:"RECENT_APPS_LIMIT" default:"10"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	UserAgent       string        `envconfig:"USER_AGENT"`
}

// FileConfig is the optional local credential file, read from the work dir.
type FileConfig struct {
	OpenAIAPIKey string `yaml:"OPENAI_API_KEY"`
	OpenAIModel  string `yaml:"OPENAI_MODEL,omitempty"`
}

type Config interface {
	Get(key string) (string, error)
	SetUpdate(key string, value string) error
	SetIgnore(key string, value string) error
	GetEnv() *AppConfig
	GetDefaultWorkDir() string
	GetOpenAIAPIKey() string
	HasOpenAIAPIKey() bool
	GetOpenAIModel() string
	SetOpenAIModel(value string) error
	GetCatalogURL() string
	GetReviewFeedURL() string
	GetOpenAIBaseURL() string
	GetUserAgent() string
	GetSearchDebounce() time.Duration
	GetRecentAppsLimit() int
	GetHTTPTimeout() time.Duration
}
