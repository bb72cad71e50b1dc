package constants

import "time"

// shared constants used by multiple packages

const (
	APP_IDENTIFIER = "appinion"
	USER_AGENT     = "Appinion"
)

const (
	DEFAULT_CATALOG_URL     = "https://itunes.apple.com"
	DEFAULT_REVIEW_FEED_URL = "https://itunes.apple.com/us/rss/customerreviews"
	DEFAULT_OPENAI_BASE_URL = "https://api.openai.com/v1"

	CATALOG_ENTITY       = "software"
	CATALOG_COUNTRY      = "US"
	CATALOG_SEARCH_LIMIT = 50
)

const (
	SEARCH_DEBOUNCE    = 500 * time.Millisecond
	RECENT_APPS_LIMIT  = 10
	REVIEW_FETCH_LIMIT = 50
	HTTP_TIMEOUT       = 30 * time.Second
)

// summary generation
const (
	SUMMARY_MODEL       = "gpt-3.5-turbo"
	SUMMARY_MAX_TOKENS  = 500
	SUMMARY_TEMPERATURE = 0.3

	// returned instead of calling the completion API when an app has no reviews
	NO_REVIEWS_SUMMARY = "No reviews available for this app."

	OPENAI_API_KEY_NAME   = "OPENAI_API_KEY"
	OPENAI_API_KEY_PREFIX = "sk-"
)

// event names published on the event publisher
const (
	EVENT_STATE_CHANGED       = "state_changed"
	EVENT_APP_SAVED           = "app_saved"
	EVENT_APP_SUMMARY_UPDATED = "app_summary_updated"
	EVENT_APP_DELETED         = "app_deleted"
	EVENT_APPS_CLEARED        = "apps_cleared"
	EVENT_APPINION_STARTED    = "appinion_started"
	EVENT_APPINION_STOPPED    = "appinion_stopped"
)
