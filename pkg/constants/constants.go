package constants

import "time"

// Application constants
const (
	AppName         = "CivicWatch"
	AppVersion      = "1.0.0"
	APIVersion      = "v1"
	DefaultLocale   = "en"
	DefaultTimezone = "UTC"
)

// Server constants
const (
	DefaultPort     = "8080"
	ReadTimeout     = 30 * time.Second
	WriteTimeout    = 30 * time.Second
	IdleTimeout     = 60 * time.Second
	MaxHeaderBytes  = 1 << 20 // 1MB
	ShutdownTimeout = 30 * time.Second
)

// Database constants
const (
	DatabaseTimeout = 10 * time.Second
	MaxPoolSize     = 100
	MinPoolSize     = 5
	MaxIdleTime     = 30 * time.Second

	// Collection names
	UsersCollection         = "users"
	ReportsCollection       = "reports"
	CommentsCollection      = "comments"
	StatusUpdatesCollection = "status_updates"

	// Preset store tables
	FilterPresetsTable = "filter_presets"
)

// Redis keys
const (
	RedisKeyPrefix   = "civicwatch:"
	RateLimitPrefix  = RedisKeyPrefix + "rate_limit:"
	LastPresetKey    = RedisKeyPrefix + "filters:last_preset_id"
	AdhocCriteriaKey = RedisKeyPrefix + "filters:adhoc_criteria"
)

// Authentication constants
const (
	JWTIssuer           = "civicwatch"
	JWTAudience         = "civicwatch-users"
	DefaultAccessExpiry = 1 * time.Hour
	TokenTypeAccess     = "access"
)

// Report constants
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 2000
	MaxCategoryLength    = 50
	MaxDistrictLength    = 50
	MaxReportsPerMinute  = 5

	// Vote ledger
	VoteToggleMaxAttempts = 5

	// Status lifecycle
	StatusUpdateMaxAttempts = 5
	MaxStatusNoteLength     = 500
)

// Report statuses
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Comment constants
const (
	MaxCommentTextLength = 1000
	MaxCommentsPerMinute = 10

	// Soft-delete attribution
	DeletedBySelf  = "self"
	DeletedByAdmin = "admin"
)

// User roles
const (
	RoleCitizen  = "citizen"
	RoleOfficial = "official"
	RoleAdmin    = "admin"
)

// Preset constants
const (
	MaxPresetNameLength     = 60
	SystemDefaultPresetName = "All reports"
)

// Rate limiting
const (
	GlobalRateLimit  = 1000
	PerUserRateLimit = 120
	PerIPRateLimit   = 300
	RateLimitWindow  = 1 * time.Minute
)

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ValidStatuses returns the set of accepted report statuses.
func ValidStatuses() []string {
	return []string{StatusNew, StatusInProgress, StatusResolved, StatusRejected}
}

// IsValidStatus reports whether s is a known report status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}
