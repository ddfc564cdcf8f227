package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Credit Card Calendar"
	AppID             = "com.github.viczaid25.cardcal"
	BinaryName        = "cardcal"
	KeyringService    = "com.github.viczaid25.cardcal"
	KeyringFeedUser   = "feed"
	FeedUser          = "cardcal"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	LogFileRotated    = "app.log.1"
	EnvPrefix         = "CARDCAL"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// LogFileMaxBytes is the size past which the log is rotated on startup.
	LogFileMaxBytes int64 = 1 << 20

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig       = "config"
	FlagDebug        = "debug"
	FlagName         = "name"
	FlagCutDay       = "cut-day"
	FlagPaymentDays  = "payment-days"
	FlagColor        = "color"
	FlagWithin       = "within"
	FlagDescConfig   = "Path to the settings file (TOML)"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescName     = "Card display name"
	FlagDescCutDay   = "Statement (cut) day of month, 1-31"
	FlagDescPayDays  = "Days from the cut date to the payment due date, 1-30"
	FlagDescColor    = "Display colour as a hex code (random palette colour when empty)"
	FlagDescWithin   = "Look-ahead window in days"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Settings Keys (config file & environment)
// -----------------------------------------------------------------------------

const (
	SettingLanguage       = "language"
	SettingStorePath      = "store_path"
	SettingRemindersPath  = "reminders_path"
	SettingDaysBefore     = "reminder_days_before"
	SettingReminderHour   = "reminder_hour"
	SettingReminderMinute = "reminder_minute"
	SettingServerPort     = "server_port"
	SettingDispatchSpec   = "dispatch_spec"

	SettingsFileName  = "config"
	SettingsFileType  = "toml"
	StoreFileName     = "cards.toml"
	RemindersFileName = "reminders.toml"
)

// SupportedLanguages defines the list of available catalog languages (ISO 639-1).
var SupportedLanguages = []string{"en", "es"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultLanguage       = "en"
	DefaultPort           = "18081"
	DefaultDaysBefore     = 3
	DefaultReminderHour   = 9
	DefaultReminderMinute = 0
	DefaultDispatchSpec   = "@every 1m"
	DefaultDueWindowDays  = 7

	MinCutDay      = 1
	MaxCutDay      = 31
	MinPaymentDays = 1
	MaxPaymentDays = 30
	MaxDaysBefore  = 30

	// Urgency bands (inclusive upper bounds, in days until payment).
	UrgentMaxDays   = 3
	UpcomingMaxDays = 7
)

// Reminder keys are derived deterministically from the card id.
const (
	KeyPrefixPayment = "payment-reminder-"
	KeyPrefixCut     = "cut-date-"
)

// -----------------------------------------------------------------------------
// Colour Palette
// -----------------------------------------------------------------------------

const (
	ColorGreen  = "4CAF50"
	ColorYellow = "FFC107"
	ColorOrange = "FF9800"
	ColorRed    = "F44336"
	ColorBlue   = "2196F3"
	ColorPurple = "9C27B0"
	ColorTeal   = "009688"
	ColorIndigo = "3F51B5"
)

// Palette lists every colour offered for new cards.
var Palette = []string{
	ColorGreen, ColorYellow, ColorOrange, ColorRed,
	ColorBlue, ColorPurple, ColorTeal, ColorIndigo,
}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyPaymentTitle   = "reminder_payment_title"
	TKeyPaymentBody    = "reminder_payment_body" // Requires Name, Date
	TKeyCutTitle       = "reminder_cut_title"
	TKeyCutBody        = "reminder_cut_body" // Requires Name
	TKeyStatusNormal   = "status_normal"
	TKeyStatusUpcoming = "status_upcoming"
	TKeyStatusUrgent   = "status_urgent"
	TKeyStatusOverdue  = "status_overdue"
	TKeyFormatDate     = "format_date" // Go layout for dates shown to the user
	TKeyColName        = "col_name"
	TKeyColCut         = "col_cut"
	TKeyColDue         = "col_due"
	TKeyColDays        = "col_days"
	TKeyColStatus      = "col_status"
	TKeyColID          = "col_id"
	TKeyNotifDenied    = "notif_denied"
	TKeyNotifEnabled   = "notif_enabled"
	TKeyNotifAlreadyOn = "notif_already_enabled"
	TKeyNotifDisabled  = "notif_disabled"
	TKeyNoCards        = "no_cards"
	TKeyCardAdded      = "card_added"   // Requires Name, ID
	TKeyCardUpdated    = "card_updated" // Requires Name
	TKeyCardDeleted    = "card_deleted" // Requires ID
	TKeyNotifStatus    = "notif_status" // Requires State, Count
	TKeyStateOn        = "state_on"
	TKeyStateOff       = "state_off"
	TKeyFeedPwdSet     = "feed_password_set"
	TKeyFeedPwdCleared = "feed_password_cleared"

	// Validation Errors (user facing)
	TKeyErrNameEmpty   = "err_name_empty"
	TKeyErrCutDay      = "err_cut_day_range"
	TKeyErrPaymentDays = "err_payment_days_range"
	TKeyErrCardMissing = "err_card_not_found" // Requires ID
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Credit Card Calendar//Reminders//EN"
	ICalCalName   = "Credit card reminders"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "cardcal"
	ICalTriggerAt = "PT0S"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	FormatUID          = "%s@%s"
	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when nothing is pending.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	DateFormatDisplay = "2006-01-02"
	DateTimeFormat    = time.RFC3339
	FileSchemaVersion = 1
	TempFilePattern   = ".cardcal-*.toml.tmp"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	DispatchTimeout    = 1 * time.Minute
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteRoot          = "/"
	RouteSnapshot      = "/cards.json"
	AddrSeparator      = ":"
	AuthRealm          = `Basic realm="cardcal"`
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAuthenticate    = "WWW-Authenticate"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrSnapshotEncode  = "failed to encode widget snapshot"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrConfigDir       = "could not determine user config dir"
	ErrCreateDir       = "could not create app directory"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrSettingsRead    = "failed to read settings file"
	ErrSettingsInvalid = "invalid settings"
	ErrStoreRead       = "failed to read card store"
	ErrStoreDecode     = "failed to decode card store"
	ErrStoreEncode     = "failed to encode card store"
	ErrStoreWrite      = "failed to write card store"
	ErrStoreVersion    = "unsupported file schema version"
	ErrSinkRead        = "failed to read reminders file"
	ErrSinkDecode      = "failed to decode reminders file"
	ErrSinkWrite       = "failed to write reminders file"
	ErrDispatchSpec    = "invalid dispatch schedule"
	ErrDeliver         = "reminder delivery failed"
	ErrReschedule      = "failed to reschedule reminders"
	ErrFeedRefresh     = "failed to refresh feed"
	ErrStorage         = "storage error"
	ErrValidation      = "validation error"
	ErrCardNotFound    = "card not found"
	ErrKeyringRead     = "failed to read feed password"
	ErrKeyringWrite    = "failed to store feed password"
	ErrDaysBefore      = "reminder_days_before must be between 0 and 30"
	ErrReminderHour    = "reminder_hour must be between 0 and 23"
	ErrReminderMinute  = "reminder_minute must be between 0 and 59"
	ErrLanguage        = "unsupported language"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgUnauthorized = "Unauthorized"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackPaymentTitle = "Payment reminder"
	FallbackPaymentBody  = "Your card %s is due on %s"
	FallbackCutTitle     = "Statement date"
	FallbackCutBody      = "Today is the statement date for your card %s"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Feed cache updated"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgReminderUpsert   = "Reminder scheduled"
	MsgReminderCancel   = "Reminders cancelled"
	MsgRescheduleAll    = "Rescheduling all reminders"
	MsgNotAuthorized    = "Not authorized to schedule reminders"
	MsgAuthChanged      = "Notification authorization changed"
	MsgCardAdded        = "Card added"
	MsgCardUpdated      = "Card updated"
	MsgCardDeleted      = "Card deleted"
	MsgCardsLoaded      = "Cards loaded"
	MsgDispatchStart    = "Reminder dispatcher started"
	MsgDispatchStop     = "Reminder dispatcher stopped"
	MsgDispatchTick     = "Dispatch tick"
	MsgReminderFired    = "Reminder delivered"
	MsgReminderLate     = "Reminder delivered late"
	MsgFiredCardMissing = "Fired reminder belongs to a removed card"
	MsgFeedRefreshed    = "Feed refreshed"
	MsgFeedAuthEnabled  = "Feed basic auth enabled"
	MsgFeedAuthDisabled = "Feed password not set, serving without auth"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyKeys       = "keys"
	LogKeyPort       = "port"
	LogKeyCardID     = "card_id"
	LogKeyName       = "name"
	LogKeyKind       = "kind"
	LogKeyFireAt     = "fire_at"
	LogKeyCount      = "count"
	LogKeyAuthorized = "authorized"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeyRoute      = "route"
	LogKeySpec       = "spec"
	LogKeyDuration   = "duration_ms"
	LogKeyLateBy     = "late_by"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain       = "main"
	CompCLI        = "cli"
	CompScheduler  = "scheduler"
	CompService    = "service"
	CompSink       = "sink"
	CompDispatcher = "dispatcher"
	CompServer     = "server"
	CompStore      = "store"
	CompI18n       = "i18n"
)
