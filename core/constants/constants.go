package constants

import "time"

// Request handling
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimeout        = 30 * time.Second
)

// Database pool
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
)

// Echo context keys
const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// User roles carried in access tokens
const (
	RoleUser   = "user"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

// Pagination
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// Redis keys
const (
	RedisKeyTokenBlacklist     = "token:blacklist:"
	RedisKeyPublicSlots        = "availability:public:"
	RedisKeyPublicSlotsVersion = "availability:version:"
	RedisChannelRealtimeEvents = "realtime:events"
)

// Queues and task types
const (
	QueueEvents  = "events"
	QueueDefault = "default"

	TaskEventEmit           = "event:emit"
	TaskBookingCalendarFile = "booking:calendar-file"
)
