package config

import "time"

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Remember-me cookies are honored this long after issue.
const RememberMeWindow = 30 * 24 * time.Hour

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Minimum lengths enforced by the account and contact services.
const (
	MinPasswordLength = 8
	MinMessageLength  = 10
)
