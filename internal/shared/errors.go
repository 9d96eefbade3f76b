package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Browser and extraction errors
	ErrBrowserLaunch      = fmt.Errorf("browser launch failed")
	ErrNavigationTimeout  = fmt.Errorf("navigation timed out")
	ErrLoginIncomplete    = fmt.Errorf("login did not complete")
	ErrProfileNotFound    = fmt.Errorf("no profile data in browser storage")
	ErrAuthFieldMissing   = fmt.Errorf("profile data has no auth field")
	ErrAuthKeyMissing     = fmt.Errorf("auth data has no key field")

	// API and service errors
	ErrAPIRequest    = fmt.Errorf("API request failed")
	ErrParseResponse = fmt.Errorf("failed to parse API response")
	ErrWriteRejected = fmt.Errorf("datastore write not acknowledged")

	// Backup errors
	ErrInvalidBackup = fmt.Errorf("invalid backup format")
)
