// package auth recovers a Stremio auth key by driving a browser session
// through the web application's login flow.
package auth

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/djib1010/stremio-library-exporter/internal/shared"
)

// Driver is the slice of browser behavior the extractor needs.
// Implemented by [browser.Session]; tests supply a scripted fake.
type Driver interface {
	Navigate(url string, timeout time.Duration) error
	WaitFor(selector, state string, timeout time.Duration) error
	Exists(selector string) (bool, error)
	Fill(selector, value string, timeout time.Duration) error
	Click(selector string, timeout time.Duration) error
	WaitIdle(timeout time.Duration) error
	Settle(d time.Duration)
	LocalStorage() (map[string]any, error)
	Close() error
}

// Selectors and entry point for the Stremio web application. The login
// button and the submit button share a selector class because the UI
// reuses the control.
const (
	entryURL         = "https://web.stremio.com/#/intro?form=login"
	landingSelector  = `div:has-text("Log in"), a[href*="library"]`
	loginSelector    = `div.form-button-vyqqj:has-text("Log in")`
	loginTextMatch   = `div:has-text("Log in")`
	emailSelector    = `input[placeholder="E-mail"]`
	passwordSelector = `input[placeholder="Password"]`
)

// Wait bounds for the extraction flow.
const (
	navigateTimeout  = 30 * time.Second
	elementTimeout   = 30 * time.Second
	loginHideTimeout = 10 * time.Second
	idleTimeout      = 30 * time.Second
	storageSettle    = 3 * time.Second
)

// State identifies a step of the extraction flow, used for logging and
// failure diagnostics.
type State int

const (
	StateStart State = iota
	StateNavigated
	StateLoginRequired
	StateAlreadyAuthenticated
	StateLoginSubmitted
	StateStorageReady
	StateTokenExtracted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateNavigated:
		return "navigated"
	case StateLoginRequired:
		return "login_required"
	case StateAlreadyAuthenticated:
		return "already_authenticated"
	case StateLoginSubmitted:
		return "login_submitted"
	case StateStorageReady:
		return "storage_ready"
	case StateTokenExtracted:
		return "token_extracted"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// Credentials holds the externally supplied account secrets. Consumed as
// opaque strings, never logged.
type Credentials struct {
	Email    string
	Password string
}

// Extractor drives a [Driver] through the login flow and recovers the
// auth key from the page's persistent storage.
//
// An Extractor is single-use: it owns its driver exclusively and closes
// it on every exit path, successful or not. Repeated extraction requires
// a fresh driver; no session state is cached across runs.
type Extractor struct {
	driver Driver
	creds  Credentials
	logger *log.Logger
	state  State
}

// New creates an Extractor over the given driver and credentials.
func New(driver Driver, creds Credentials, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Extractor{
		driver: driver,
		creds:  creds,
		logger: logger,
		state:  StateStart,
	}
}

// State returns the last state the extractor reached.
func (e *Extractor) State() State {
	return e.state
}

func (e *Extractor) transition(s State) {
	e.state = s
	e.logger.Debug("extractor state", "state", s.String())
}

// Extract runs the full flow and returns the recovered auth key. The
// underlying driver is always closed before Extract returns.
func (e *Extractor) Extract() (key string, err error) {
	defer func() {
		if cerr := e.driver.Close(); cerr != nil {
			e.logger.Warn("failed to close browser session", "err", cerr)
		}
		if err != nil {
			e.state = StateFailed
		}
	}()

	if e.creds.Email == "" || e.creds.Password == "" {
		return "", fmt.Errorf("%w: email and password are required", shared.ErrMissingCredentials)
	}

	e.logger.Info("navigating to Stremio login page")
	if err := e.driver.Navigate(entryURL, navigateTimeout); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNavigationTimeout, err)
	}

	// Whichever affordance appears first disambiguates the next state:
	// a login button means authentication is needed, a library link
	// means a session already exists.
	if err := e.driver.WaitFor(landingSelector, "visible", navigateTimeout); err != nil {
		return "", fmt.Errorf("%w: neither login nor library affordance appeared: %v", shared.ErrNavigationTimeout, err)
	}
	e.transition(StateNavigated)

	loginRequired, err := e.driver.Exists(loginTextMatch)
	if err != nil {
		return "", fmt.Errorf("failed to inspect landing page: %w", err)
	}

	if loginRequired {
		e.transition(StateLoginRequired)
		e.logger.Info("login required, proceeding with authentication")
		if err := e.login(); err != nil {
			return "", err
		}
	} else {
		e.transition(StateAlreadyAuthenticated)
		e.logger.Info("already logged in")
	}
	e.transition(StateStorageReady)

	key, err = e.readAuthKey()
	if err != nil {
		return "", err
	}
	e.transition(StateTokenExtracted)
	e.logger.Info("successfully extracted auth key")
	return key, nil
}

// login clicks through the credential form and waits for completion.
func (e *Extractor) login() error {
	if err := e.driver.Click(loginSelector, elementTimeout); err != nil {
		return fmt.Errorf("failed to open login form: %w", err)
	}

	// Wait for the form to render instead of sleeping a fixed interval.
	if err := e.driver.WaitFor(emailSelector, "visible", elementTimeout); err != nil {
		return fmt.Errorf("login form did not render: %w", err)
	}

	if err := e.driver.Fill(emailSelector, e.creds.Email, elementTimeout); err != nil {
		return fmt.Errorf("failed to fill email: %w", err)
	}
	if err := e.driver.Fill(passwordSelector, e.creds.Password, elementTimeout); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}

	if err := e.driver.Click(loginSelector, elementTimeout); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	e.transition(StateLoginSubmitted)

	// Two-tier completion check: the primary signal is the login button
	// disappearing; some UI states keep the node present transiently, so
	// fall back to network quiescence instead of failing outright.
	e.logger.Info("waiting for login completion")
	if err := e.driver.WaitFor(loginSelector, "hidden", loginHideTimeout); err != nil {
		e.logger.Warn("login form may still be visible, falling back to network idle", "err", err)
	}
	if err := e.driver.WaitIdle(idleTimeout); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLoginIncomplete, err)
	}

	return nil
}

// readAuthKey snapshots localStorage after a settle delay and locates
// the auth key inside the profile record.
func (e *Extractor) readAuthKey() (string, error) {
	// Storage population lags page readiness with nothing observable to
	// wait on, so allow it to settle.
	e.driver.Settle(storageSettle)

	e.logger.Info("extracting auth key from localStorage")
	snapshot, err := e.driver.LocalStorage()
	if err != nil {
		return "", fmt.Errorf("failed to read browser storage: %w", err)
	}

	return FindAuthKey(snapshot)
}

// FindAuthKey scans a storage snapshot for the first entry that is a
// mapping containing an "auth" field (the profile record), then digs out
// auth.key. Each missing layer is a distinct failure so callers can tell
// "never logged in" from "storage shape changed".
func FindAuthKey(snapshot map[string]any) (string, error) {
	var profile map[string]any
	for _, value := range snapshot {
		entry, ok := value.(map[string]any)
		if !ok {
			continue
		}
		if _, hasAuth := entry["auth"]; hasAuth {
			profile = entry
			break
		}
	}

	if profile == nil {
		return "", shared.ErrProfileNotFound
	}

	authData, ok := profile["auth"].(map[string]any)
	if !ok {
		return "", shared.ErrAuthFieldMissing
	}

	key, ok := authData["key"].(string)
	if !ok || key == "" {
		return "", shared.ErrAuthKeyMissing
	}

	return key, nil
}
