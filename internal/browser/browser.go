// package browser wraps a single headless Playwright browser and page.
//
// A [Session] owns exactly one browser process, context, and page for the
// duration of one credential extraction. Callers must Close the session
// on every exit path.
package browser

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Kind identifies the browser engine to drive.
type Kind string

const (
	KindChromium Kind = "chromium"
	KindFirefox  Kind = "firefox"
	KindWebkit   Kind = "webkit"
)

// ParseKind maps a configuration string to a [Kind]. Unrecognized values
// fall back to chromium rather than failing.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindFirefox:
		return KindFirefox
	case KindWebkit:
		return KindWebkit
	default:
		return KindChromium
	}
}

// Default bounds for page operations.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// SessionOptions configures a new browser session.
type SessionOptions struct {
	Headless bool
	Timeout  time.Duration // default timeout for page operations
}

// Session represents an active browser session with its associated resources.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	closed  bool
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// Launch installs (if needed) and starts Playwright, launches the requested
// browser engine, and opens a fresh page. Unrecognized kinds launch chromium.
func Launch(kind Kind, opts SessionOptions) (*Session, error) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	// Discard driver output so it does not interleave with CLI output.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch ParseKind(string(kind)) {
	case KindFirefox:
		browserType = pw.Firefox
	case KindWebkit:
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	b, err := browserType.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
	}
	context, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	return &Session{
		pw:      pw,
		browser: b,
		context: context,
		page:    page,
	}, nil
}

// Navigate loads the URL and waits for the network to become idle, since
// the target application renders its UI asynchronously after the initial
// document.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	waitUntil := playwright.WaitUntilStateNetworkidle
	gotoOpts := playwright.PageGotoOptions{
		WaitUntil: waitUntil,
	}
	if timeout > 0 {
		gotoOpts.Timeout = millis(timeout)
	}

	if _, err := s.page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitFor blocks until the selector reaches the given state
// (visible, hidden, attached, detached) or the timeout elapses.
func (s *Session) WaitFor(selector, state string, timeout time.Duration) error {
	waitOpts := playwright.PageWaitForSelectorOptions{}
	if state != "" {
		st := playwright.WaitForSelectorState(state)
		waitOpts.State = &st
	}
	if timeout > 0 {
		waitOpts.Timeout = millis(timeout)
	}

	if _, err := s.page.WaitForSelector(selector, waitOpts); err != nil {
		return fmt.Errorf("wait for %q failed: %w", selector, err)
	}
	return nil
}

// Exists reports whether an element matching the selector is currently
// present in the DOM, without waiting.
func (s *Session) Exists(selector string) (bool, error) {
	element, err := s.page.QuerySelector(selector)
	if err != nil {
		return false, fmt.Errorf("selector query failed: %w", err)
	}
	return element != nil, nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(selector, value string, timeout time.Duration) error {
	fillOpts := playwright.PageFillOptions{}
	if timeout > 0 {
		fillOpts.Timeout = millis(timeout)
	}

	if err := s.page.Fill(selector, value, fillOpts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(selector string, timeout time.Duration) error {
	clickOpts := playwright.PageClickOptions{}
	if timeout > 0 {
		clickOpts.Timeout = millis(timeout)
	}

	if err := s.page.Click(selector, clickOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// WaitIdle waits for the page's network to become idle.
func (s *Session) WaitIdle(timeout time.Duration) error {
	loadOpts := playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}
	if timeout > 0 {
		loadOpts.Timeout = millis(timeout)
	}

	if err := s.page.WaitForLoadState(loadOpts); err != nil {
		return fmt.Errorf("wait for network idle failed: %w", err)
	}
	return nil
}

// Settle pauses for a fixed duration inside the page's event loop.
// Used where the application populates storage after page readiness
// with no observable predicate to wait on.
func (s *Session) Settle(d time.Duration) {
	s.page.WaitForTimeout(float64(d.Milliseconds()))
}

// storageScript snapshots localStorage, JSON-decoding each value and
// falling back to the raw string for non-JSON entries.
const storageScript = `() => {
	const data = {};
	for (const key of Object.keys(localStorage)) {
		try {
			data[key] = JSON.parse(localStorage.getItem(key));
		} catch (e) {
			data[key] = localStorage.getItem(key);
		}
	}
	return data;
}`

// LocalStorage reads the page's persistent key-value storage as a flat
// key to JSON-decoded-value mapping.
func (s *Session) LocalStorage() (map[string]any, error) {
	result, err := s.page.Evaluate(storageScript)
	if err != nil {
		return nil, fmt.Errorf("failed to read localStorage: %w", err)
	}

	snapshot, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected localStorage shape: %T", result)
	}
	return snapshot, nil
}

// Close releases the page, context, browser process, and Playwright driver.
// Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// Best effort teardown in dependency order.
	_ = s.page.Close()
	_ = s.context.Close()
	_ = s.browser.Close()

	if err := s.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
