package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/djib1010/stremio-library-exporter/internal/auth"
	"github.com/djib1010/stremio-library-exporter/internal/browser"
	"github.com/djib1010/stremio-library-exporter/internal/shared"
	"github.com/djib1010/stremio-library-exporter/internal/tasks"
	"github.com/urfave/cli/v3"
)

var summaryStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("99")).
	Padding(0, 2)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	client tasks.DatastoreClient
	engine *tasks.LibraryEngine
	logger *log.Logger
	output io.Writer

	// launchSession is swappable in tests so commands can run without a
	// real browser.
	launchSession func(kind browser.Kind, opts browser.SessionOptions) (auth.Driver, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Client tasks.DatastoreClient
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	engine := tasks.NewLibraryEngine(opts.Client, opts.Config.API.RateLimit, opts.Logger)

	return &Runner{
		config: opts.Config,
		client: opts.Client,
		engine: engine,
		logger: opts.Logger,
		output: opts.Output,
		launchSession: func(kind browser.Kind, o browser.SessionOptions) (auth.Driver, error) {
			return browser.Launch(kind, o)
		},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, exportCommand, restoreCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveAuthKey returns the key from the --auth-key flag when supplied,
// otherwise performs a full browser-driven extraction.
func (r *Runner) resolveAuthKey(cmd *cli.Command) (string, error) {
	if key := cmd.String("auth-key"); key != "" {
		return key, nil
	}
	return r.extractAuthKey(cmd)
}

// extractAuthKey launches a browser session and runs the credential
// extraction flow. The session is owned and closed by the extractor.
func (r *Runner) extractAuthKey(cmd *cli.Command) (string, error) {
	if err := r.config.ValidateCredentials(); err != nil {
		return "", err
	}

	kindName := cmd.String("browser")
	if kindName == "" {
		kindName = r.config.Browser.Kind
	}
	headless := r.config.Browser.Headless
	if cmd.Bool("headed") {
		headless = false
	}

	r.logger.Info("launching browser", "kind", kindName, "headless", headless)
	session, err := r.launchSession(browser.ParseKind(kindName), browser.SessionOptions{
		Headless: headless,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrBrowserLaunch, err)
	}

	extractor := auth.New(session, auth.Credentials{
		Email:    r.config.Credentials.Stremio.Email,
		Password: r.config.Credentials.Stremio.Password,
	}, r.logger)

	return extractor.Extract()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeSummary renders a bordered summary block.
func (r *Runner) writeSummary(title string, lines ...string) {
	content := title + "\n" + strings.Join(lines, "\n")
	r.writePlain("%s\n", summaryStyle.Render(content))
}
