// ABOUTME: Operator CLI for the bearound admin API
// ABOUTME: cobra commands over the typed facade with a file-persisted session

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bearound/bearound-admin/internal/adminapi"
	"github.com/bearound/bearound-admin/internal/apiclient"
	"github.com/bearound/bearound-admin/internal/config"
	"github.com/bearound/bearound-admin/internal/logging"
	"github.com/bearound/bearound-admin/internal/session"
)

const banner = `
  _                                         _
 | |__   ___  __ _ _ __ ___  _   _ _ __   __| |
 | '_ \ / _ \/ _' | '__/ _ \| | | | '_ \ / _' |
 | |_) |  __/ (_| | | | (_) | |_| | | | | (_| |
 |_.__/ \___|\__,_|_|  \___/ \__,_|_| |_|\__,_|  admin
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every command of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configDir string
	apiURL    string

	cfg     *config.CLIConfig
	session *session.Store
	api     *adminapi.API

	// onLogin marks the login command, which suppresses auth notices.
	onLogin bool
	// prompt asks for missing credentials. Tests replace it.
	prompt func(email string) (string, string, error)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, prompt: promptCredentials}

	root := &cobra.Command{
		Use:           "bearound-admin",
		Short:         "Moderate bearound from the terminal",
		Long:          banner + "\nManage users, reports, blocks, feedback, and app settings through the admin API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", config.CLIDir(), "directory holding admin.toml and auth-storage.json")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL (overrides admin.toml and BEAROUND_API_URL)")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		a.usersCmd(),
		a.reportsCmd(),
		a.blocksCmd(),
		a.feedbackCmd(),
		a.analyticsCmd(),
		a.activityCmd(),
		a.featuresCmd(),
		a.limitsCmd(),
		a.settingsCmd(),
		a.premiumCmd(),
	)
	return root
}

// setup loads config, restores the session, and builds the client.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.LoadCLI(a.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	a.cfg = cfg

	logger := logging.New(a.errOut, cfg.LogLevel, "text")

	persister := session.NewDirPersister(cfg.Dir)
	a.session = session.NewStore(persister)
	if err := a.session.Rehydrate(ctx); err != nil {
		logger.Warn("discarding unreadable session", "path", persister.Path(), "error", err)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	}, a.session, apiclient.NotifierFunc(a.notify), cliNavigator{a})
	if err != nil {
		return err
	}
	a.api = adminapi.New(client)
	return nil
}

// notify prints a notice to stderr in its level's colour.
func (a *app) notify(_ context.Context, n apiclient.Notice) {
	c := color.New(color.FgCyan)
	mark := "•"
	switch n.Level {
	case apiclient.LevelError:
		c = color.New(color.FgRed)
		mark = "✗"
	case apiclient.LevelSuccess:
		c = color.New(color.FgGreen)
		mark = "✓"
	}
	c.Fprintf(a.errOut, "%s %s\n", mark, n.Text)
}

func (a *app) success(text string) {
	a.notify(context.Background(), apiclient.Notice{Level: apiclient.LevelSuccess, Text: text})
}

type cliNavigator struct{ a *app }

func (n cliNavigator) OnLoginView(context.Context) bool { return n.a.onLogin }

func (n cliNavigator) RedirectToLogin(context.Context) {
	color.New(color.FgYellow).Fprintln(n.a.errOut, "run `bearound-admin login`")
}
