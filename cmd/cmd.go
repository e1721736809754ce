package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/thiagokokada/git-status-watch/internal/app"
	"github.com/thiagokokada/git-status-watch/internal/buildinfo"
)

type CLI struct {
	Path        string           `arg:"" optional:"" default:"." help:"Repository to watch (default: current directory)"`
	Format      string           `help:"Output template with {name} placeholders; empty emits a JSON record" placeholder:"TEMPLATE"`
	Once        bool             `help:"Print the current status once and exit"`
	DebounceMs  int              `default:"75" help:"Quiet period in milliseconds after filesystem activity before recomputing"`
	AlwaysPrint bool             `help:"Emit every reading even when the status is unchanged"`
	StateDir    string           `help:"Directory for sharing state between watchers of the same repository"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Version     kong.VersionFlag `help:"Show version information"`
}

func (c *CLI) appConfig() app.Config {
	return app.Config{
		Path:        c.Path,
		Format:      c.Format,
		Once:        c.Once,
		Debounce:    time.Duration(c.DebounceMs) * time.Millisecond,
		AlwaysPrint: c.AlwaysPrint,
		StateDir:    c.StateDir,
	}
}

func kongOptions(version string) []kong.Option {
	return []kong.Option{
		kong.Name("git-status-watch"),
		kong.Description("Watch a git repository and print a status line whenever it changes."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	}
}

// Run parses the command line and drives the watcher until it stops.
func Run() error {
	var cli CLI
	kong.Parse(&cli, kongOptions(buildinfo.VersionWithTags())...)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	// Status lines own stdout; logging goes to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		cancel()
	}()

	return app.Run(ctx, cli.appConfig())
}
