package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
)

type commandContext struct {
	startedAt time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Coach portal - subscriptions, promo codes and checkout",
	Long: `portal runs the coaching portal API and the operator tooling around it.

It serves subscription status and progress, promo code pricing and the
checkout flow that turns a cart into active subscriptions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = observability.NewRequestContext(ctx, "")
		ctx = context.WithValue(ctx, commandContextKey{}, commandContext{startedAt: time.Now()})
		cmd.SetContext(ctx)
		logger.DebugContext(ctx, "command start", "command", cmd.CommandPath())
		return ensureApp(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.DebugContext(cmd.Context(), "command end",
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// BootstrapOptions carries the global flags into Bootstrap.
type BootstrapOptions struct {
	ConfigPath string
	Verbose    bool
}

// Bootstrap builds the App. It runs once, before the first command that needs
// dependencies; the returned func releases them.
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*App, func(), error)

var (
	bootstrap Bootstrap
	cleanup   func()
)

// SetBootstrap registers the function that builds the App.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// skipBootstrap marks commands that run without dependencies.
const skipBootstrap = "skip-bootstrap"

func ensureApp(cmd *cobra.Command) error {
	if app != nil || bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	built, release, err := bootstrap(cmd.Context(), BootstrapOptions{ConfigPath: cfgFile, Verbose: verbose})
	if err != nil {
		return err
	}
	app = built
	cleanup = release
	return nil
}

// Close releases what the bootstrap acquired.
func Close() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}
