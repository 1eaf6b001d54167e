// Package cli implements riskctl, a command-line front end to the travel risk engine.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperrors "github.com/leainsurance/travelrisk/internal/common/errors"
	"github.com/leainsurance/travelrisk/internal/common/logger"
	"github.com/leainsurance/travelrisk/internal/risk"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	KnowledgeBase string
	Pretty        bool
	LogLevel      string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Engine *risk.Engine
	Logger *zap.Logger
	Pretty bool
}

// NewRootCommand creates the riskctl root command with its subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "riskctl",
		Short: "Score travel-insurance risk from the command line",
		Long: "riskctl scores trips against the travel risk knowledge base, adds persona\n" +
			"advice and re-ranks candidate insurance plans. Inputs and outputs are JSON.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.KnowledgeBase, "kb", "", "knowledge base YAML file (default: embedded)")
	pf.BoolVar(&opts.Pretty, "pretty", false, "indent JSON output")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		NewAnalyzeCmd(),
		NewPersonaCmd(),
		NewPersonasCmd(),
		NewRankCmd(),
	)

	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	log := logger.NewWithLevel(os.Getenv("APP_ENV"), opts.LogLevel).
		With(zap.String("component", "riskctl"))

	kb := risk.DefaultKnowledgeBase()
	if opts.KnowledgeBase != "" {
		loaded, err := risk.LoadKnowledgeBaseFile(opts.KnowledgeBase)
		if err != nil {
			return apperrors.KnowledgeBaseError(opts.KnowledgeBase, err)
		}
		kb = loaded
		log.Debug("Loaded knowledge base", zap.String("path", opts.KnowledgeBase))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, &CLIContext{
		Engine: risk.NewEngine(kb),
		Logger: log,
		Pretty: opts.Pretty,
	}))
	return nil
}

// GetCLIContext extracts the CLIContext set up by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(cliContextKey{}).(*CLIContext); ok {
			return cc, nil
		}
	}
	return nil, fmt.Errorf("cli context not initialized")
}

// Exit codes returned by Execute.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitInputError = 2
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitCode(err)
}

// exitCode maps client-side errors (bad input, bad flags) to ExitInputError
// and everything else to ExitFailure.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if status := apperrors.GetStatusCode(err); status >= 400 && status < 500 {
		return ExitInputError
	}
	return ExitFailure
}
