// Package cli - shared entry point of the single-shot image programs.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-imgprep/config"
	"github.com/nvr-ai/go-imgprep/engines"
	"github.com/nvr-ai/go-imgprep/images"
	"github.com/nvr-ai/go-imgprep/logging"
	"github.com/nvr-ai/go-imgprep/runner"
)

// Exit codes.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitMissingArgument = 2
)

// Env is what a program body gets to work with.
type Env struct {
	// Config is the resolved configuration.
	Config *config.Config
	// Logger is the structured logger, writing to stderr.
	Logger *zap.Logger
}

// Program is one command line tool.
type Program struct {
	// Name is used in usage and log output.
	Name string
	// Options selects the extra flags of the program.
	Options config.Options
	// Run is the body; args are the positional arguments.
	Run func(ctx context.Context, env *Env, args []string) error
}

// Main runs p and returns the process exit code.
//
// A missing input path prints images.MissingArgumentMessage to stdout and returns
// ExitMissingArgument. Any other failure is logged, printed as one line to stderr
// and returns ExitFailure.
//
// Arguments:
//   - p: The program.
//   - args: Command line arguments without the program name.
//   - stdout: Destination of the missing-argument message.
//   - stderr: Destination of error lines.
//
// Returns:
//   - int: The exit code.
func Main(p Program, args []string, stdout, stderr io.Writer) int {
	cfg, positional, err := config.Load(p.Name, args, p.Options)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		if images.IsMissingArgument(err) {
			fmt.Fprintln(stdout, images.MissingArgumentMessage)
			return ExitMissingArgument
		}
		fmt.Fprintf(stderr, "%s: %v\n", p.Name, err)
		return ExitFailure
	}

	logger, err := logging.New(cfg.LogLevel, logging.Format(cfg.LogFormat), p.Name, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", p.Name, err)
		return ExitFailure
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = p.Run(ctx, &Env{Config: cfg, Logger: logger}, positional)
	switch {
	case err == nil:
		return ExitOK
	case images.IsMissingArgument(err):
		fmt.Fprintln(stdout, images.MissingArgumentMessage)
		return ExitMissingArgument
	default:
		logger.Debug("program failed", zap.Error(err))
		fmt.Fprintf(stderr, "%s: %v\n", p.Name, err)
		return ExitFailure
	}
}

// firstArg returns the input path argument or a MissingArgumentError.
func firstArg(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", &images.MissingArgumentError{Name: "input"}
	}
	return args[0], nil
}

// runJob runs job on the configured engine.
func runJob(ctx context.Context, env *Env, job engines.Job) error {
	// Validate before the engine is built so a missing path never costs more than the check.
	if err := job.Validate(); err != nil {
		return err
	}

	engine, err := engines.New(engines.Type(env.Config.Engine), env.Logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	_, err = runner.New(engine, env.Logger).Run(ctx, job)
	return err
}
