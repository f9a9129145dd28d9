// Package cli implements the ic50 command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
	noColor  bool
	logger   *slog.Logger
}

// NewRootCommand builds the ic50 command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ic50",
		Short: "Bayesian IC50 estimation from dose-response data",
		Long: `ic50 estimates the half-maximal inhibitory concentration of each drug in a
dose-response table with a Bayesian logistic-decay model sampled by
random-walk Metropolis.

Examples:
  ic50 simulate --ic50 42,13,88 --seed 7 > data.csv
  ic50 fit --input data.csv --chains 4
  ic50 demo`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.noColor)
			if err != nil {
				return err
			}
			opts.logger = logger

			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored log output")

	root.AddCommand(newSimulateCommand())
	root.AddCommand(newFitCommand(opts))
	root.AddCommand(newDemoCommand(opts))

	return root
}

// Execute runs the command line until completion or an interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level string, noColor bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})), nil
}
