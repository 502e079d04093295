// Command train-model trains a random forest or elastic net on patient
// features, reports nested leave-one-out error against a mean baseline, and
// writes the results record and the ranked feature importances.
//
// Usage:
//
//	train-model --feature_file features.tsv --feature_class_file classes.tsv \
//		--outcome_file outcome.tsv --output_prefix out/run --model en
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/outcomecv/internal/config"
	"github.com/YuminosukeSato/outcomecv/internal/outcome"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/pkg/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args, stdout)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := log.SetupLogger(cfg.Verbosity, stderr)
	logger.Info("Run parameters", "params", cfg.Params())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := outcome.Run(ctx, cfg, logger); err != nil {
		logger.Error("train-model failed", err)
		return 1
	}
	return 0
}
