package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/backmassage/tripmaster/internal/check"
	"github.com/backmassage/tripmaster/internal/config"
	"github.com/backmassage/tripmaster/internal/display"
	"github.com/backmassage/tripmaster/internal/ffmpeg"
	"github.com/backmassage/tripmaster/internal/filetimes"
	"github.com/backmassage/tripmaster/internal/ledger"
	"github.com/backmassage/tripmaster/internal/logging"
	"github.com/backmassage/tripmaster/internal/metrics"
	"github.com/backmassage/tripmaster/internal/pipeline"
	"github.com/backmassage/tripmaster/internal/probe"
	"github.com/backmassage/tripmaster/internal/watch"
)

// runArchive is the root command: load settings, wait for and validate the
// card, confirm, check dependencies, run the pipeline and report.
func runArchive(cmd *cobra.Command, flags *config.Flags) error {
	// 1. Settings; exit on parse or validation error.
	cfg, err := loadConfig(cmd.Flags(), flags, false)
	if err != nil {
		return err
	}
	notices := cfg.Normalize()

	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(os.Stdout)
	for _, n := range notices {
		log.Warn("%s", n)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Optionally block until the card is mounted.
	if cfg.WaitForCard {
		err := watch.WaitForDir(ctx, cfg.CardRoot, watch.Options{
			OnWait: func(dir string) { log.Info("Waiting for %s (watching %s)", cfg.CardRoot, dir) },
		})
		if err != nil {
			log.Error("%v", err)
			return errReported
		}
	}

	// 3. Resolve paths: the card must exist and the output must not be inside it.
	cardAbs, err := absPath(cfg.CardRoot)
	if err != nil {
		log.Error("Cannot resolve card root: %s", cfg.CardRoot)
		return errReported
	}
	if fi, err := os.Stat(cardAbs); err != nil || !fi.IsDir() {
		log.Error("Card root not found: %s", cfg.CardRoot)
		return errReported
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return errReported
	}
	if err := cfg.ValidatePaths(cardAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.CardRoot)
		return errReported
	}
	cfg.CardRoot, cfg.OutputDir = cardAbs, outputAbs

	// 4. Confirmation gate.
	prompt := newPrompter(os.Stdin, os.Stdout)
	if !cfg.AssumeYes {
		display.PrintSettings(os.Stdout, cfg)
		ok, err := prompt.Confirm()
		if err != nil {
			return err
		}
		if !ok {
			log.Warn("Not confirmed, exiting")
			return errReported
		}
	}

	log.Info("=== Tripmaster v%s ===", version)
	log.Info("Card: %s", cfg.CardRoot)
	log.Info("Out:  %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN")
	}

	// 5. Tools and encoders must work before the first trip starts.
	quiet := &ffmpeg.ExecRunner{}
	if !cfg.DryRun {
		if err := check.CheckDeps(ctx, cfg, quiet); err != nil {
			log.Error("%v", err)
			return errReported
		}
		if cfg.Video.Codec != config.CodecCopy {
			if err := check.CheckAudio(ctx, cfg, quiet); err != nil {
				log.Warn("%v; trips with mixed resolutions will fail", err)
			}
		}
	}

	// 6. Collaborators.
	runID := uuid.New()
	log.Debug("Run %s", runID)
	deps := pipeline.Deps{
		Runner:  &ffmpeg.ExecRunner{Stderr: os.Stderr},
		Prober:  probe.New(cfg.FFprobePath),
		Decide:  prompt.Overwrite,
		Setter:  filetimes.DefaultSetter(),
		Metrics: metrics.New(),
		RunID:   runID,
	}
	if !deps.Setter.Supported() {
		log.Debug("Creation time cannot be set on this platform; only access and modification times are kept")
	}
	if cfg.LedgerPath != "" && !cfg.DryRun {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			log.Error("%v", err)
			return errReported
		}
		defer store.Close()
		deps.Ledger = store
	}

	// 7. Run.
	stats, runErr := pipeline.Run(ctx, cfg, log, deps)

	if err := deps.Metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		log.Warn("Metrics textfile: %v", err)
	}
	switch {
	case errors.Is(runErr, context.Canceled):
		log.Warn("Run interrupted after %d of %d trips", stats.Current, stats.Trips)
		return errReported
	case runErr != nil:
		log.Error("%v", runErr)
		return errReported
	}
	if n := len(stats.Failures()); n > 0 && cfg.FailOnError {
		return fmt.Errorf("%d trips failed", n)
	}
	return nil
}
