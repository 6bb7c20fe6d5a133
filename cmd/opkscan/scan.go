package main

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/opkscan/internal/config"
	"github.com/provide-io/opkscan/internal/index"
	"github.com/provide-io/opkscan/internal/install"
	"github.com/provide-io/opkscan/internal/lock"
	"github.com/provide-io/opkscan/internal/report"
	"github.com/provide-io/opkscan/internal/scan"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [PACKAGE]",
		Short: "Install every package found, or only PACKAGE",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}
	cmd.Flags().BoolVar(&anyPlatform, "any-platform", false, "Install documents of every platform")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	extra := map[string]any{}
	if cmd.Flags().Changed("any-platform") {
		extra[config.KeyAnyPlatform] = anyPlatform
	}
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	dirMode, fileMode, err := cfg.Modes()
	if err != nil {
		return err
	}

	if err := appFs.MkdirAll(cfg.HomePath, dirMode); err != nil {
		return fmt.Errorf("creating home path: %w", err)
	}
	scanLock, err := lock.Acquire(appFs, filepath.Join(cfg.HomePath, lock.FileName), logger.Named("lock"))
	if err != nil {
		return err
	}
	defer releaseLock(scanLock, logger)

	var recorder install.Recorder
	if cfg.IndexPath != "" {
		ix, err := index.Open(cfg.IndexPath)
		if err != nil {
			return err
		}
		defer ix.Close()
		recorder = ix
	}

	var packagePath string
	if len(args) == 1 {
		packagePath = args[0]
	}

	reporter := report.Multi(
		report.NewWriter(cmd.OutOrStdout(), logger),
		report.Func(func(line string) { logger.Trace("report", "line", line) }),
	)

	orchestrator := scan.New(appFs, scan.Options{
		PrimaryRoot:   cfg.PrimaryRoot,
		HomePath:      cfg.HomePath,
		MediaRoot:     cfg.MediaRoot,
		Platform:      cfg.Platform,
		PackageSuffix: cfg.PackageSuffix,
		AnyPlatform:   cfg.AnyPlatform,
		Sync:          cfg.Sync,
		DirMode:       dirMode,
		FileMode:      fileMode,
	}, reporter, recorder, logger)

	if _, err := orchestrator.Run(cmd.Context(), packagePath); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}
	return nil
}

// releaseLock removes the scan lock. A failure is logged; the next scan
// clears the stale lock.
func releaseLock(l *lock.Lock, logger hclog.Logger) {
	if err := l.Release(); err != nil {
		logger.Warn("Failed to release scan lock", "error", err)
	}
}
