// Package scan drives a scan: it discovers roots, lists packages and hands
// each one to the installer, reporting progress as it goes.
package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/provide-io/opkscan/internal/install"
	"github.com/provide-io/opkscan/internal/menu"
	"github.com/provide-io/opkscan/internal/report"
	"github.com/provide-io/opkscan/internal/scanner"
	"github.com/provide-io/opkscan/pkg/opk"
)

// Progress lines.
const (
	LineSeparator   = "----"
	LineDone        = "Done"
	LineInterrupted = "Interrupted"
)

// Options is the scan configuration threaded down to every component.
type Options struct {
	PrimaryRoot   string
	HomePath      string
	MediaRoot     string
	Platform      string
	PackageSuffix string
	AnyPlatform   bool
	// Sync flushes filesystem buffers once the scan finishes.
	Sync bool
	// DirMode and FileMode override the modes of sections and links.
	DirMode  os.FileMode
	FileMode os.FileMode
}

// Summary counts what a run did.
type Summary struct {
	Roots     int
	Packages  int
	Failed    int
	Installed int
	Rejected  int
}

func (s *Summary) add(res install.Result) {
	s.Packages++
	if res.Err != nil {
		s.Failed++
	}
	for _, d := range res.Documents {
		if d.Link != "" {
			s.Installed++
		}
		if errors.Is(d.Err, opk.ErrUnsupportedPlatform) {
			s.Rejected++
		}
	}
}

// Orchestrator runs scans over one filesystem
type Orchestrator struct {
	opts      Options
	scanner   *scanner.Scanner
	installer *install.Installer
	reporter  report.Reporter
	sync      func() error
	logger    hclog.Logger
}

// New creates a new Orchestrator. recorder may be nil.
func New(fsys afero.Fs, opts Options, reporter report.Reporter, recorder install.Recorder, logger hclog.Logger) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if reporter == nil {
		reporter = report.Discard
	}

	installer := install.New(
		install.Options{Platform: opts.Platform, AnyPlatform: opts.AnyPlatform},
		opk.NewReaderWithLogger(fsys, logger.Named("reader")),
		menu.New(fsys, opts.HomePath, logger.Named("menu")).WithModes(opts.DirMode, opts.FileMode),
		reporter,
		logger.Named("install"),
	)
	if recorder != nil {
		installer.WithRecorder(recorder)
	}

	return &Orchestrator{
		opts:      opts,
		scanner:   scanner.New(fsys, logger.Named("scanner")),
		installer: installer,
		reporter:  reporter,
		sync:      syncFilesystems,
		logger:    logger,
	}
}

// Run installs packagePath alone when it is set, otherwise every package
// found under the discovered roots. The context is only checked between
// roots and between packages; an interrupted run skips the sync and returns
// the context error.
func (o *Orchestrator) Run(ctx context.Context, packagePath string) (Summary, error) {
	var summary Summary
	var err error

	if packagePath != "" {
		o.reporter.Report("Installing " + filepath.Base(packagePath))
		summary.add(o.installer.Install(packagePath))
	} else {
		err = o.scanAll(ctx, &summary)
	}

	o.reporter.Report(LineSeparator)
	if err != nil {
		o.reporter.Report(LineInterrupted)
		o.logger.Warn("Scan interrupted", "error", err)
		return summary, err
	}

	if o.opts.Sync {
		if err := o.sync(); err != nil {
			o.logger.Debug("Sync failed", "error", err)
		}
	}
	o.reporter.Report(LineDone)

	o.logger.Info("Scan finished",
		"roots", summary.Roots,
		"packages", summary.Packages,
		"installed", summary.Installed,
		"rejected", summary.Rejected,
		"failed", summary.Failed)
	return summary, nil
}

func (o *Orchestrator) scanAll(ctx context.Context, summary *Summary) error {
	roots := o.scanner.DiscoverRoots(scanner.Roots{
		Primary: o.opts.PrimaryRoot,
		Home:    o.opts.HomePath,
		Media:   o.opts.MediaRoot,
	})

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Roots++
		o.reporter.Report("Scanning " + root)

		for _, pkg := range o.scanner.Files(root, o.opts.PackageSuffix) {
			if err := ctx.Err(); err != nil {
				return err
			}
			o.reporter.Report("Installing " + pkg)
			summary.add(o.installer.Install(pkg))
		}
	}
	return nil
}
