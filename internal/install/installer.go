package install

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/opkscan/internal/index"
	"github.com/provide-io/opkscan/internal/menu"
	"github.com/provide-io/opkscan/internal/report"
	"github.com/provide-io/opkscan/pkg/opk"
)

// Options selects which documents are installed.
type Options struct {
	// Platform is the current device's platform identifier.
	Platform string
	// AnyPlatform accepts documents regardless of their platform token.
	AnyPlatform bool
}

// Materializer persists accepted drafts.
type Materializer interface {
	Materialize(d *menu.Draft, t menu.Target) (*menu.Link, error)
}

// Recorder remembers materialized entries.
type Recorder interface {
	Put(r index.Record) error
}

// Document is the outcome for one metadata document.
type Document struct {
	Name DocumentName
	// Link is the persisted entry path; empty when nothing was written.
	Link string
	// Err is ErrUnsupportedPlatform for rejected documents, or the save error.
	Err error
}

// Result summarizes the installation of one package.
type Result struct {
	Path      string
	Documents []Document
	// Err is set when the package could not be opened or its metadata broke
	// off; documents after the failure were not visited.
	Err error
}

// Installed returns the number of persisted entries.
func (r Result) Installed() int {
	n := 0
	for _, d := range r.Documents {
		if d.Link != "" {
			n++
		}
	}
	return n
}

// Installer installs packages one at a time
type Installer struct {
	opts     Options
	opener   opk.Opener
	menu     Materializer
	recorder Recorder
	reporter report.Reporter
	logger   hclog.Logger
}

// New creates a new Installer
func New(opts Options, opener opk.Opener, m Materializer, reporter report.Reporter, logger hclog.Logger) *Installer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if reporter == nil {
		reporter = report.Discard
	}
	return &Installer{opts: opts, opener: opener, menu: m, reporter: reporter, logger: logger}
}

// WithRecorder records every materialized entry in r.
func (in *Installer) WithRecorder(r Recorder) *Installer {
	in.recorder = r
	return in
}

// Install opens the package at path and materializes its accepted documents.
func (in *Installer) Install(path string) Result {
	res := Result{Path: path}

	c, err := in.opener.Open(path)
	if err != nil {
		in.reporter.Report(path + ": Unable to open OPK")
		in.logger.Error("Unable to open package", "path", path, "error", err)
		res.Err = err
		return res
	}
	defer func() {
		if err := c.Close(); err != nil {
			in.logger.Debug("Failed to close package", "path", path, "error", err)
		}
	}()

	for {
		doc := c.NextDocument()
		switch doc.State {
		case opk.StateDone:
			return res
		case opk.StateFailed:
			in.abandon(&res, doc.Err)
			return res
		}

		outcome, err := in.installDocument(c, path, doc.Value)
		if err != nil {
			in.abandon(&res, err)
			return res
		}
		res.Documents = append(res.Documents, outcome)
	}
}

func (in *Installer) installDocument(c opk.Container, path, docName string) (Document, error) {
	name := ParseDocumentName(docName)
	outcome := Document{Name: name}

	accepted := Accepts(in.opts.AnyPlatform, name.Platform, in.opts.Platform)
	if accepted {
		in.reporter.Report(fmt.Sprintf(" + %s: OK", name))
		in.logger.Debug("Accepted document", "package", path, "document", docName)
	} else {
		in.reporter.Report(fmt.Sprintf(" - %s: Unsupported platform", name))
		in.logger.Warn("Unsupported platform", "package", path, "document", docName, "platform", name.Platform)
		outcome.Err = fmt.Errorf("%w '%s'", opk.ErrUnsupportedPlatform, name.Platform)
	}

	// Rejected documents are still drained: the stream cannot skip them.
	draft := &menu.Draft{}
	for {
		pair := c.NextPair()
		if pair.State == opk.StateFailed {
			return outcome, pair.Err
		}
		if pair.State == opk.StateDone {
			break
		}
		if accepted && !Interpret(draft, pair.Value, path) {
			in.logger.Trace("Ignoring unknown key", "document", docName, "key", pair.Value.Key)
		}
	}

	if !accepted {
		return outcome, nil
	}

	target := menu.Target{PackagePath: path, DocumentBase: name.Base, Platform: name.Platform}
	link, err := in.menu.Materialize(draft, target)
	if err != nil {
		in.reporter.Report(fmt.Sprintf("%s: Unable to save %s", path, name))
		in.logger.Error("Unable to save link", "package", path, "document", docName, "error", err)
		outcome.Err = err
		return outcome, nil
	}
	outcome.Link = link.Path
	in.record(draft, target, link)

	return outcome, nil
}

func (in *Installer) record(d *menu.Draft, t menu.Target, link *menu.Link) {
	if in.recorder == nil {
		return
	}
	rec := index.Record{
		Link:     link.Path,
		Package:  t.PackagePath,
		Document: t.DocumentBase,
		Platform: t.Platform,
		Section:  d.SectionName(),
		Title:    link.Title,
	}
	if err := in.recorder.Put(rec); err != nil {
		in.logger.Warn("Failed to record link in index", "link", link.Path, "error", err)
	}
}

func (in *Installer) abandon(res *Result, err error) {
	in.reporter.Report(res.Path + ": Error loading meta-data")
	in.logger.Error("Error loading meta-data", "path", res.Path, "error", err)
	res.Err = err
}
