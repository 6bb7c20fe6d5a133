// Package menu materializes launch entries into the section tree of the
// menu home directory.
package menu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

const (
	// SectionsDir holds one directory per section below the home path.
	SectionsDir = "sections"

	// DirPerms and FilePerms are the default modes of sections and link files.
	DirPerms  os.FileMode = 0o755
	FilePerms os.FileMode = 0o644

	workInProgressSuffix = ".wip"
)

// Target identifies the link a document materializes into.
type Target struct {
	PackagePath  string
	DocumentBase string
	Platform     string
}

// Menu owns the sections tree below a home path.
type Menu struct {
	fs       afero.Fs
	home     string
	sections []string
	known    map[string]bool
	dirMode  os.FileMode
	fileMode os.FileMode
	logger   hclog.Logger
}

// New creates a Menu rooted at home and registers the sections already
// present on disk.
func New(fsys afero.Fs, home string, logger hclog.Logger) *Menu {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	m := &Menu{
		fs:       fsys,
		home:     home,
		known:    make(map[string]bool),
		dirMode:  DirPerms,
		fileMode: FilePerms,
		logger:   logger,
	}

	infos, err := afero.ReadDir(fsys, m.sectionsRoot())
	if err != nil {
		logger.Debug("No existing sections", "dir", m.sectionsRoot(), "error", err)
	}
	for _, info := range infos {
		if info.IsDir() {
			m.register(info.Name())
		}
	}
	return m
}

// WithModes sets the modes of created sections and written links. Zero
// keeps the default.
func (m *Menu) WithModes(dir, file os.FileMode) *Menu {
	if dir != 0 {
		m.dirMode = dir
	}
	if file != 0 {
		m.fileMode = file
	}
	return m
}

// Sections returns the known section names in registration order.
func (m *Menu) Sections() []string {
	return append([]string(nil), m.sections...)
}

// AddSection creates the section directory if needed. Adding an existing
// section is a no-op.
func (m *Menu) AddSection(name string) error {
	if m.known[name] {
		return nil
	}
	if err := m.fs.MkdirAll(m.SectionPath(name), m.dirMode); err != nil {
		return fmt.Errorf("creating section %s: %w", name, err)
	}
	m.register(name)
	m.logger.Debug("Added section", "section", name)
	return nil
}

func (m *Menu) register(name string) {
	if !m.known[name] {
		m.known[name] = true
		m.sections = append(m.sections, name)
	}
}

func (m *Menu) sectionsRoot() string {
	return filepath.Join(m.home, SectionsDir)
}

// SectionPath returns the directory of a section.
func (m *Menu) SectionPath(name string) string {
	return filepath.Join(m.sectionsRoot(), name)
}

// LinkPath returns <home>/sections/<section>/<package>.<document>.<platform>.lnk.
// The platform segment is left out when the document name carried none.
func (m *Menu) LinkPath(section string, t Target) string {
	name := PackageBaseName(t.PackagePath) + "." + t.DocumentBase
	if t.Platform != "" {
		name += "." + t.Platform
	}
	return filepath.Join(m.SectionPath(section), name+LinkSuffix)
}

// PackageBaseName strips the directory and extension from a package path.
func PackageBaseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// LoadLink reads the link at path. A missing file yields an empty link.
func (m *Menu) LoadLink(path string) (*Link, error) {
	data, err := afero.ReadFile(m.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Link{Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading link %s: %w", path, err)
	}
	return ParseLink(path, data)
}

// SaveLink writes the link next to its target and renames it into place, so
// readers see either the old or the new entry.
func (m *Menu) SaveLink(link *Link) error {
	tempPath := link.Path + workInProgressSuffix
	if err := afero.WriteFile(m.fs, tempPath, link.Marshal(), m.fileMode); err != nil {
		m.fs.Remove(tempPath)
		return fmt.Errorf("writing link %s: %w", link.Path, err)
	}
	if err := m.fs.Rename(tempPath, link.Path); err != nil {
		m.fs.Remove(tempPath)
		return fmt.Errorf("replacing link %s: %w", link.Path, err)
	}
	return nil
}

// Materialize persists the draft as the link of target and returns it.
func (m *Menu) Materialize(d *Draft, t Target) (*Link, error) {
	section := d.SectionName()
	if err := m.AddSection(section); err != nil {
		return nil, err
	}

	link, err := m.LoadLink(m.LinkPath(section, t))
	if err != nil {
		return nil, err
	}
	d.ApplyTo(link, t.PackagePath, m.home)

	if err := m.SaveLink(link); err != nil {
		return nil, err
	}
	m.logger.Debug("Saved link", "path", link.Path, "section", section)
	return link, nil
}
