// Package scanner lists storage directories and discovers the roots that are
// searched for packages. Listings never recurse and never fail: a directory
// that cannot be read yields nothing.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/provide-io/opkscan/pkg/opk"
)

// Scanner lists directories on a filesystem
type Scanner struct {
	fs     afero.Fs
	logger hclog.Logger
}

// New creates a new Scanner
func New(fsys afero.Fs, logger hclog.Logger) *Scanner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scanner{fs: fsys, logger: logger}
}

// Dirs returns the immediate subdirectories of dir in name order.
func (s *Scanner) Dirs(dir string) []string {
	var dirs []string
	for _, entry := range s.list(dir) {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}
	return dirs
}

// Files returns the regular files directly inside dir whose name ends with
// suffix, compared case-insensitively, in name order.
func (s *Scanner) Files(dir, suffix string) []string {
	suffix = strings.ToLower(suffix)

	var files []string
	for _, entry := range s.list(dir) {
		if !entry.Mode().IsRegular() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files
}

// list reads dir, resolving symlinks and dropping hidden entries.
func (s *Scanner) list(dir string) []os.FileInfo {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		s.logger.Debug("Skipping directory", "error", fmt.Errorf("%w %s: %w", opk.ErrUnreadableDirectory, dir, err))
		return nil
	}

	entries := make([]os.FileInfo, 0, len(infos))
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), ".") {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := s.fs.Stat(filepath.Join(dir, info.Name()))
			if err != nil {
				s.logger.Debug("Skipping dangling symlink", "dir", dir, "name", info.Name(), "error", err)
				continue
			}
			info = renamed{FileInfo: target, name: info.Name()}
		}
		entries = append(entries, info)
	}
	return entries
}

// renamed keeps the link name for a resolved symlink target.
type renamed struct {
	os.FileInfo
	name string
}

func (r renamed) Name() string {
	return r.name
}
