package opk

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/CalebQ42/squashfs"
)

// squashfsContainer reads metadata documents from the root directory of a
// squashfs image, the layout used by published packages.
type squashfsContainer struct {
	path    string
	file    io.Closer
	fsys    fs.FS
	names   []string
	listed  bool
	next    int
	current fs.File
	pairs   *pairStream
	closed  bool
}

type readerAtCloser interface {
	io.ReaderAt
	io.Closer
}

func openSquashfs(p string, file readerAtCloser) (*squashfsContainer, error) {
	rdr, err := squashfs.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: squashfs: %w", ErrUnknownFormat, err)
	}
	return &squashfsContainer{path: p, file: file, fsys: rdr}, nil
}

func (c *squashfsContainer) Path() string {
	return c.path
}

func (c *squashfsContainer) NextDocument() Result[string] {
	c.releaseCurrent()
	if c.closed {
		return Done[string]()
	}

	if !c.listed {
		entries, err := fs.ReadDir(c.fsys, ".")
		if err != nil {
			return Failed[string](fmt.Errorf("%s: listing metadata: %w", c.path, err))
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), MetadataSuffix) {
				c.names = append(c.names, entry.Name())
			}
		}
		c.listed = true
	}

	if c.next >= len(c.names) {
		return Done[string]()
	}
	name := c.names[c.next]
	c.next++

	f, err := c.fsys.Open(name)
	if err != nil {
		return Failed[string](fmt.Errorf("%s: %w", c.path, err))
	}
	c.current = f
	c.pairs = newPairStream(name, f)
	return Item(name)
}

func (c *squashfsContainer) NextPair() Result[Pair] {
	if c.pairs == nil {
		return Failed[Pair](ErrNoDocument)
	}
	return c.pairs.next()
}

func (c *squashfsContainer) releaseCurrent() {
	if c.current != nil {
		c.current.Close()
		c.current = nil
	}
	c.pairs = nil
}

func (c *squashfsContainer) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.releaseCurrent()
	return c.file.Close()
}
