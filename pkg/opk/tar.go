package opk

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// tarContainer streams metadata documents out of a (possibly compressed)
// tar archive. Documents are the regular files at the archive root.
type tarContainer struct {
	path    string
	file    io.Closer
	decoder io.Closer
	tr      *tar.Reader
	pending *tar.Header
	pairs   *pairStream
	closed  bool
}

func openTar(p string, file, decoder io.Closer, stream io.Reader) (*tarContainer, error) {
	c := &tarContainer{path: p, file: file, decoder: decoder, tr: tar.NewReader(stream)}

	// Reading the first header up front rejects files that are not tar
	// archives at open time instead of on the first document.
	hdr, err := c.tr.Next()
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	default:
		c.pending = hdr
	}
	return c, nil
}

func (c *tarContainer) Path() string {
	return c.path
}

func (c *tarContainer) NextDocument() Result[string] {
	c.pairs = nil
	if c.closed {
		return Done[string]()
	}

	for {
		hdr := c.pending
		c.pending = nil
		if hdr == nil {
			var err error
			hdr, err = c.tr.Next()
			if errors.Is(err, io.EOF) {
				return Done[string]()
			}
			if err != nil {
				return Failed[string](fmt.Errorf("%s: %w", c.path, err))
			}
		}

		name, ok := metadataName(hdr)
		if !ok {
			continue
		}
		c.pairs = newPairStream(name, c.tr)
		return Item(name)
	}
}

func (c *tarContainer) NextPair() Result[Pair] {
	if c.pairs == nil {
		return Failed[Pair](ErrNoDocument)
	}
	return c.pairs.next()
}

func (c *tarContainer) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.pairs = nil

	var errs []error
	if c.decoder != nil {
		errs = append(errs, c.decoder.Close())
	}
	errs = append(errs, c.file.Close())
	return errors.Join(errs...)
}

func metadataName(hdr *tar.Header) (string, bool) {
	if hdr.Typeflag != tar.TypeReg {
		return "", false
	}
	name := path.Clean(strings.TrimPrefix(hdr.Name, "/"))
	if strings.Contains(name, "/") || !strings.HasSuffix(name, MetadataSuffix) {
		return "", false
	}
	return name, true
}
