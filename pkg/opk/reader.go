// Package opk reads application packages: it opens a package container and
// streams its metadata documents and their key/value pairs.
package opk

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/provide-io/opkscan/pkg/opk/layer"
)

// SquashfsMagic starts every squashfs image (little endian "hsqs").
var SquashfsMagic = []byte("hsqs")

// Reader opens package containers from a filesystem
type Reader struct {
	fs     afero.Fs
	logger hclog.Logger
}

// NewReader creates a new package reader
func NewReader(fsys afero.Fs) *Reader {
	return NewReaderWithLogger(fsys, hclog.NewNullLogger())
}

// NewReaderWithLogger creates a new package reader with a custom logger
func NewReaderWithLogger(fsys afero.Fs, logger hclog.Logger) *Reader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Reader{fs: fsys, logger: logger}
}

// Open opens the package at path and detects its container format. Every
// failure is wrapped in ErrUnopenablePackage.
func (r *Reader) Open(path string) (Container, error) {
	c, err := r.open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnopenablePackage, path, err)
	}
	return c, nil
}

func (r *Reader) open(path string) (Container, error) {
	file, err := r.fs.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, errors.New("is a directory")
	}

	head := make([]byte, layer.MagicSize)
	n, err := file.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, err
	}
	head = head[:n]
	if n == 0 {
		file.Close()
		return nil, fmt.Errorf("%w: empty file", ErrUnknownFormat)
	}

	if bytes.HasPrefix(head, SquashfsMagic) {
		r.logger.Debug("Detected squashfs container", "path", path, "size", info.Size())
		c, err := openSquashfs(path, file)
		if err != nil {
			file.Close()
			return nil, err
		}
		return c, nil
	}

	var (
		stream  io.Reader = file
		decoder io.ReadCloser
	)
	if l := layer.Detect(head); l != nil {
		r.logger.Debug("Detected compressed container", "path", path, "layer", l.Name())
		decoder, err = l.Reverse(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		stream = decoder
	}

	c, err := openTar(path, file, decoder, stream)
	if err != nil {
		if decoder != nil {
			decoder.Close()
		}
		file.Close()
		return nil, err
	}
	r.logger.Debug("Detected tar container", "path", path, "size", info.Size())
	return c, nil
}
