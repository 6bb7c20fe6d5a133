// Package layer implements the decompression layers that may wrap a tar
// package container.
package layer

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// Layer constants keep the operation IDs used by the bundle format
const (
	// No layer - raw tar stream
	OP_NONE = 0x00

	// Compression layers (0x10-0x2F)
	OP_GZIP  = 0x10 // GZIP compression
	OP_BZIP2 = 0x13 // BZIP2 compression
)

// Layer is a reversible byte-stream transformation recognized by its magic bytes.
type Layer interface {
	// ID returns the layer identifier (e.g., OP_GZIP)
	ID() uint8

	// Name returns the human-readable name
	Name() string

	// Magic returns the leading bytes that identify this layer
	Magic() []byte

	// Apply wraps w so that written data is encoded by this layer
	Apply(w io.Writer) (io.WriteCloser, error)

	// Reverse wraps r so that reads return decoded data
	Reverse(r io.Reader) (io.ReadCloser, error)
}

// BaseLayer provides common functionality for layers
type BaseLayer struct {
	LayerID    uint8
	LayerName  string
	LayerMagic []byte
}

func (l *BaseLayer) ID() uint8 {
	return l.LayerID
}

func (l *BaseLayer) Name() string {
	return l.LayerName
}

func (l *BaseLayer) Magic() []byte {
	return l.LayerMagic
}

// MagicSize is the number of leading bytes needed to detect any layer.
const MagicSize = 4

// Registry maps layer IDs to implementations
var Registry = make(map[uint8]Layer)

// Register registers a layer implementation
func Register(l Layer) {
	Registry[l.ID()] = l
}

// Get retrieves a layer by ID
func Get(id uint8) (Layer, error) {
	l, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown layer: %s", GetName(id))
	}
	return l, nil
}

// Detect returns the registered layer whose magic prefixes head, or nil when
// the data is not compressed by any known layer.
func Detect(head []byte) Layer {
	ids := make([]int, 0, len(Registry))
	for id := range Registry {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	for _, id := range ids {
		l := Registry[uint8(id)]
		if magic := l.Magic(); len(magic) > 0 && bytes.HasPrefix(head, magic) {
			return l
		}
	}
	return nil
}

// GetName returns the name of a layer by ID
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_GZIP:
		return "GZIP"
	case OP_BZIP2:
		return "BZIP2"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}
