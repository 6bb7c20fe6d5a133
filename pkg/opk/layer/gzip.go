package layer

import (
	"compress/gzip"
	"fmt"
	"io"
)

func init() {
	// Register GZIP layer on package init
	Register(NewGzipLayer())
}

// GzipLayer implements GZIP compression
type GzipLayer struct {
	BaseLayer
}

// NewGzipLayer creates a new GZIP layer
func NewGzipLayer() *GzipLayer {
	return &GzipLayer{
		BaseLayer: BaseLayer{
			LayerID:    OP_GZIP,
			LayerName:  GetName(OP_GZIP),
			LayerMagic: []byte{0x1f, 0x8b},
		},
	}
}

// Apply compresses everything written to the returned writer
func (l *GzipLayer) Apply(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

// Reverse decompresses a GZIP stream
func (l *GzipLayer) Reverse(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return gr, nil
}
