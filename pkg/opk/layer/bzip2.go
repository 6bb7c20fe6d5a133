package layer

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

func init() {
	Register(NewBzip2Layer())
}

// Bzip2Layer implements BZIP2 compression
type Bzip2Layer struct {
	BaseLayer
}

// NewBzip2Layer creates a new BZIP2 layer
func NewBzip2Layer() *Bzip2Layer {
	return &Bzip2Layer{
		BaseLayer: BaseLayer{
			LayerID:    OP_BZIP2,
			LayerName:  GetName(OP_BZIP2),
			LayerMagic: []byte("BZh"),
		},
	}
}

// Apply compresses everything written to the returned writer
func (l *Bzip2Layer) Apply(w io.Writer) (io.WriteCloser, error) {
	bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: 9})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	return bw, nil
}

// Reverse decompresses a BZIP2 stream
func (l *Bzip2Layer) Reverse(r io.Reader) (io.ReadCloser, error) {
	br, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 reader: %w", err)
	}
	return br, nil
}
