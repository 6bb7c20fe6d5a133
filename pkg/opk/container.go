package opk

import (
	"errors"
	"fmt"
)

// MetadataSuffix is the file suffix of metadata documents inside a container.
const MetadataSuffix = ".desktop"

// Container is a read-once handle over one package file. Documents are
// visited in container order; the pairs of the current document must be
// pulled with NextPair before the next document is requested.
type Container interface {
	// Path returns the filesystem path the container was opened from.
	Path() string

	// NextDocument advances to the next metadata document and returns its name.
	NextDocument() Result[string]

	// NextPair returns the next key/value pair of the current document.
	NextPair() Result[Pair]

	// Close releases the handle. It is safe to call more than once.
	Close() error
}

// Opener opens package containers by path.
type Opener interface {
	Open(path string) (Container, error)
}

func corrupt(err error) error {
	if err == nil {
		err = errors.New("unknown read failure")
	}
	if errors.Is(err, ErrCorruptMetadata) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCorruptMetadata, err)
}
