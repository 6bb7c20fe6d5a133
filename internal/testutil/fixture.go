package testutil

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/provide-io/opkscan/pkg/opk/layer"
)

// File is one entry written into a tar container.
type File struct {
	Name    string
	Content string
	Dir     bool
}

// Desktop renders a desktop-entry document from alternating key/value strings.
func Desktop(kv ...string) string {
	if len(kv)%2 != 0 {
		panic("testutil.Desktop: odd number of key/value arguments")
	}
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	for i := 0; i < len(kv); i += 2 {
		fmt.Fprintf(&b, "%s=%s\n", kv[i], kv[i+1])
	}
	return b.String()
}

// Tar builds an uncompressed tar container holding files in order.
func Tar(t testing.TB, files ...File) []byte {
	t.Helper()
	var buf bytes.Buffer
	writeTar(t, &buf, files)
	return buf.Bytes()
}

// CompressedTar builds a tar container wrapped in the given layer.
func CompressedTar(t testing.TB, id uint8, files ...File) []byte {
	t.Helper()
	l, err := layer.Get(id)
	if err != nil {
		t.Fatalf("layer: %v", err)
	}

	var buf bytes.Buffer
	w, err := l.Apply(&buf)
	if err != nil {
		t.Fatalf("apply %s: %v", l.Name(), err)
	}
	writeTar(t, w, files)
	if err := w.Close(); err != nil {
		t.Fatalf("close %s: %v", l.Name(), err)
	}
	return buf.Bytes()
}

// WritePackage stores a tar container at path on fsys.
func WritePackage(t testing.TB, fsys afero.Fs, path string, files ...File) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, Tar(t, files...), 0o644); err != nil {
		t.Fatalf("write package %s: %v", path, err)
	}
}

func writeTar(t testing.TB, w io.Writer, files []File) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, f := range files {
		hdr := &tar.Header{Name: f.Name, Mode: 0o644, Size: int64(len(f.Content)), Typeflag: tar.TypeReg}
		if f.Dir {
			hdr = &tar.Header{Name: f.Name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", f.Name, err)
		}
		if !f.Dir {
			if _, err := tw.Write([]byte(f.Content)); err != nil {
				t.Fatalf("tar data %s: %v", f.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
}
