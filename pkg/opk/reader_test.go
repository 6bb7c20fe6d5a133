package opk

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/provide-io/opkscan/internal/testutil"
	"github.com/provide-io/opkscan/pkg/opk/layer"
)

type document struct {
	name  string
	pairs []Pair
}

func readAll(t *testing.T, c Container) ([]document, error) {
	t.Helper()
	var docs []document
	for {
		res := c.NextDocument()
		switch res.State {
		case StateDone:
			return docs, nil
		case StateFailed:
			return docs, res.Err
		}
		doc := document{name: res.Value}
		for {
			pair := c.NextPair()
			if pair.State == StateFailed {
				docs = append(docs, doc)
				return docs, pair.Err
			}
			if pair.State == StateDone {
				break
			}
			doc.pairs = append(doc.pairs, pair.Value)
		}
		docs = append(docs, doc)
	}
}

func newTestReader() *Reader {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "reader_test",
		Level: hclog.Trace,
	})
	return NewReaderWithLogger(afero.NewMemMapFs(), logger)
}

var sampleFiles = []testutil.File{
	{Name: "game.gcw0.desktop", Content: testutil.Desktop("Name", "Game", "Exec", "game %f")},
	{Name: "game", Content: "\x7fELF"},
	{Name: "icons", Dir: true},
	{Name: "icons/game.desktop", Content: testutil.Desktop("Name", "Nested")},
	{Name: "./game.all.desktop", Content: testutil.Desktop("Name", "Any")},
}

// squashfsFixture holds sampleFiles as a squashfs image; squashfs lists
// directories in name order.
const squashfsFixture = "testdata/game.opk"

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(squashfsFixture)
	if err != nil {
		t.Fatalf("reading %s: %v", squashfsFixture, err)
	}
	return data
}

func TestReaderFormats(t *testing.T) {
	tarOrder := []string{"game.gcw0.desktop", "game.all.desktop"}

	testCases := []struct {
		name  string
		data  func(t *testing.T) []byte
		order []string
	}{
		{name: "tar", data: func(t *testing.T) []byte { return testutil.Tar(t, sampleFiles...) }, order: tarOrder},
		{name: "tar.gz", data: func(t *testing.T) []byte { return testutil.CompressedTar(t, layer.OP_GZIP, sampleFiles...) }, order: tarOrder},
		{name: "tar.bz2", data: func(t *testing.T) []byte { return testutil.CompressedTar(t, layer.OP_BZIP2, sampleFiles...) }, order: tarOrder},
		{name: "squashfs", data: readFixture, order: []string{"game.all.desktop", "game.gcw0.desktop"}},
	}

	wantPairs := map[string][]Pair{
		"game.gcw0.desktop": {{"Name", "Game"}, {"Exec", "game %f"}},
		"game.all.desktop":  {{"Name", "Any"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestReader()
			if err := afero.WriteFile(r.fs, "/card/apps/game.opk", tc.data(t), 0o644); err != nil {
				t.Fatal(err)
			}

			c, err := r.Open("/card/apps/game.opk")
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer c.Close()

			if c.Path() != "/card/apps/game.opk" {
				t.Errorf("Path() = %q", c.Path())
			}

			docs, err := readAll(t, c)
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			var names []string
			for _, doc := range docs {
				names = append(names, doc.name)
				if !reflect.DeepEqual(doc.pairs, wantPairs[doc.name]) {
					t.Errorf("%s pairs = %v, want %v", doc.name, doc.pairs, wantPairs[doc.name])
				}
			}
			if !reflect.DeepEqual(names, tc.order) {
				t.Errorf("documents = %q, want %q", names, tc.order)
			}

			if err := c.Close(); err != nil {
				t.Errorf("Close failed: %v", err)
			}
			if res := c.NextDocument(); res.State != StateDone {
				t.Errorf("NextDocument after Close = %v", res.State)
			}
		})
	}
}

func TestSquashfsSkipsUnreadPairs(t *testing.T) {
	r := newTestReader()
	if err := afero.WriteFile(r.fs, "/p.opk", readFixture(t), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := r.Open("/p.opk")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if pair := c.NextPair(); pair.State != StateFailed || !errors.Is(pair.Err, ErrNoDocument) {
		t.Errorf("NextPair before any document = %v, %v", pair.State, pair.Err)
	}
	if res := c.NextDocument(); res.Value != "game.all.desktop" {
		t.Fatalf("first document = %v", res)
	}
	res := c.NextDocument()
	if res.State != StateItem || res.Value != "game.gcw0.desktop" {
		t.Fatalf("second document = %v", res)
	}
	if pair := c.NextPair(); pair.Value != (Pair{"Name", "Game"}) {
		t.Errorf("pair = %v", pair.Value)
	}
	if res := c.NextDocument(); res.State != StateDone {
		t.Errorf("third document = %v", res)
	}
}

func TestSquashfsBadSuperblock(t *testing.T) {
	r := newTestReader()
	image := readFixture(t)
	// Corrupt the block log so the superblock no longer validates.
	image[22] = 3
	if err := afero.WriteFile(r.fs, "/bad.opk", image, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := r.Open("/bad.opk")
	if !errors.Is(err, ErrUnopenablePackage) || !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnopenablePackage wrapping ErrUnknownFormat", err)
	}
}

func TestReaderSkipsUnreadPairs(t *testing.T) {
	r := newTestReader()
	testutil.WritePackage(t, r.fs, "/p.opk",
		testutil.File{Name: "a.all.desktop", Content: testutil.Desktop("Name", "A", "Icon", "a")},
		testutil.File{Name: "b.all.desktop", Content: testutil.Desktop("Name", "B")},
	)

	c, err := r.Open("/p.opk")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if res := c.NextDocument(); res.Value != "a.all.desktop" {
		t.Fatalf("first document = %v", res)
	}
	res := c.NextDocument()
	if res.State != StateItem || res.Value != "b.all.desktop" {
		t.Fatalf("second document = %v", res)
	}
	if pair := c.NextPair(); pair.Value != (Pair{"Name", "B"}) {
		t.Errorf("pair = %v", pair.Value)
	}
}

func TestReaderUnopenable(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(fs afero.Fs)
	}{
		{name: "missing", setup: func(fs afero.Fs) {}},
		{name: "empty", setup: func(fs afero.Fs) {
			afero.WriteFile(fs, "/bad.opk", nil, 0o644)
		}},
		{name: "directory", setup: func(fs afero.Fs) {
			fs.MkdirAll("/bad.opk", 0o755)
		}},
		{name: "garbage", setup: func(fs afero.Fs) {
			afero.WriteFile(fs, "/bad.opk", []byte(strings.Repeat("not a package ", 80)), 0o644)
		}},
		{name: "truncated gzip", setup: func(fs afero.Fs) {
			afero.WriteFile(fs, "/bad.opk", []byte{0x1f, 0x8b}, 0o644)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestReader()
			tc.setup(r.fs)

			c, err := r.Open("/bad.opk")
			if err == nil {
				c.Close()
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrUnopenablePackage) {
				t.Errorf("error %v does not wrap ErrUnopenablePackage", err)
			}
		})
	}
}

func TestReaderCorruptDocument(t *testing.T) {
	r := newTestReader()
	testutil.WritePackage(t, r.fs, "/p.opk",
		testutil.File{Name: "a.all.desktop", Content: testutil.Desktop("Name", "A")},
		testutil.File{Name: "b.all.desktop", Content: "[Desktop Entry]\nName=B\nnot a pair\n"},
		testutil.File{Name: "c.all.desktop", Content: testutil.Desktop("Name", "C")},
	)

	c, err := r.Open("/p.opk")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	docs, err := readAll(t, c)
	if !errors.Is(err, ErrCorruptMetadata) {
		t.Fatalf("error = %v, want ErrCorruptMetadata", err)
	}
	if len(docs) != 2 || docs[1].name != "b.all.desktop" {
		t.Errorf("documents = %v", docs)
	}
}

func TestEmptyTarHasNoDocuments(t *testing.T) {
	r := newTestReader()
	testutil.WritePackage(t, r.fs, "/empty.opk")

	c, err := r.Open("/empty.opk")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if res := c.NextDocument(); res.State != StateDone {
		t.Errorf("NextDocument = %s, want done", res.State)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if res := c.NextDocument(); res.State != StateDone {
		t.Errorf("NextDocument after close = %s, want done", res.State)
	}
}

func TestNextPairWithoutDocument(t *testing.T) {
	r := newTestReader()
	testutil.WritePackage(t, r.fs, "/p.opk", testutil.File{Name: "a.all.desktop", Content: testutil.Desktop()})

	c, err := r.Open("/p.opk")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	res := c.NextPair()
	if res.State != StateFailed || !errors.Is(res.Err, ErrNoDocument) {
		t.Errorf("NextPair = %v, want failure wrapping ErrNoDocument", res)
	}
}
