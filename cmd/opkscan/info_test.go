package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/provide-io/opkscan/internal/testutil"
	"github.com/provide-io/opkscan/pkg/opk"
)

func TestDescribePackage(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WritePackage(t, fsys, "/apps/game.opk",
		testutil.File{Name: "game.gcw0.desktop", Content: testutil.Desktop("Name", "Game", "Categories", "games")},
		testutil.File{Name: "game.retrofw.desktop", Content: testutil.Desktop("Name", "Game RFW")},
	)

	var out bytes.Buffer
	if err := describePackage(&out, opk.NewReader(fsys), "/apps/game.opk", "gcw0"); err != nil {
		t.Fatalf("describePackage failed: %v", err)
	}

	want := `/apps/game.opk
  game.gcw0.desktop (platform "gcw0", accepted)
    Name=Game
    Categories=games
  game.retrofw.desktop (platform "retrofw", unsupported platform)
    Name=Game RFW
`
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestDescribeUnopenablePackage(t *testing.T) {
	var out bytes.Buffer
	err := describePackage(&out, opk.NewReader(afero.NewMemMapFs()), "/missing.opk", "gcw0")
	if !errors.Is(err, opk.ErrUnopenablePackage) {
		t.Errorf("err = %v, want ErrUnopenablePackage", err)
	}
}
