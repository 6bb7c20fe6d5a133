package scan

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/provide-io/opkscan/internal/report"
	"github.com/provide-io/opkscan/internal/testutil"
)

func testOptions() Options {
	return Options{
		PrimaryRoot:   "/home/retrofw",
		HomePath:      "/home/retrofw",
		MediaRoot:     "/media",
		Platform:      "gcw0",
		PackageSuffix: ".opk",
		Sync:          true,
	}
}

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Name: "test", Level: hclog.Off})
}

// populate lays out a primary root with two app directories next to an
// existing sections tree, and one media card holding an unopenable package.
func populate(t *testing.T, fsys afero.Fs) {
	t.Helper()
	if err := fsys.MkdirAll("/home/retrofw/sections/applications", 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.WritePackage(t, fsys, "/home/retrofw/apps/alpha.opk",
		testutil.File{Name: "alpha.gcw0.desktop", Content: testutil.Desktop("Name", "Alpha", "Exec", "alpha %f", "Categories", "games;")},
	)
	testutil.WritePackage(t, fsys, "/home/retrofw/emus/beta.OPK",
		testutil.File{Name: "beta.all.desktop", Content: testutil.Desktop("Name", "Beta", "Icon", "beta")},
		testutil.File{Name: "beta.retrofw.desktop", Content: testutil.Desktop("Name", "Beta RFW")},
	)
	if err := afero.WriteFile(fsys, "/home/retrofw/emus/readme.txt", []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/media/sd/apps/broken.opk", []byte("garbage!"), 0o644); err != nil {
		t.Fatal(err)
	}
	testutil.WritePackage(t, fsys, "/media/sd/games/gamma.opk",
		testutil.File{Name: "gamma.gcw0.desktop", Content: testutil.Desktop("Name", "Gamma")},
	)
}

func TestFullScan(t *testing.T) {
	fsys := afero.NewMemMapFs()
	populate(t, fsys)

	rec := &report.Recorder{}
	o := New(fsys, testOptions(), rec, nil, testLogger())
	synced := 0
	o.sync = func() error { synced++; return nil }

	summary, err := o.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		"Scanning /home/retrofw/apps",
		"Installing /home/retrofw/apps/alpha.opk",
		" + alpha.gcw0: OK",
		"Scanning /home/retrofw/emus",
		"Installing /home/retrofw/emus/beta.OPK",
		" + beta.all: OK",
		" - beta.retrofw: Unsupported platform",
		"Scanning /home/retrofw/sections",
		"Scanning /media/sd/apps",
		"Installing /media/sd/apps/broken.opk",
		"/media/sd/apps/broken.opk: Unable to open OPK",
		"Scanning /media/sd/games",
		"Installing /media/sd/games/gamma.opk",
		" + gamma.gcw0: OK",
		LineSeparator,
		LineDone,
	}
	if !reflect.DeepEqual(rec.Lines, want) {
		t.Errorf("lines:\n got %q\nwant %q", rec.Lines, want)
	}

	wantSummary := Summary{Roots: 5, Packages: 4, Failed: 1, Installed: 3, Rejected: 1}
	if summary != wantSummary {
		t.Errorf("summary = %+v, want %+v", summary, wantSummary)
	}
	if synced != 1 {
		t.Errorf("sync called %d times", synced)
	}

	link, err := afero.ReadFile(fsys, "/home/retrofw/sections/games/alpha.alpha.gcw0.lnk")
	if err != nil {
		t.Fatalf("alpha link: %v", err)
	}
	wantLink := "title=Alpha\nexec=/home/retrofw/apps/alpha.opk\nparams=alpha %f\nselectordir=/home/retrofw\n"
	if string(link) != wantLink {
		t.Errorf("alpha link =\n%s\nwant\n%s", link, wantLink)
	}
}

func TestFullScanIsIdempotent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	populate(t, fsys)

	links := []string{
		"/home/retrofw/sections/games/alpha.alpha.gcw0.lnk",
		"/home/retrofw/sections/applications/beta.beta.all.lnk",
		"/home/retrofw/sections/applications/gamma.gamma.gcw0.lnk",
	}

	run := func() ([]string, map[string]string) {
		rec := &report.Recorder{}
		o := New(fsys, testOptions(), rec, nil, testLogger())
		o.sync = func() error { return nil }
		if _, err := o.Run(context.Background(), ""); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		contents := make(map[string]string)
		for _, p := range links {
			data, err := afero.ReadFile(fsys, p)
			if err != nil {
				t.Fatalf("read %s: %v", p, err)
			}
			contents[p] = string(data)
		}
		return rec.Lines, contents
	}

	firstLines, firstLinks := run()
	secondLines, secondLinks := run()

	if !reflect.DeepEqual(firstLines, secondLines) {
		t.Errorf("diagnostic log changed:\n%q\n%q", firstLines, secondLines)
	}
	if !reflect.DeepEqual(firstLinks, secondLinks) {
		t.Errorf("links changed:\n%v\n%v", firstLinks, secondLinks)
	}
}

func TestSinglePackage(t *testing.T) {
	fsys := afero.NewMemMapFs()
	populate(t, fsys)

	rec := &report.Recorder{}
	opts := testOptions()
	opts.Sync = false
	o := New(fsys, opts, rec, nil, testLogger())
	o.sync = func() error { t.Error("sync called with Sync disabled"); return nil }

	summary, err := o.Run(context.Background(), "/media/sd/games/gamma.opk")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"Installing gamma.opk", " + gamma.gcw0: OK", LineSeparator, LineDone}
	if !reflect.DeepEqual(rec.Lines, want) {
		t.Errorf("lines = %q, want %q", rec.Lines, want)
	}
	if summary.Roots != 0 || summary.Installed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if ok, _ := afero.Exists(fsys, "/home/retrofw/sections/games/alpha.alpha.gcw0.lnk"); ok {
		t.Error("single-package mode scanned other packages")
	}
}

func TestSeparateHomeIsScanned(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testutil.WritePackage(t, fsys, "/mnt/home/extra/delta.opk",
		testutil.File{Name: "delta.all.desktop", Content: testutil.Desktop("Name", "Delta")},
	)

	rec := &report.Recorder{}
	opts := testOptions()
	opts.HomePath = "/mnt/home"
	o := New(fsys, opts, rec, nil, testLogger())
	o.sync = func() error { return nil }

	if _, err := o.Run(context.Background(), ""); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ok, _ := afero.Exists(fsys, "/mnt/home/sections/applications/delta.delta.all.lnk"); !ok {
		t.Errorf("link not written below the home path; lines = %q", rec.Lines)
	}
}

func TestRunCanceled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	populate(t, fsys)

	ctx, cancel := context.WithCancel(context.Background())
	installs := 0
	rec := report.Func(func(line string) {
		if strings.HasPrefix(line, "Installing ") {
			installs++
			cancel()
		}
	})

	o := New(fsys, testOptions(), rec, nil, testLogger())
	o.sync = func() error { t.Error("sync called after cancellation"); return nil }

	_, err := o.Run(ctx, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if installs != 1 {
		t.Errorf("installed %d packages after cancellation, want 1", installs)
	}
}
