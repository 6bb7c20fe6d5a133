package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/provide-io/opkscan/internal/install"
	"github.com/provide-io/opkscan/pkg/opk"
)

// appFs is the filesystem every command works on.
var appFs afero.Fs = afero.NewOsFs()

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info PACKAGE",
		Short: "Show the metadata documents of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			reader := opk.NewReaderWithLogger(appFs, newLogger(cfg).Named("reader"))
			return describePackage(cmd.OutOrStdout(), reader, args[0], cfg.Platform)
		},
	}
}

// describePackage prints every document with its acceptance on platform,
// followed by its pairs.
func describePackage(w io.Writer, opener opk.Opener, path, platform string) error {
	c, err := opener.Open(path)
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Fprintf(w, "%s\n", path)
	for {
		doc := c.NextDocument()
		if doc.State == opk.StateDone {
			return nil
		}
		if doc.State == opk.StateFailed {
			return doc.Err
		}

		name := install.ParseDocumentName(doc.Value)
		verdict := "accepted"
		if !install.Accepts(false, name.Platform, platform) {
			verdict = "unsupported platform"
		}
		fmt.Fprintf(w, "  %s (platform %q, %s)\n", doc.Value, name.Platform, verdict)

		for {
			pair := c.NextPair()
			if pair.State == opk.StateFailed {
				return pair.Err
			}
			if pair.State == opk.StateDone {
				break
			}
			fmt.Fprintf(w, "    %s=%s\n", pair.Value.Key, pair.Value.Value)
		}
	}
}
