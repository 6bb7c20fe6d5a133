package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/provide-io/opkscan/internal/index"
	"github.com/provide-io/opkscan/internal/menu"
)

var errIndexDisabled = errors.New("the install index is disabled (index_path is empty)")

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [LINK]",
		Short: "Show the installed menu entries, or the origin of LINK",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.IndexPath == "" {
				return errIndexDisabled
			}
			if ok, _ := afero.Exists(appFs, cfg.IndexPath); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No packages installed yet")
				return nil
			}

			ix, err := index.Open(cfg.IndexPath)
			if err != nil {
				return err
			}
			defer ix.Close()

			if len(args) == 1 {
				return describeLink(cmd.OutOrStdout(), ix, args[0])
			}

			records, err := ix.All()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), index.RenderTree(menu.SectionsDir, records))
			return nil
		},
	}
}

// describeLink prints where the entry at link was installed from.
func describeLink(w io.Writer, ix *index.Index, link string) error {
	rec, err := ix.Get(link)
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintf(w, "%s: not installed by opkscan\n", link)
		return nil
	}
	fmt.Fprintf(w, "%s\n  package:  %s\n  document: %s\n  platform: %s\n  section:  %s\n",
		rec.Link, rec.Package, rec.Document, rec.Platform, rec.Section)
	if rec.Title != "" {
		fmt.Fprintf(w, "  title:    %s\n", rec.Title)
	}
	return nil
}
