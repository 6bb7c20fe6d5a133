package index

import (
	"path/filepath"

	"github.com/disiqueira/gotree/v3"
)

// RenderTree draws records grouped by section, in the order given.
func RenderTree(rootLabel string, records []Record) string {
	tree := gotree.New(rootLabel)
	sections := make(map[string]gotree.Tree)

	for _, r := range records {
		section := sections[r.Section]
		if section == nil {
			section = tree.Add(r.Section)
			sections[r.Section] = section
		}

		label := filepath.Base(r.Link)
		if r.Title != "" {
			label = r.Title + " (" + label + ")"
		}
		section.Add(label)
	}

	return tree.Print()
}
