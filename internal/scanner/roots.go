package scanner

// Roots names the storage locations searched for packages.
type Roots struct {
	// Primary is the fixed internal storage root.
	Primary string
	// Home is the configured home path; skipped when equal to Primary.
	Home string
	// Media is the removable-media mount root; each mount below it is
	// searched one level deep.
	Media string
}

// DiscoverRoots returns the distinct directories to scan, in first-seen order:
// subdirectories of Primary, then of Home, then of every entry under Media.
func (s *Scanner) DiscoverRoots(r Roots) []string {
	var roots []string
	seen := make(map[string]bool)
	add := func(dirs []string) {
		for _, dir := range dirs {
			if seen[dir] {
				continue
			}
			seen[dir] = true
			roots = append(roots, dir)
		}
	}

	add(s.Dirs(r.Primary))

	if r.Home != "" && r.Home != r.Primary {
		add(s.Dirs(r.Home))
	}

	if r.Media != "" {
		for _, mount := range s.Dirs(r.Media) {
			add(s.Dirs(mount))
		}
	}

	s.logger.Debug("Discovered scan roots", "count", len(roots))
	return roots
}
