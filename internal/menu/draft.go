package menu

import (
	"strconv"
	"strings"
)

// DefaultSection receives entries whose metadata names no category.
const DefaultSection = "applications"

// FileSelectorToken in the exec parameters asks the launcher for a file.
const FileSelectorToken = "%f"

// Optional is a value that is either unset or set exactly once.
type Optional[T any] struct {
	value T
	set   bool
}

// SetOnce stores v if nothing was stored yet and reports whether it did.
func (o *Optional[T]) SetOnce(v T) bool {
	if o.set {
		return false
	}
	o.value = v
	o.set = true
	return true
}

// Get returns the stored value and whether one was stored.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Draft accumulates launch entry fields from one metadata document. Each
// field is written at most once; later writes are ignored.
type Draft struct {
	Title          Optional[string]
	Params         Optional[string]
	Description    Optional[string]
	Manual         Optional[string]
	SelectorDir    Optional[string]
	SelectorFilter Optional[string]
	AliasFile      Optional[string]
	Icon           Optional[string]
	// ScaleMode keeps the raw value; it is parsed when applied.
	ScaleMode      Optional[string]
	Terminal       Optional[bool]
	Section        Optional[string]
}

// SectionName returns the section the entry belongs in. An unset, empty or
// path-like category falls back to DefaultSection.
func (d *Draft) SectionName() string {
	name, ok := d.Section.Get()
	if !ok || name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return DefaultSection
	}
	return name
}

// WantsFileSelector reports whether the exec parameters carry the file
// selector token.
func (d *Draft) WantsFileSelector() bool {
	params, _ := d.Params.Get()
	return strings.Contains(params, FileSelectorToken)
}

// ApplyTo copies the draft onto link. Unset and empty fields leave the
// link's current values alone; the terminal flag is always written. The
// selector directory is only filled when the link has none, preferring an
// explicit one over homePath implied by the file selector token.
func (d *Draft) ApplyTo(link *Link, packagePath, homePath string) {
	setString := func(dst *string, src Optional[string]) {
		if v, ok := src.Get(); ok && v != "" {
			*dst = v
		}
	}

	if packagePath != "" {
		link.Exec = packagePath
	}
	setString(&link.Params, d.Params)
	setString(&link.Title, d.Title)
	setString(&link.Description, d.Description)
	setString(&link.Manual, d.Manual)

	if link.SelectorDir == "" {
		if dir, ok := d.SelectorDir.Get(); ok && dir != "" {
			link.SelectorDir = dir
		} else if d.WantsFileSelector() {
			link.SelectorDir = homePath
		}
	}

	setString(&link.SelectorFilter, d.SelectorFilter)
	setString(&link.SelectorAliases, d.AliasFile)
	setString(&link.Icon, d.Icon)

	if scale, ok := d.ScaleMode.Get(); ok && scale != "" {
		link.ScaleMode = leadingInt(scale)
	}

	terminal, _ := d.Terminal.Get()
	link.Terminal = terminal
}

// leadingInt parses the optional sign and digits at the start of s, ignoring
// leading blanks and anything after the digits. No digits parse to 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
