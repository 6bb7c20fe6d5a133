package install

import (
	"strings"

	"github.com/provide-io/opkscan/internal/menu"
	"github.com/provide-io/opkscan/pkg/opk"
)

// Recognized metadata keys.
const (
	KeyName       = "Name"
	KeyExec       = "Exec"
	KeyComment    = "Comment"
	KeyTerminal   = "Terminal"
	KeyManual     = "X-OD-Manual"
	KeySelector   = "X-OD-Selector"
	KeyScaling    = "X-OD-Scaling"
	KeyFilter     = "X-OD-Filter"
	KeyAlias      = "X-OD-Alias"
	KeyCategories = "Categories"
	KeyIcon       = "Icon"
)

// Interpret maps one pair onto the draft and reports whether the key is
// recognized. The first occurrence of a key wins; unknown keys are ignored.
func Interpret(d *menu.Draft, pair opk.Pair, packagePath string) bool {
	v := pair.Value

	switch pair.Key {
	case KeyName:
		d.Title.SetOnce(v)
	case KeyExec:
		d.Params.SetOnce(v)
	case KeyComment:
		d.Description.SetOnce(v)
	case KeyTerminal:
		d.Terminal.SetOnce(v == "true")
	case KeyManual:
		d.Manual.SetOnce(v)
	case KeySelector:
		d.SelectorDir.SetOnce(v)
	case KeyScaling:
		d.ScaleMode.SetOnce(v)
	case KeyFilter:
		d.SelectorFilter.SetOnce(v)
	case KeyAlias:
		d.AliasFile.SetOnce(v)
	case KeyCategories:
		section, _, _ := strings.Cut(v, ";")
		d.Section.SetOnce(section)
	case KeyIcon:
		d.Icon.SetOnce(packagePath + "#" + v + ".png")
	default:
		return false
	}
	return true
}
