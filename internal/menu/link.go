package menu

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// LinkSuffix is the file suffix of persisted launch entries.
const LinkSuffix = ".lnk"

// Link is a persisted launch entry.
type Link struct {
	Path string

	Title           string
	Description     string
	Icon            string
	Manual          string
	Exec            string
	Params          string
	SelectorDir     string
	SelectorFilter  string
	SelectorAliases string
	Terminal        bool
	ScaleMode       int

	// Extra keeps unrecognized lines of an existing entry, in file order.
	Extra []KeyValue
}

// KeyValue is one line of a link file.
type KeyValue struct {
	Key   string
	Value string
}

// Link file keys, written in this order.
const (
	KeyTitle           = "title"
	KeyDescription     = "description"
	KeyIcon            = "icon"
	KeyManual          = "manual"
	KeyExec            = "exec"
	KeyParams          = "params"
	KeySelectorDir     = "selectordir"
	KeySelectorFilter  = "selectorfilter"
	KeySelectorAliases = "selectoraliases"
	KeyTerminal        = "terminal"
	KeyScaleMode       = "scalemode"
)

// ParseLink decodes link file content. Lines without '=' are ignored.
func ParseLink(path string, data []byte) (*Link, error) {
	link := &Link{Path: path}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case KeyTitle:
			link.Title = value
		case KeyDescription:
			link.Description = value
		case KeyIcon:
			link.Icon = value
		case KeyManual:
			link.Manual = value
		case KeyExec:
			link.Exec = value
		case KeyParams:
			link.Params = value
		case KeySelectorDir:
			link.SelectorDir = value
		case KeySelectorFilter:
			link.SelectorFilter = value
		case KeySelectorAliases:
			link.SelectorAliases = value
		case KeyTerminal:
			link.Terminal = value == "true"
		case KeyScaleMode:
			link.ScaleMode, _ = strconv.Atoi(value)
		default:
			link.Extra = append(link.Extra, KeyValue{Key: key, Value: value})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parsing link %s: %w", path, err)
	}
	return link, nil
}

// Marshal encodes the link. Empty fields are omitted so the output only
// depends on the values that are set.
func (l *Link) Marshal() []byte {
	var buf bytes.Buffer
	put := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&buf, "%s=%s\n", key, value)
		}
	}

	put(KeyTitle, l.Title)
	put(KeyDescription, l.Description)
	put(KeyIcon, l.Icon)
	put(KeyManual, l.Manual)
	put(KeyExec, l.Exec)
	put(KeyParams, l.Params)
	put(KeySelectorDir, l.SelectorDir)
	put(KeySelectorFilter, l.SelectorFilter)
	put(KeySelectorAliases, l.SelectorAliases)
	if l.Terminal {
		put(KeyTerminal, "true")
	}
	if l.ScaleMode != 0 {
		put(KeyScaleMode, strconv.Itoa(l.ScaleMode))
	}
	for _, kv := range l.Extra {
		put(kv.Key, kv.Value)
	}

	return buf.Bytes()
}
