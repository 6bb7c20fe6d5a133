package opk

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DesktopEntryGroup is the only group whose pairs are yielded.
const DesktopEntryGroup = "Desktop Entry"

// pairStream pulls key/value pairs out of a desktop-entry document one line
// at a time.
type pairStream struct {
	name    string
	scanner *bufio.Scanner
	group   string
	line    int
	done    bool
}

func newPairStream(name string, r io.Reader) *pairStream {
	return &pairStream{name: name, scanner: bufio.NewScanner(r)}
}

func (s *pairStream) next() Result[Pair] {
	if s.done {
		return Done[Pair]()
	}

	for s.scanner.Scan() {
		s.line++
		line := strings.TrimSpace(s.scanner.Text())
		if s.line == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return s.fail("unterminated group header %q", line)
			}
			s.group = line[1 : len(line)-1]
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return s.fail("expected key=value, got %q", line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return s.fail("empty key")
		}

		if s.group != DesktopEntryGroup {
			continue
		}

		return Item(Pair{Key: key, Value: strings.TrimSpace(value)})
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return Failed[Pair](fmt.Errorf("%s: %w", s.name, err))
	}
	return Done[Pair]()
}

func (s *pairStream) fail(format string, args ...any) Result[Pair] {
	s.done = true
	return Failed[Pair](fmt.Errorf("%s:%d: %s", s.name, s.line, fmt.Sprintf(format, args...)))
}
