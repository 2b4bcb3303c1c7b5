// Package textscan extracts typed fields from the semi-structured text that
// OS tools print: `"Key" = value` registry dumps (ioreg) and `Key: Value`
// profiler lines (system_profiler, diskutil). The output formats of those
// tools are not a stable contract, so every lookup is keyed on a literal and
// degrades to Unknown instead of failing.
package textscan

import (
	"regexp"
	"strings"
	"sync"
)

// Unknown is returned when a key is absent or its value has the wrong shape.
const Unknown = "Unknown"

// Kind selects the value shape a lookup expects.
type Kind int

const (
	// Number matches a non-negative integer.
	Number Kind = iota
	// Bool matches a bare word, normalized to "Yes" or "No".
	Bool
	// Text matches a quoted string (Plist) or the remainder of a line (Colon).
	Text
)

// Extractor looks up a single field in a text blob.
type Extractor interface {
	// Field returns the first matching value for key, or Unknown.
	Field(blob, key string, kind Kind) string
}

// Plist extracts fields from `"Key" = value` property-list style output.
type Plist struct{}

// Colon extracts fields from `Key: Value` lines.
type Colon struct{}

var (
	patternMu    sync.Mutex
	patternCache = make(map[string]*regexp.Regexp)
)

// plistPattern compiles (and caches) the expression for key and kind.
func plistPattern(key string, kind Kind) *regexp.Regexp {
	var expr string
	quoted := `"` + regexp.QuoteMeta(key) + `"\s*=\s*`
	switch kind {
	case Number:
		expr = quoted + `([0-9]+);?`
	case Bool:
		expr = quoted + `([A-Za-z]+);?`
	default:
		expr = quoted + `"([^"]+)";?`
	}

	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[expr]; ok {
		return re
	}
	re := regexp.MustCompile(expr)
	patternCache[expr] = re
	return re
}

// Lookup returns the first matching value for key and whether it was found.
func (Plist) Lookup(blob, key string, kind Kind) (string, bool) {
	m := plistPattern(key, kind).FindStringSubmatch(blob)
	if m == nil {
		return "", false
	}
	if kind == Bool {
		return normalizeBool(m[1]), true
	}
	return m[1], true
}

// Field implements Extractor.
func (p Plist) Field(blob, key string, kind Kind) string {
	if v, ok := p.Lookup(blob, key, kind); ok {
		return v
	}
	return Unknown
}

// Lookup returns the value of the first `key: value` line and whether it was
// found. Leading indentation is ignored; the key must match exactly.
func (Colon) Lookup(blob, key string, kind Kind) (string, bool) {
	for _, line := range strings.Split(blob, "\n") {
		k, v, ok := splitColon(line)
		if !ok || k != key {
			continue
		}
		switch kind {
		case Number:
			n := leadingDigits(v)
			if n == "" {
				return "", false
			}
			return n, true
		case Bool:
			return normalizeBool(v), true
		default:
			return v, true
		}
	}
	return "", false
}

// Field implements Extractor.
func (c Colon) Field(blob, key string, kind Kind) string {
	if v, ok := c.Lookup(blob, key, kind); ok {
		return v
	}
	return Unknown
}

// Pair is one key/value line from Colon-formatted text.
type Pair struct {
	Key   string
	Value string
}

// Pairs returns every `key: value` line with a non-empty value, in order.
// Header lines such as "Memory:" (no value) are skipped.
func Pairs(blob string) []Pair {
	var out []Pair
	for _, line := range strings.Split(blob, "\n") {
		if k, v, ok := splitColon(line); ok {
			out = append(out, Pair{Key: k, Value: v})
		}
	}
	return out
}

// Sections splits blob into blocks that each begin with a line whose key is
// header. Text before the first header is dropped. Useful for profiler output
// that repeats the same block per device ("Chipset Model:", "BANK 0/...").
func Sections(blob, header string) []string {
	var (
		out     []string
		current strings.Builder
		started bool
	)
	for _, line := range strings.Split(blob, "\n") {
		if k, _, ok := splitColon(line); ok && k == header {
			if started {
				out = append(out, current.String())
				current.Reset()
			}
			started = true
		}
		if started {
			current.WriteString(line)
			current.WriteByte('\n')
		}
	}
	if started {
		out = append(out, current.String())
	}
	return out
}

// splitColon splits "  Key: Value" into trimmed parts. Lines without a
// colon or with an empty value are rejected.
func splitColon(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	k := strings.TrimSpace(line[:idx])
	v := strings.TrimSpace(line[idx+1:])
	if k == "" || v == "" {
		return "", "", false
	}
	return k, v, true
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func normalizeBool(v string) string {
	if v == "Yes" {
		return "Yes"
	}
	return "No"
}

// IsYes reports whether a normalized boolean value is "Yes".
func IsYes(v string) bool { return v == "Yes" }
