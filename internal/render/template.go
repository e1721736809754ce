// Package render turns Snapshots into output lines. A Template is compiled
// once at startup so that malformed format strings fail before the first
// watch cycle instead of producing garbage on every emission.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/thiagokokada/git-status-watch/internal/git"
)

type field uint8

const (
	fieldNone field = iota
	fieldBranch
	fieldStaged
	fieldModified
	fieldUntracked
	fieldConflicted
	fieldAhead
	fieldBehind
	fieldStash
	fieldState
)

var fieldsByName = map[string]field{
	"branch":     fieldBranch,
	"staged":     fieldStaged,
	"modified":   fieldModified,
	"untracked":  fieldUntracked,
	"conflicted": fieldConflicted,
	"ahead":      fieldAhead,
	"behind":     fieldBehind,
	"stash":      fieldStash,
	"state":      fieldState,
}

// part is either a literal run (field == fieldNone) or a placeholder.
type part struct {
	text  string
	field field
}

// Template renders one snapshot per line. The zero format compiles to the
// canonical JSON record instead of a placeholder template.
type Template struct {
	parts      []part
	jsonRecord bool
}

// Compile parses a format string into a Template. Literal text passes
// through byte for byte, so multi-byte glyphs survive; "\t" and "\n" escapes
// apply in literal runs only. A "{name}" whose name is an identifier but not
// a known placeholder is an error; any other brace, including an unmatched
// "{", stays literal.
func Compile(format string) (*Template, error) {
	if format == "" {
		return &Template{jsonRecord: true}, nil
	}
	var parts []part
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, part{text: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(format); {
		c := format[i]
		switch c {
		case '\\':
			if i+1 < len(format) {
				switch format[i+1] {
				case 't':
					lit.WriteByte('\t')
					i += 2
					continue
				case 'n':
					lit.WriteByte('\n')
					i += 2
					continue
				}
			}
			lit.WriteByte(c)
			i++
		case '{':
			j := i + 1
			for j < len(format) && isNameByte(format[j]) {
				j++
			}
			if j == i+1 || j == len(format) || format[j] != '}' {
				lit.WriteByte(c)
				i++
				continue
			}
			name := format[i+1 : j]
			f, ok := fieldsByName[name]
			if !ok {
				return nil, fmt.Errorf("unknown placeholder {%s}", name)
			}
			flush()
			parts = append(parts, part{field: f})
			i = j + 1
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return &Template{parts: parts}, nil
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// Render produces the output line for snap, without a trailing newline.
func (t *Template) Render(snap git.Snapshot) string {
	if t.jsonRecord {
		// Snapshot marshals from plain fields; this cannot fail.
		b, _ := json.Marshal(snap)
		return string(b)
	}
	var b strings.Builder
	for _, p := range t.parts {
		switch p.field {
		case fieldNone:
			b.WriteString(p.text)
		case fieldBranch:
			b.WriteString(snap.Branch)
		case fieldStaged:
			b.WriteString(strconv.Itoa(snap.Staged))
		case fieldModified:
			b.WriteString(strconv.Itoa(snap.Modified))
		case fieldUntracked:
			b.WriteString(strconv.Itoa(snap.Untracked))
		case fieldConflicted:
			b.WriteString(strconv.Itoa(snap.Conflicted))
		case fieldAhead:
			b.WriteString(strconv.Itoa(snap.Ahead))
		case fieldBehind:
			b.WriteString(strconv.Itoa(snap.Behind))
		case fieldStash:
			b.WriteString(strconv.Itoa(snap.Stash))
		case fieldState:
			b.WriteString(snap.State.String())
		}
	}
	return b.String()
}
