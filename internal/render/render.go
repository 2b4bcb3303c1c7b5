// Package render prints report documents as two-column terminal tables.
// Nested objects and arrays are flattened into dotted key paths in document
// order.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Row is one flattened key path and its value.
type Row struct {
	Key   string
	Value string
}

// Flatten walks doc and returns one row per leaf. Empty objects and arrays
// become a single row holding {} or []. A top-level scalar is keyed "value".
func Flatten(doc []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var rows []Row
	if err := walk(dec, "", &rows); err != nil {
		return nil, fmt.Errorf("flattening document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("flattening document: trailing data")
	}
	return rows, nil
}

func walk(dec *json.Decoder, path string, rows *[]Row) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := 0
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := keyTok.(string)
				if err := walk(dec, join(path, key), rows); err != nil {
					return err
				}
				n++
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			if n == 0 {
				*rows = append(*rows, Row{Key: leafKey(path), Value: "{}"})
			}
		case '[':
			n := 0
			for dec.More() {
				if err := walk(dec, join(path, fmt.Sprint(n)), rows); err != nil {
					return err
				}
				n++
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			if n == 0 {
				*rows = append(*rows, Row{Key: leafKey(path), Value: "[]"})
			}
		}
	case string:
		*rows = append(*rows, Row{Key: leafKey(path), Value: t})
	case json.Number:
		*rows = append(*rows, Row{Key: leafKey(path), Value: t.String()})
	case bool:
		*rows = append(*rows, Row{Key: leafKey(path), Value: fmt.Sprint(t)})
	case nil:
		*rows = append(*rows, Row{Key: leafKey(path), Value: "null"})
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func leafKey(path string) string {
	if path == "" {
		return "value"
	}
	return path
}

// Table lays rows out with keys padded to a common display width.
func Table(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r.Key); w > width {
			width = w
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(TitleStyle.Render(title))
		b.WriteString("\n\n")
	}
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(KeyStyle.Render(runewidth.FillRight(r.Key, width)))
		b.WriteString("  ")
		b.WriteString(ValueStyle.Render(r.Value))
	}
	return BoxStyle.Render(b.String())
}

// Write flattens doc and prints it as a table. An {"error": ...} document is
// printed as a single highlighted line.
func Write(w io.Writer, title string, doc string) error {
	rows, err := Flatten([]byte(doc))
	if err != nil {
		return err
	}
	if len(rows) == 1 && rows[0].Key == "error" {
		_, err = fmt.Fprintln(w, ErrorStyle.Render("error: "+rows[0].Value))
		return err
	}
	_, err = fmt.Fprintln(w, Table(title, rows))
	return err
}
