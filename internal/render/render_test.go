package render

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Row
	}{
		{
			name: "nested keeps document order",
			doc:  `{"z":1,"cpu":{"name":"M1","cores":[4,4]},"ok":true,"gone":null}`,
			want: []Row{
				{"z", "1"},
				{"cpu.name", "M1"},
				{"cpu.cores.0", "4"},
				{"cpu.cores.1", "4"},
				{"ok", "true"},
				{"gone", "null"},
			},
		},
		{
			name: "empty containers",
			doc:  `{"gpus":[],"fields":{}}`,
			want: []Row{{"gpus", "[]"}, {"fields", "{}"}},
		},
		{
			name: "scalar document",
			doc:  `42.5`,
			want: []Row{{"value", "42.5"}},
		},
		{
			name: "array of objects",
			doc:  `[{"name":"a"},{"name":"b"}]`,
			want: []Row{{"0.name", "a"}, {"1.name", "b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Flatten([]byte(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Flatten =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestFlatten_Invalid(t *testing.T) {
	for _, doc := range []string{`{"a":`, `{}{}`, ``} {
		if _, err := Flatten([]byte(doc)); err == nil {
			t.Errorf("Flatten(%q) succeeded, want error", doc)
		}
	}
}

func TestTable_PadsWideKeys(t *testing.T) {
	out := Table("", []Row{{"名前", "x"}, {"longer", "y"}})
	lines := strings.Split(out, "\n")
	var keyed []string
	for _, l := range lines {
		if strings.Contains(l, "名前") || strings.Contains(l, "longer") {
			keyed = append(keyed, l)
		}
	}
	if len(keyed) != 2 {
		t.Fatalf("table lines = %q", lines)
	}
	// 名前 is four columns wide; both values must start in the same column.
	xCol := runewidth.StringWidth(keyed[0][:strings.Index(keyed[0], "x")])
	yCol := runewidth.StringWidth(keyed[1][:strings.Index(keyed[1], "y")])
	if xCol != yCol {
		t.Errorf("value columns differ: %d vs %d\n%s", xCol, yCol, out)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "battery", `{"status":"Charging","percentage":81.5}`); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"battery", "status", "Charging", "percentage", "81.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := Write(&buf, "x", `{"error":"unknown report"}`); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "error: unknown report") {
		t.Errorf("error output = %q", buf.String())
	}
}
