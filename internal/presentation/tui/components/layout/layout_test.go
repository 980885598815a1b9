package layout

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	got := Render(Props{
		Header: "HEADER",
		Main:   "MAIN",
		Input:  "INPUT",
		Footer: "FOOTER",
	})

	order := []string{"HEADER", "MAIN", "INPUT", "FOOTER"}
	last := -1
	for _, part := range order {
		idx := strings.Index(got, part)
		if idx < 0 {
			t.Fatalf("missing %s in %q", part, got)
		}
		if idx < last {
			t.Fatalf("%s rendered out of order", part)
		}
		last = idx
	}
}
