package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf,
		[]string{"Username", "Role"},
		[][]interface{}{
			{"jdoe", "driver"},
			{"admin1", "admin"},
		})

	out := buf.String()
	for _, want := range []string{"USERNAME", "ROLE", "jdoe", "admin1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table output:\n%s", want, out)
		}
	}
}
