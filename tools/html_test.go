package tools

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatementHTML(t *testing.T) {
	out := bytes.NewBuffer(make([]byte, 0, 1024*128))

	if err := ReadAndRenderStatementPage("testdata/sign.yaml", []string{"statement.css"}, out); err != nil {
		t.Fatal(err)
	}

	page := out.String()
	for _, want := range []string{
		"<title>sign</title>",
		"<strong>sign</strong>",
		`class="armName">negative</span>`,
		`return &#34;zero&#34;;`,
		`href="statement.css"`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("no %s in %s", want, page)
		}
	}
}
