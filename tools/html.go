package tools

import (
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/casematch/core"
	. "github.com/Comcast/casematch/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderStatementHTML writes an HTML fragment for the statement.
//
// Docs are Markdown.
func RenderStatementHTML(s *core.Statement, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="statementDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	f(`<div class="arms"><table>`)
	for i, a := range s.Arms {
		f(`<tr class="arm"><td><div class="armNum">%d</div></td><td>`, i)
		f(`<span id="arm-%d" class="armName">%s</span>`, i, html.EscapeString(a.Label()))
		if a.Doc != "" {
			f(`<div class="armDoc doc">%s</div>`, md.Run([]byte(a.Doc)))
		}
		f(`<table>`)
		if a.Pattern != nil {
			f(`<tr><td></td><td>pattern</td>`)
			f(`<td><code>%s</code></td></tr>`, html.EscapeString(a.Pattern.String()))
		}
		if a.GuardSource != nil {
			f(`<tr><td></td><td>guard</td>`)
			f(`<td><div class="code"><pre>%s</pre></div></td></tr>`, html.EscapeString(code(a.GuardSource)))
		} else if a.Guard != nil {
			f(`<tr><td></td><td>guard</td><td>(native)</td></tr>`)
		}
		if a.BodySource != nil {
			f(`<tr><td></td><td>body</td>`)
			f(`<td><div class="code"><pre>%s</pre></div></td></tr>`, html.EscapeString(code(a.BodySource)))
		}
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// code renders source code for display.
func code(src *core.Source) string {
	if s, is := src.Code.(string); is {
		return s
	}
	return JS(src.Code)
}

func RenderStatementPage(s *core.Statement, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/statement.css"}
	}

	js, err := json.Marshal(s.Source())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
  <script>
  var thisStatement = %s;
  </script>
`, html.EscapeString(s.Name), js)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(s.Name))

	if err = RenderStatementHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderStatementPage loads the statement without running any
// of its code and then renders the page.
func ReadAndRenderStatementPage(filename string, cssFiles []string, out io.Writer) error {
	s, err := LintStatementFile(filename)
	if err != nil {
		return err
	}
	return RenderStatementPage(s, out, cssFiles)
}
