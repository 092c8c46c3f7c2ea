/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/match"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given statement.  Each arm
// is a node, which falls through to the next arm when its pattern
// fails or its guard rejects.
//
// If selected is a valid arm index, that arm's node is red.
func Dot(s *core.Statement, w io.WriteCloser, selected int) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	fmt.Fprintf(w, "  subject [shape=\"oval\", style=\"bold\", label=<%s>]\n", htmlEscape(s.Name))
	fmt.Fprintf(w, "  nomatch [shape=\"oval\", style=\"dashed\", label=\"no match\"]\n")

	for i, a := range s.Arms {
		label := htmlEscape(a.Label())
		if a.Pattern != nil {
			js, err := yaml.Marshal(match.Encode(a.Pattern))
			if err != nil {
				js = []byte(err.Error())
			}
			label += `<BR/><FONT POINT-SIZE="8">` +
				strings.Replace(htmlEscape(string(js)), "\n", `<BR ALIGN="LEFT"/>`, -1) +
				`</FONT>`
		}

		fillcolor := "#99ddc8"
		if a.Guarded() {
			fillcolor = "#2d93ad"
			if a.GuardSource != nil {
				label += `<FONT POINT-SIZE="6"><BR/>` +
					strings.Replace(htmlEscape(code(a.GuardSource))+"\n", "\n", `<BR ALIGN="LEFT"/>`, -1) +
					`</FONT>`
			}
		} else if a.Pattern != nil && match.Irrefutable(a.Pattern) {
			fillcolor = "#52aa5e"
		}
		color := "black"
		if i == selected {
			color = "red"
			fillcolor = "#f98b8b"
		}

		fmt.Fprintf(w, "  arm%d [style=\"filled\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			i, color, fillcolor, label)
	}

	first := "nomatch"
	if 0 < len(s.Arms) {
		first = "arm0"
	}
	fmt.Fprintf(w, "  subject -> %s\n", first)

	for i, a := range s.Arms {
		next := "nomatch"
		if i+1 < len(s.Arms) {
			next = fmt.Sprintf("arm%d", i+1)
		}
		why := "fails"
		if a.Guarded() {
			why = "fails or rejected"
		}
		color := "black"
		if selected < 0 || i < selected {
			color = "gray"
		}
		fmt.Fprintf(w, "  arm%d -> %s [ color=\"%s\" label = \"%s\" ]\n", i, next, color, why)
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(s *core.Statement, basename string, selected int) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(s, dotfile, selected); err != nil {
		return pngname, err
	}
	cmd := exec.Command("dot", "-Tpng", "-o", pngname, dotname)
	if err := cmd.Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func htmlEscape(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}
