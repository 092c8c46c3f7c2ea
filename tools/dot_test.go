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

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/casematch/core"
)

func TestDot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "g.dot")

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	s, err := core.FactorialStatement(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := Dot(s, out, 1); err != nil {
		t.Fatal(err)
	}

	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	g := string(bs)
	if !strings.HasPrefix(g, "digraph G {") {
		t.Fatal(g)
	}
	for i := range s.Arms {
		if !strings.Contains(g, fmt.Sprintf("arm%d [", i)) {
			t.Fatalf("no node for arm %d in %s", i, g)
		}
	}
	if !strings.Contains(g, `color="red"`) {
		t.Fatal(g)
	}
}
