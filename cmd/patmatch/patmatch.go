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

// Package main is a little command-line utility to invoke pattern
// matching.
//
//	patmatch -p '{"likes":"?liked"}' -m '{"likes":"tacos","age":29}' -w '{"liked":"tacos"}'
//	patmatch -c '[{"tag":"Point","positional":["x","y"]}]' -p '{"@class":"Point","@args":[0,"?y"]}' -m '{"@class":"Point","x":0,"y":3}'
//	patmatch -s sign.yaml -m 10
//	patmatch -s sign.yaml -x int:-1..1
//	patmatch -s sign.yaml -t sign-session.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/interpreters"
	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/tools"
	"github.com/Comcast/casematch/util"
	. "github.com/Comcast/casematch/util/testutil"
	"github.com/Comcast/casematch/value"
)

func main() {
	var (
		subjectJS = flag.String("m", "", "subject in JSON")
		patternJS = flag.String("p", "", "pattern in JSON")
		classesJS = flag.String("c", "", "class declarations in JSON")
		wantJS    = flag.String("w", "", "wanted bindings in JSON (null for no match)")

		statementFile = flag.String("s", "", "statement file (YAML or JSON)")
		domain        = flag.String("x", "", "check the statement's coverage of this domain (any, bool, int:LO..HI, class:TAG, values:JSON)")
		sessionFile   = flag.String("t", "", "session file of cases to run against the statement")
		html          = flag.Bool("html", false, "render the statement as HTML")
		dot           = flag.String("dot", "", "basename for a Graphviz rendering of the statement")

		tree    = flag.Bool("tree", false, "print the pattern (or statement) as a tree")
		bench   = flag.Int("bench", 0, "number of times to run (and report time)")
		timeout = flag.Duration("timeout", 10*time.Second, "timeout for guards and bodies")
		verbose = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()

	util.Logging = *verbose

	reg := value.NewRegistry()
	if *classesJS != "" {
		var classes []core.ClassSource
		if err := json.Unmarshal([]byte(*classesJS), &classes); err != nil {
			log.Fatal(err)
		}
		src := &core.StatementSource{
			Classes: classes,
		}
		if err := src.RegisterClasses(reg); err != nil {
			log.Fatal(err)
		}
	}

	var (
		subject value.Value
		err     error
	)
	if *subjectJS != "" {
		if subject, err = value.Parse(*subjectJS); err != nil {
			log.Fatal(err)
		}
	}

	if *statementFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		s, err := tools.LoadStatementFile(ctx, *statementFile, reg, interpreters.Standard())
		if err != nil {
			log.Fatal(err)
		}

		switch {
		case *domain != "":
			d, err := tools.ParseDomain(*domain, reg)
			if err != nil {
				log.Fatal(err)
			}
			c := tools.CheckExhaustive(s.Arms, d, reg)
			if err = tools.WriteReport(os.Stdout, c); err != nil {
				log.Fatal(err)
			}
		case *sessionFile != "":
			session, err := tools.ReadSessionFile(*sessionFile)
			if err != nil {
				log.Fatal(err)
			}
			session.Interpreters = interpreters.Standard()
			session.Verbose = *verbose
			if err = session.Run(ctx, s); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("%d cases passed\n", len(session.Cases))
		case *html:
			if err = tools.RenderStatementPage(s, os.Stdout, nil); err != nil {
				log.Fatal(err)
			}
		case *dot != "":
			pngname, err := tools.PNG(s, *dot, -1)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(pngname)
		case *tree:
			fmt.Print(tools.RenderStatementTree(s))
		case subject != nil:
			evaluate(ctx, s, subject)
		default:
			a, err := tools.Analyze(s)
			if err != nil {
				log.Fatal(err)
			}
			if err = tools.WriteReport(os.Stdout, a); err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	var x interface{}
	if err := value.DecodeJSON([]byte(*patternJS), &x); err != nil {
		log.Fatal(err)
	}
	pattern, err := match.Decode(x, reg)
	if err != nil {
		log.Fatal(err)
	}

	if *tree {
		fmt.Print(tools.RenderPatternTree(pattern))
		return
	}

	if subject == nil {
		log.Fatal("need a subject (-m)")
	}

	m := &match.Matcher{
		Classes: reg,
	}

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, err := m.Attempt(pattern, subject); err != nil {
				log.Fatal(err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Attempt, %d mean bytes allocated per Attempt", *bench, meanNanos, allocated)
	}

	bs, err := m.Attempt(pattern, subject)
	if err != nil {
		log.Fatal(err)
	}

	if *wantJS != "" {
		want, err := parseBindings(*wantJS)
		if err != nil {
			log.Fatal(err)
		}
		eq := want.Equal(bs)
		if !eq && *verbose {
			fmt.Printf("disagreement: %s != %s\n", bs, want)
		}
		fmt.Printf("%v\n", eq)
		return
	}

	js, err := json.Marshal(bs)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", js)
}

// parseBindings reads a JSON object as Bindings.  JSON null is nil
// Bindings, which represents no match.
func parseBindings(js string) (*match.Bindings, error) {
	var m map[string]interface{}
	if err := value.DecodeJSON([]byte(js), &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	bs := match.NewBindings()
	for k, x := range m {
		v, err := value.FromInterface(x)
		if err != nil {
			return nil, err
		}
		if err = bs.Bind(k, v); err != nil {
			return nil, err
		}
	}
	return bs, nil
}

// evaluate prints the selected arm, its bindings, and its result.
func evaluate(ctx context.Context, s *core.Statement, subject value.Value) {
	sel, ts, err := s.Select(ctx, subject)
	if err != nil {
		log.Fatal(err)
	}
	for _, msg := range ts.Messages {
		util.Logf("trace %s", JS(msg))
	}

	out := map[string]interface{}{
		"matched": sel != nil,
	}
	if sel != nil {
		result, err := s.Exec(ctx, sel)
		if err != nil {
			log.Fatal(err)
		}
		if v, is := result.(value.Value); is {
			result = value.ToInterface(v)
		}
		out["arm"] = sel.Label
		out["bindings"] = sel.Bindings
		out["result"] = result
	}

	js, err := json.Marshal(out)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", js)
}
