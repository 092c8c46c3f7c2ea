/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package main is a command-line statement debugger in the spirit of
// gdb.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/interpreters"
	"github.com/Comcast/casematch/storage"
	"github.com/Comcast/casematch/storage/bolt"
	"github.com/Comcast/casematch/tools"
	. "github.com/Comcast/casematch/util/testutil"
	"github.com/Comcast/casematch/value"
)

type Opts struct {
	dbFile string
	lib    string
	echo   bool
}

func main() {

	opts := &Opts{}
	flag.StringVar(&opts.dbFile, "db", "", "BoltDB filename (in-memory storage if empty)")
	flag.StringVar(&opts.lib, "lib", "default", "statement library name")
	flag.BoolVar(&opts.echo, "e", false, "echo input")
	flag.Parse()

	if err := opts.run(); err != nil {
		panic(err)
	}
}

func (opts *Opts) run() error {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st storage.Storage
	if opts.dbFile == "" {
		st = storage.NewMemStorage()
	} else {
		s, err := bolt.NewStorage(opts.dbFile)
		if err != nil {
			return err
		}
		st = s
	}
	if err := st.Open(ctx); err != nil {
		return err
	}
	defer st.Close(ctx)

	h, err := NewHost(ctx, st, opts.lib)
	if err != nil {
		return err
	}
	h.echo = opts.echo

	return h.Run(ctx, os.Stdin, os.Stdout)
}

// Host holds the debugger's statements.
type Host struct {
	storage      storage.Storage
	lib          string
	interpreters map[string]core.Interpreter
	reg          *value.Registry
	statements   map[string]*core.Statement

	// current is the name of the statement that try, run, and
	// cover use.
	current string

	echo bool
}

// NewHost makes a Host and loads every statement that's already in
// the library (which is created if necessary).
func NewHost(ctx context.Context, st storage.Storage, lib string) (*Host, error) {
	h := &Host{
		storage:      st,
		lib:          lib,
		interpreters: interpreters.Standard(),
		reg:          value.NewRegistry(),
	}
	if err := st.MakeLibrary(ctx, lib); err != nil {
		// Probably already exists.  We'll find out.
		if _, err := st.ListStatements(ctx, lib); err != nil {
			return nil, err
		}
	}
	statements, err := storage.Load(ctx, st, lib, h.reg, h.interpreters)
	if err != nil {
		return nil, err
	}
	h.statements = statements
	return h, nil
}

// Put compiles the statement in the file and then stores it.
func (h *Host) Put(ctx context.Context, filename string) (*core.Statement, error) {
	src, err := tools.ReadStatementFile(filename)
	if err != nil {
		return nil, err
	}
	s, err := src.Statement(ctx, h.reg, h.interpreters)
	if err != nil {
		return nil, err
	}
	if err = h.storage.PutStatement(ctx, h.lib, src); err != nil {
		return nil, err
	}
	h.statements[s.Name] = s
	return s, nil
}

func (h *Host) statement(name string) (*core.Statement, error) {
	if name == "" {
		name = h.current
	}
	if name == "" {
		return nil, fmt.Errorf("no current statement (see 'use')")
	}
	s, have := h.statements[name]
	if !have {
		return nil, fmt.Errorf("statement '%s' not found", name)
	}
	return s, nil
}

// Run reads commands (see doc()) until EOF.
func (h *Host) Run(ctx context.Context, in io.Reader, w io.Writer) error {

	var (
		put = regexp.MustCompile("^put +(.*)")

		use = regexp.MustCompile("^use +([-a-zA-Z0-9_.]+)")

		rem = regexp.MustCompile("^(rem|del|remove|delete) +([-a-zA-Z0-9_.]+)")

		list = regexp.MustCompile("^(list|ls)$")

		print = regexp.MustCompile("^print( +([-a-zA-Z0-9_.]+))?$")

		try = regexp.MustCompile("^try +(.*)")

		run = regexp.MustCompile("^run +(.*)")

		cover = regexp.MustCompile("^cover +(.*)")

		help = regexp.MustCompile("^(help|h|\\?)")

		debug = regexp.MustCompile("^debug(ging)? (on|off)")

		outputPrefix = "# "

		debugging = false

		say = func(format string, args ...interface{}) {
			fmt.Fprintf(w, outputPrefix+format+"\n", args...)
		}

		protest = func(format string, args ...interface{}) {
			say("error: "+format, args...)
		}

		parseSubject = func(js string) (value.Value, error) {
			var x interface{}
			if err := value.DecodeJSON([]byte(js), &x); err != nil {
				return nil, fmt.Errorf("couldn't parse subject %s", js)
			}
			return value.FromInterface(x)
		}
	)

	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		eof := err == io.EOF

		line = strings.TrimSpace(line)

		if h.echo && line != "" {
			fmt.Fprintln(w, line)
		}

		if line == "" || strings.HasPrefix(line, "#") {
			if eof {
				return nil
			}
			continue
		}

		var ss []string

		switch {
		case 0 < len(help.FindStringSubmatch(line)):
			for _, s := range strings.Split(doc(), "\n") {
				say("%s", s)
			}

		case 0 < len(put.FindStringSubmatch(line)):
			ss = put.FindStringSubmatch(line)
			s, err := h.Put(ctx, strings.TrimSpace(ss[1]))
			if err != nil {
				protest("couldn't put %s: %s", ss[1], err)
				break
			}
			h.current = s.Name
			say("using %s (%d arms)", s.Name, len(s.Arms))

		case 0 < len(use.FindStringSubmatch(line)):
			ss = use.FindStringSubmatch(line)
			s, err := h.statement(ss[1])
			if err != nil {
				protest("%s", err)
				break
			}
			h.current = s.Name
			say("using %s (%d arms)", s.Name, len(s.Arms))

		case 0 < len(rem.FindStringSubmatch(line)):
			ss = rem.FindStringSubmatch(line)
			name := ss[2]
			if err := h.storage.RemStatement(ctx, h.lib, name); err != nil {
				protest("%s", err)
				break
			}
			delete(h.statements, name)
			if h.current == name {
				h.current = ""
			}
			say("library now has %d statements", len(h.statements))

		case 0 < len(list.FindStringSubmatch(line)):
			names := make([]string, 0, len(h.statements))
			for name := range h.statements {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				marker := " "
				if name == h.current {
					marker = "*"
				}
				say("%s %s", marker, name)
			}

		case 0 < len(print.FindStringSubmatch(line)):
			ss = print.FindStringSubmatch(line)
			s, err := h.statement(ss[2])
			if err != nil {
				protest("%s", err)
				break
			}
			say("statement %s", s.Name)
			for _, l := range strings.Split(strings.TrimRight(tools.RenderStatementTree(s), "\n"), "\n") {
				say("  %s", l)
			}

		case 0 < len(try.FindStringSubmatch(line)):
			ss = try.FindStringSubmatch(line)
			s, err := h.statement("")
			if err != nil {
				protest("%s", err)
				break
			}
			subject, err := parseSubject(ss[1])
			if err != nil {
				protest("%s", err)
				break
			}
			sel, ts, err := s.Select(ctx, subject)
			if debugging && ts != nil {
				for _, m := range ts.Messages {
					say("  trace %s", JS(m))
				}
			}
			if err != nil {
				protest("selection failed: %s", err)
				break
			}
			if sel == nil {
				say("no match")
				break
			}
			say("arm      %s", sel.Label)
			say("bindings %s", JS(sel.Bindings))

		case 0 < len(run.FindStringSubmatch(line)):
			ss = run.FindStringSubmatch(line)
			s, err := h.statement("")
			if err != nil {
				protest("%s", err)
				break
			}
			subject, err := parseSubject(ss[1])
			if err != nil {
				protest("%s", err)
				break
			}
			result, matched, err := s.Evaluate(ctx, subject)
			if err != nil {
				protest("evaluation failed: %s", err)
				break
			}
			if !matched {
				say("no match")
				break
			}
			if v, is := result.(value.Value); is {
				result = value.ToInterface(v)
			}
			say("result %s", JS(result))

		case 0 < len(cover.FindStringSubmatch(line)):
			ss = cover.FindStringSubmatch(line)
			s, err := h.statement("")
			if err != nil {
				protest("%s", err)
				break
			}
			d, err := tools.ParseDomain(strings.TrimSpace(ss[1]), s.Classes())
			if err != nil {
				protest("%s", err)
				break
			}
			c := tools.CheckExhaustive(s.Arms, d, s.Classes())
			say("domain      %s", c.Domain)
			say("exhaustive  %v", c.Exhaustive)
			if 0 < len(c.Gaps) {
				say("gaps        %s", strings.Join(c.Gaps, ", "))
			}
			for _, ac := range c.Partial {
				say("guarded     %s", ac.Arm)
			}
			for _, ac := range c.Unreachable {
				say("unreachable %s", ac.Arm)
			}

		case 0 < len(debug.FindStringSubmatch(line)):
			ss = debug.FindStringSubmatch(line)
			debugging = ss[2] == "on"
			if debugging {
				say("debugging")
			} else {
				say("not debugging")
			}

		default:
			protest("unsupported command: %s", line)
		}

		if eof {
			return nil
		}
	}
}

func doc() string {
	return `
  put FILENAME      Compile and store the statement in that file
  use NAME          Make that statement the current one
  rem NAME          Remove the statement with that name
  list              List the library's statements
  print [NAME]      Show the arms of a statement (current by default)
  try SUBJECT       Select an arm for the subject (JSON)
  run SUBJECT       Evaluate the current statement for the subject (JSON)
  cover DOMAIN      Check coverage (any, bool, int:LO..HI, class:TAG, values:JSON)
  debug on/off      When debugging, show selection traces
  help              Show this documentation
`
}
