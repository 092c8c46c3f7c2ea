package tools

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/value"
)

// Case is a subject along with what a statement should do with it.
type Case struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Subject interface{} `json:"subject" yaml:"subject"`

	// Arm is the label of the arm that should be selected.  If
	// NoMatch is true, no arm should apply.
	Arm string `json:"arm,omitempty" yaml:"arm,omitempty"`

	NoMatch bool `json:"noMatch,omitempty" yaml:"noMatch,omitempty"`

	// Result is an optional pattern that the arm's result must
	// match.
	Result interface{} `json:"result,omitempty" yaml:"result,omitempty"`

	// GuardSource is optional source for a guard that is given
	// the bindings from matching the Result pattern.
	GuardSource *core.Source `json:"guard,omitempty" yaml:"guard,omitempty"`

	// Timeout is the optional timeout for this case.
	// Session.DefaultTimeout is the default value.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Session is a sequence of Cases for one statement.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Cases []Case `json:"cases" yaml:"cases"`

	// Interpreters are used (if necessary) to compile any
	// GuardSources.
	Interpreters map[string]core.Interpreter `json:"-" yaml:"-"`

	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty" yaml:"defaultTimeout,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Failure reports the first Case that didn't go as expected.
type Failure struct {
	Index  int
	Doc    string
	Reason string
}

func (f *Failure) Error() string {
	if f.Doc != "" {
		return fmt.Sprintf("case %d (%s): %s", f.Index, f.Doc, f.Reason)
	}
	return fmt.Sprintf("case %d: %s", f.Index, f.Reason)
}

// Run processes all the Cases in the Session.
//
// Returns a *Failure for the first case that fails.  Other errors
// (from guards and bodies) are returned as is.
func (s *Session) Run(ctx context.Context, st *core.Statement) error {
	for i, c := range s.Cases {
		if err := s.run(ctx, st, i, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) run(ctx context.Context, st *core.Statement, i int, c Case) error {
	fail := func(format string, args ...interface{}) error {
		return &Failure{
			Index:  i,
			Doc:    c.Doc,
			Reason: fmt.Sprintf(format, args...),
		}
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = s.DefaultTimeout
	}
	if 0 < timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	subject, err := value.FromInterface(c.Subject)
	if err != nil {
		return fail("bad subject: %s", err)
	}

	sel, _, err := st.Select(ctx, subject)
	if err != nil {
		return err
	}

	if s.Verbose {
		if sel == nil {
			log.Printf("case %d: %s matched nothing", i, subject)
		} else {
			log.Printf("case %d: %s selected %s with %s", i, subject, sel.Label, sel.Bindings)
		}
	}

	if sel == nil {
		if c.NoMatch {
			return nil
		}
		return fail("%s matched nothing", subject)
	}
	if c.NoMatch {
		return fail("%s selected %s", subject, sel.Label)
	}
	if c.Arm != "" && c.Arm != sel.Label {
		return fail("%s selected %s, not %s", subject, sel.Label, c.Arm)
	}

	if c.Result == nil && c.GuardSource == nil {
		return nil
	}

	x, err := st.Exec(ctx, sel)
	if err != nil {
		return err
	}
	result, is := x.(value.Value)
	if !is {
		if result, err = value.FromInterface(x); err != nil {
			return fail("unexpected result %#v: %s", x, err)
		}
	}

	bs := match.NewBindings()
	if c.Result != nil {
		p, err := match.Decode(c.Result, st.Classes())
		if err != nil {
			return fail("bad result pattern: %s", err)
		}
		if bs, err = (&match.Matcher{Classes: st.Classes()}).Attempt(p, result); err != nil {
			return err
		}
		if bs == nil {
			return fail("result %s didn't match %s", result, p)
		}
	}

	if c.GuardSource != nil {
		g, err := c.GuardSource.CompileGuard(ctx, s.Interpreters, fmt.Sprintf("case %d", i))
		if err != nil {
			return err
		}
		ok, err := g.Accept(ctx, bs)
		if err != nil {
			return err
		}
		if !ok {
			return fail("guard rejected result %s", result)
		}
	}

	return nil
}
