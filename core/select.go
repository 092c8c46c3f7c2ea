package core

import (
	"context"

	"github.com/Comcast/casematch/match"
	"github.com/Comcast/casematch/value"
)

var (
	// TracesInitialCap is the initial capacity for Traces buffers.
	TracesInitialCap = 16

	// NoTraces turns off trace gathering in Select.  Evaluate
	// never returns traces, so a host that only calls Evaluate
	// might as well set this switch.
	NoTraces = false
)

// Traces holds trace messages.
type Traces struct {
	Messages []interface{} `json:"messages,omitempty" yaml:",omitempty"`
}

// NewTraces creates an initialized Traces.
//
// The Messages array has TracesInitialCap initial capacity.
func NewTraces() *Traces {
	return &Traces{
		Messages: make([]interface{}, 0, TracesInitialCap),
	}
}

func (ts *Traces) Add(xs ...interface{}) {
	if ts == nil || NoTraces {
		return
	}
	ts.Messages = append(ts.Messages, xs...)
}

// Selection is the winning arm and its bindings.
type Selection struct {
	Arm *Arm `json:"-" yaml:"-"`

	// Index is the position of the Arm in the Statement.
	Index int `json:"index"`

	// Label is the Arm's Label().
	Label string `json:"arm"`

	Bindings *match.Bindings `json:"bindings"`
}

// Select finds the first arm that applies to the subject.
//
// Arms are tried in order.  An arm applies if its pattern matches
// and its guard (if any) accepts the bindings.  If the guard
// rejects, the arm is lost and Select moves on to the next arm.
//
// Returns a nil Selection if no arm applies.  A guard error is
// returned as is, and no later arms are tried.
func (s *Statement) Select(ctx context.Context, subject value.Value) (*Selection, *Traces, error) {
	if !s.compiled {
		return nil, nil, &StatementNotCompiled{s}
	}

	ts := NewTraces()

	ts.Add(map[string]interface{}{
		"consider": s.Name,
		"subject":  subject,
	})

	for i, a := range s.Arms {
		bs, more, err := s.try(ctx, a, subject)
		ts.Add(more.Messages...)
		if err != nil {
			return nil, ts, err
		}
		if bs != nil {
			return &Selection{
				Arm:      a,
				Index:    i,
				Label:    a.Label(),
				Bindings: bs,
			}, ts, nil
		}
	}

	// No arm applied.

	return nil, ts, nil
}

// try evaluates this Arm to see if it applies.
func (s *Statement) try(ctx context.Context, a *Arm, subject value.Value) (*match.Bindings, *Traces, error) {

	ts := NewTraces()

	ts.Add(map[string]interface{}{
		"try": a.Label(),
	})

	bs, err := s.matcher.Attempt(a.Pattern, subject)
	if err != nil {
		ts.Add(map[string]interface{}{
			"error":   err.Error(),
			"pattern": a.Pattern.String(),
		})
		return nil, ts, err
	}

	ts.Add(map[string]interface{}{
		"bs": bs,
	})

	if bs == nil {
		// No match
		return nil, ts, nil
	}

	if a.Guard == nil {
		if a.GuardSource != nil {
			return nil, ts, &UncompiledArm{s.Name, a.Label()}
		}
		return bs, ts, nil
	}

	ok, err := a.Guard.Accept(WithStatement(ctx, s), bs.Copy())
	if err != nil {
		ts.Add(map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ts, err
	}

	ts.Add(map[string]interface{}{
		"guarded": ok,
	})

	if !ok {
		return nil, ts, nil
	}

	return bs, ts, nil
}

// Evaluate selects an arm for the subject and then runs that arm's
// Body.
//
// If no arm applies, Evaluate returns a nil result with matched
// false.  No default result is ever supplied.
//
// While a guard or body runs, the context carries this Statement
// (see StatementFromContext) so that it can evaluate the Statement
// recursively.
func (s *Statement) Evaluate(ctx context.Context, subject value.Value) (result interface{}, matched bool, err error) {
	sel, _, err := s.Select(ctx, subject)
	if err != nil {
		return nil, false, err
	}
	if sel == nil {
		return nil, false, nil
	}
	result, err = s.Exec(ctx, sel)
	return result, true, err
}

// Exec runs the body of the selected arm.
func (s *Statement) Exec(ctx context.Context, sel *Selection) (interface{}, error) {
	a := sel.Arm
	if a.Body == nil {
		if a.BodySource != nil {
			return nil, &UncompiledArm{s.Name, a.Label()}
		}
		return nil, nil
	}
	return a.Body.Exec(WithStatement(ctx, s), sel.Bindings)
}

// MustMatch is Evaluate for hosts that want a failure instead of
// matched == false.  In that case, the error is a NoMatch.
func (s *Statement) MustMatch(ctx context.Context, subject value.Value) (interface{}, error) {
	result, matched, err := s.Evaluate(ctx, subject)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, &NoMatch{
			Statement: s,
			Subject:   subject,
		}
	}
	return result, nil
}

type ctxKey int

const statementKey ctxKey = iota

// WithStatement returns a context that carries the given Statement.
func WithStatement(ctx context.Context, s *Statement) context.Context {
	return context.WithValue(ctx, statementKey, s)
}

// StatementFromContext returns the Statement (if any) whose body is
// running.
func StatementFromContext(ctx context.Context) (*Statement, bool) {
	s, is := ctx.Value(statementKey).(*Statement)
	return s, is && s != nil
}
