package core

import (
	"context"

	"github.com/Comcast/casematch/match"
)

// DefaultInterpreters will be used in Source.Compile if given nil
// interpreters.
var DefaultInterpreters = make(map[string]Interpreter)

// Interpreter can optionally compile and execute code for guards and
// bodies.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code with the given bindings.  The result
	// of previous Compile() might be provided.
	Exec(ctx context.Context, bs *match.Bindings, code interface{}, compiled interface{}) (interface{}, error)
}

// Guard decides whether a matched arm applies.
//
// A guard gets the bindings that the arm's pattern produced.  A
// false return loses the arm.  An error ends the selection.
type Guard interface {
	Accept(context.Context, *match.Bindings) (bool, error)
}

// Body computes the result of the winning arm.
type Body interface {
	Exec(context.Context, *match.Bindings) (interface{}, error)
}

// GuardFunc is a Guard implemented in Go.
type GuardFunc func(context.Context, *match.Bindings) (bool, error)

func (f GuardFunc) Accept(ctx context.Context, bs *match.Bindings) (bool, error) {
	return f(ctx, bs)
}

// BodyFunc is a Body implemented in Go.
type BodyFunc func(context.Context, *match.Bindings) (interface{}, error)

func (f BodyFunc) Exec(ctx context.Context, bs *match.Bindings) (interface{}, error) {
	return f(ctx, bs)
}

// Source can be compiled to a Guard or a Body.
type Source struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Code        interface{} `json:"code"`
}

// Copy makes a shallow copy.
func (s *Source) Copy() *Source {
	if s == nil {
		return nil
	}
	return &Source{
		Interpreter: s.Interpreter,
		Code:        s.Code,
	}
}

// compile finds the interpreter and compiles the code.
func (s *Source) compile(ctx context.Context, interpreters map[string]Interpreter) (Interpreter, interface{}, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[s.Interpreter]
	if !have {
		return nil, nil, InterpreterNotFound
	}

	x, err := interpreter.Compile(ctx, s.Code)
	if err != nil {
		return nil, nil, err
	}

	return interpreter, x, nil
}

// CompileBody attempts to compile the Source into a Body using the
// given interpreters, which defaults to DefaultInterpreters.
func (s *Source) CompileBody(ctx context.Context, interpreters map[string]Interpreter) (Body, error) {
	interpreter, x, err := s.compile(ctx, interpreters)
	if err != nil {
		return nil, err
	}

	return BodyFunc(func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
		return interpreter.Exec(ctx, bs, s.Code, x)
	}), nil
}

// CompileGuard attempts to compile the Source into a Guard.
//
// The code must return a boolean.  Anything else results in a
// GuardNotBoolean error.  The arm name is only used for that error.
func (s *Source) CompileGuard(ctx context.Context, interpreters map[string]Interpreter, arm string) (Guard, error) {
	interpreter, x, err := s.compile(ctx, interpreters)
	if err != nil {
		return nil, err
	}

	return GuardFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
		r, err := interpreter.Exec(ctx, bs, s.Code, x)
		if err != nil {
			return false, err
		}
		b, is := r.(bool)
		if !is {
			return false, &GuardNotBoolean{
				Arm: arm,
				Got: r,
			}
		}
		return b, nil
	}), nil
}
