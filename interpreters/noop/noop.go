// Package noop provides an interpreter that doesn't run anything.
//
// Useful for loading statements to lint, render, or analyze them
// when the real interpreters aren't available (or desired).
package noop

import (
	"context"
	"log"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/match"
)

// Interpreter is a core.Interpreter whose code doesn't do anything.
//
// Guards accept (Exec returns true) unless Reject is set.  Bodies
// return true too, which hosts should ignore.
type Interpreter struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool

	// Reject makes guards reject.
	Reject bool
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, bs *match.Bindings, code interface{}, compiled interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for execution")
	}
	return !i.Reject, nil
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Interpreters returns a map that resolves each of the given names
// to a noop Interpreter.
func Interpreters(silent bool, names ...string) map[string]core.Interpreter {
	i := &Interpreter{
		Silent: silent,
	}
	acc := make(map[string]core.Interpreter, len(names))
	for _, name := range names {
		acc[name] = i
	}
	return acc
}
