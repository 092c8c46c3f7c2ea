// Package interpreters gathers the standard interpreters.
package interpreters

import (
	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/interpreters/goja"
	"github.com/Comcast/casematch/interpreters/noop"
)

// Standard returns a fresh map of the standard interpreters.
//
// "goja", "ecmascript", and "ecmascript-5.1" all name the Goja
// interpreter.
func Standard() map[string]core.Interpreter {
	is := make(map[string]core.Interpreter)

	es := goja.NewInterpreter()
	is["goja"] = es
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es

	is["noop"] = noop.NewInterpreter()

	return is
}

// Linting returns the Standard names all resolved to a silent noop
// interpreter so that statements can be loaded without running any
// code.
func Linting() map[string]core.Interpreter {
	names := make([]string, 0, 8)
	for name := range Standard() {
		names = append(names, name)
	}
	return noop.Interpreters(true, names...)
}
