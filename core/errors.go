package core

// These errors are user errors, not internal errors.

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Comcast/casematch/value"
)

// InterpreterNotFound occurs when you try to Compile a Source, and the
// required interpreter isn't in the given map of interpreters.
var InterpreterNotFound = errors.New("interpreter not found")

// StatementNotCompiled occurs when a Statement is used (say via
// Select()) before it has been Compile()ed.
type StatementNotCompiled struct {
	Statement *Statement
}

func (e *StatementNotCompiled) Error() string {
	return `statement "` + e.Statement.Name + `" not compiled`
}

// NoMatch is returned by MustMatch when no arm applies.
type NoMatch struct {
	Statement *Statement
	Subject   value.Value
}

func (e *NoMatch) Error() string {
	return `no arm of statement "` + e.Statement.Name + `" matches ` + e.Subject.String()
}

// GuardNotBoolean occurs when a guard's code returns something other
// than a boolean.
type GuardNotBoolean struct {
	Arm string
	Got interface{}
}

func (e *GuardNotBoolean) Error() string {
	return fmt.Sprintf(`guard for arm "%s" returned %#v (%T) instead of a boolean`, e.Arm, e.Got, e.Got)
}

// BadArm reports a problem compiling an arm.
type BadArm struct {
	Statement string
	Index     int
	Name      string
	Err       error
}

func (e *BadArm) Error() string {
	name := e.Name
	if name == "" {
		name = "#" + strconv.Itoa(e.Index)
	}
	return `arm ` + name + ` in statement "` + e.Statement + `": ` + e.Err.Error()
}

func (e *BadArm) Unwrap() error {
	return e.Err
}

// UncompiledArm occurs when an arm has a GuardSource or BodySource
// that hasn't been compiled.  Usually, this compilation happens as
// part of Statement.Compile().
type UncompiledArm struct {
	Statement string
	Arm       string
}

func (e *UncompiledArm) Error() string {
	return `uncompiled source for arm "` + e.Arm + `" in statement "` + e.Statement + `"`
}
