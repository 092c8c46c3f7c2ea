// Package storage defines a persistent library of statement sources.
//
// A Storage holds any number of libraries.  Each library maps
// statement names to StatementSources.
package storage

import (
	"context"
	"errors"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/value"
)

// NotFound is returned by GetStatement when the library or statement
// doesn't exist.
var NotFound = errors.New("not found")

// Storage is a persistence interface for statement libraries.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	MakeLibrary(ctx context.Context, lib string) error

	RemLibrary(ctx context.Context, lib string) error

	// PutStatement writes the source under its Name.
	PutStatement(ctx context.Context, lib string, src *core.StatementSource) error

	GetStatement(ctx context.Context, lib, name string) (*core.StatementSource, error)

	RemStatement(ctx context.Context, lib, name string) error

	// ListStatements returns the sorted names in the library.
	ListStatements(ctx context.Context, lib string) ([]string, error)
}

// Load compiles every statement in the library.
//
// Classes are registered in reg as each source is compiled.
func Load(ctx context.Context, s Storage, lib string, reg *value.Registry, interpreters map[string]core.Interpreter) (map[string]*core.Statement, error) {
	names, err := s.ListStatements(ctx, lib)
	if err != nil {
		return nil, err
	}
	acc := make(map[string]*core.Statement, len(names))
	for _, name := range names {
		src, err := s.GetStatement(ctx, lib, name)
		if err != nil {
			return nil, err
		}
		st, err := src.Statement(ctx, reg, interpreters)
		if err != nil {
			return nil, errors.New(err.Error() + ": statement " + name + " in library " + lib)
		}
		acc[name] = st
	}
	return acc, nil
}
