package tools

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/interpreters"
	"github.com/Comcast/casematch/value"

	"github.com/jsccast/yaml"
)

// ParseStatementSource parses YAML (which includes JSON).
func ParseStatementSource(bs []byte) (*core.StatementSource, error) {
	var src core.StatementSource
	if err := yaml.Unmarshal(bs, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// ReadStatementFile reads a statement source from a YAML or JSON
// file.
//
// '%inline("NAME")' is replaced with the contents of the file NAME in
// the same directory.
func ReadStatementFile(filename string) (*core.StatementSource, error) {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(filename)) == ".json" {
		return core.ParseStatementSource(bs)
	}
	src, err := ParseStatementSource(bs)
	if err != nil {
		return nil, err
	}
	if src.Name == "" {
		src.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return src, nil
}

// LoadStatementFile reads and compiles a statement.
func LoadStatementFile(ctx context.Context, filename string, reg *value.Registry, interpreters map[string]core.Interpreter) (*core.Statement, error) {
	src, err := ReadStatementFile(filename)
	if err != nil {
		return nil, err
	}
	return src.Statement(ctx, reg, interpreters)
}

// LintStatementFile compiles the statement with noop interpreters
// and a fresh registry.
func LintStatementFile(filename string) (*core.Statement, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return LoadStatementFile(ctx, filename, value.NewRegistry(), interpreters.Linting())
}

// ReadSessionFile reads a Session from YAML or JSON.
func ReadSessionFile(filename string) (*Session, error) {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	var s Session
	if strings.ToLower(filepath.Ext(filename)) == ".json" {
		err = value.DecodeJSON(bs, &s)
	} else {
		err = yaml.Unmarshal(bs, &s)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
