package storage

import (
	"context"
	"testing"

	"github.com/Comcast/casematch/core"
	"github.com/Comcast/casematch/value"
)

func TestImpl(t *testing.T) {
	var _ Storage = &MemStorage{}
}

func signSource(name string) *core.StatementSource {
	return &core.StatementSource{
		Name: name,
		Arms: []core.ArmSource{
			{Name: "negative", Pattern: -1},
			{Name: "zero", Pattern: 0},
			{Name: "positive", Pattern: 1},
		},
	}
}

func TestMemStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()

	if err := s.MakeLibrary(ctx, "simpsons"); err != nil {
		t.Fatal(err)
	}
	if err := s.MakeLibrary(ctx, "simpsons"); err == nil {
		t.Fatal("made a library twice")
	}

	for _, name := range []string{"b", "a"} {
		if err := s.PutStatement(ctx, "simpsons", signSource(name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.PutStatement(ctx, "simpsons", signSource("")); err == nil {
		t.Fatal("accepted a statement without a name")
	}

	names, err := s.ListStatements(ctx, "simpsons")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatal(names)
	}

	src, err := s.GetStatement(ctx, "simpsons", "a")
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "a" || len(src.Arms) != 3 {
		t.Fatalf("%#v", src)
	}

	if _, err = s.GetStatement(ctx, "simpsons", "c"); err != NotFound {
		t.Fatal(err)
	}

	if err = s.RemStatement(ctx, "simpsons", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err = s.GetStatement(ctx, "simpsons", "a"); err != NotFound {
		t.Fatal(err)
	}

	if err = s.RemLibrary(ctx, "simpsons"); err != nil {
		t.Fatal(err)
	}
	if names, _ = s.ListStatements(ctx, "simpsons"); len(names) != 0 {
		t.Fatal(names)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	for _, name := range []string{"sign", "other"} {
		if err := s.PutStatement(ctx, "lib", signSource(name)); err != nil {
			t.Fatal(err)
		}
	}
	statements, err := Load(ctx, s, "lib", value.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(statements) != 2 {
		t.Fatal(statements)
	}
	sel, _, err := statements["sign"].Select(ctx, value.Int(0))
	if err != nil {
		t.Fatal(err)
	}
	if sel == nil || sel.Label != "zero" {
		t.Fatalf("%#v", sel)
	}
}
