package value

import (
	"sync"
	"testing"
)

func treeRegistry(t *testing.T) *Registry {
	r := NewRegistry()
	if err := r.Register("Tree", nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("Branch", []string{"value", "left", "right"}, "Tree"); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("Leaf", nil, "Tree"); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRegisterIdempotent(t *testing.T) {
	r := treeRegistry(t)
	if err := r.Register("Branch", []string{"value", "left", "right"}, "Tree"); err != nil {
		t.Fatalf("identical re-registration: %v", err)
	}
}

func TestRegisterConflict(t *testing.T) {
	r := treeRegistry(t)
	err := r.Register("Branch", []string{"value"}, "Tree")
	if err == nil {
		t.Fatal("expected a conflict")
	}
	if _, is := err.(*ConflictingClass); !is {
		t.Fatalf("%T %v", err, err)
	}
}

func TestRegisterUnknownSuper(t *testing.T) {
	r := NewRegistry()
	err := r.Register("Branch", nil, "Tree")
	if _, is := err.(*UnknownClass); !is {
		t.Fatalf("%T %v", err, err)
	}
}

func TestRegisterRepeatedPositional(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("P", []string{"x", "x"}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestFreeze(t *testing.T) {
	r := treeRegistry(t)
	r.Freeze()
	if err := r.Register("Twig", nil, "Tree"); err != ErrFrozen {
		t.Fatalf("got %v", err)
	}
	// Identical re-registration is still fine.
	if err := r.Register("Leaf", nil, "Tree"); err != nil {
		t.Fatal(err)
	}
}

func TestInheritPositional(t *testing.T) {
	r := treeRegistry(t)
	if err := r.Register("RedBranch", nil, "Branch"); err != nil {
		t.Fatal(err)
	}
	c, have := r.Lookup("RedBranch")
	if !have {
		t.Fatal("not registered")
	}
	if !sameStrings(c.Positional, []string{"value", "left", "right"}) {
		t.Fatal(c.Positional)
	}
}

func TestIsSubclass(t *testing.T) {
	r := treeRegistry(t)
	if err := r.Register("RedBranch", nil, "Branch"); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		tag, ancestor string
		want          bool
	}{
		{"Branch", "Branch", true},
		{"Branch", "Tree", true},
		{"RedBranch", "Tree", true},
		{"Leaf", "Branch", false},
		{"Tree", "Branch", false},
		{"Unknown", "Tree", false},
	}
	for _, tt := range tests {
		if got := r.IsSubclass(tt.tag, tt.ancestor); got != tt.want {
			t.Errorf("IsSubclass(%s, %s) = %v", tt.tag, tt.ancestor, got)
		}
	}
}

func TestLeaves(t *testing.T) {
	r := treeRegistry(t)
	leaves := r.Leaves("Tree")
	if !sameStrings(leaves, []string{"Branch", "Leaf"}) {
		t.Fatal(leaves)
	}
	if leaves := r.Leaves("Leaf"); !sameStrings(leaves, []string{"Leaf"}) {
		t.Fatal(leaves)
	}
}

func TestConcurrentReads(t *testing.T) {
	r := treeRegistry(t)
	r.Freeze()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !r.IsSubclass("Leaf", "Tree") {
					t.Error("Leaf isn't a Tree")
					return
				}
			}
		}()
	}
	wg.Wait()
}
