package match

import (
	"errors"
	"testing"

	. "github.com/Comcast/casematch/util/testutil"
	"github.com/Comcast/casematch/value"
)

func TestValidateRejects(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		title   string
		pattern string
		check   func(error) bool
	}{
		{"inconsistent or", `{"@or":["?x","?y"]}`, func(err error) bool {
			e, is := err.(*InconsistentOr)
			return is && e.Alt == 1
		}},
		{"or missing capture", `{"@or":[["?x"],[1]]}`, func(err error) bool {
			_, is := err.(*InconsistentOr)
			return is
		}},
		{"empty or", `{"@or":[]}`, func(err error) bool {
			return err == ErrEmptyOr
		}},
		{"duplicate capture in sequence", `["?x","?x"]`, func(err error) bool {
			e, is := err.(*DuplicateCapture)
			return is && e.Name == "x"
		}},
		{"duplicate capture across as", `{"@as":"?x","@pattern":["?x"]}`, func(err error) bool {
			_, is := err.(*DuplicateCapture)
			return is
		}},
		{"duplicate with rest", `["?x","?*x"]`, func(err error) bool {
			_, is := err.(*DuplicateCapture)
			return is
		}},
		{"duplicate in or alternative", `{"@or":[["?x","?x"],["?x","?x"]]}`, func(err error) bool {
			_, is := err.(*DuplicateCapture)
			return is
		}},
		{"duplicate with mapping rest", `{"a":"?x","@rest":"?x"}`, func(err error) bool {
			_, is := err.(*DuplicateCapture)
			return is
		}},
		{"unknown class", `{"@class":"Nope"}`, func(err error) bool {
			e, is := err.(*UnknownClassPattern)
			return is && e.Tag == "Nope"
		}},
		{"too many positional", `{"@class":"Point","@args":[1,2,3]}`, func(err error) bool {
			e, is := err.(*PositionalArity)
			return is && e.Have == 3 && e.Max == 2
		}},
		{"positional on a class without any", `{"@class":"Person","@args":["?n"]}`, func(err error) bool {
			e, is := err.(*PositionalArity)
			return is && e.Max == 0
		}},
		{"field twice", `{"@class":"Point","@args":["?a"],"x":1}`, func(err error) bool {
			e, is := err.(*DuplicateKey)
			return is && e.Key == "x"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			_, err := Decode(Dwimjs(tt.pattern), reg)
			if err == nil {
				t.Fatalf("%s should have been rejected", tt.pattern)
			}
			if !tt.check(err) {
				t.Fatalf("unexpected error %T %v", err, err)
			}
		})
	}
}

func TestConstructorsReject(t *testing.T) {
	x := &Capture{"x"}

	if _, err := Bind("_"); err == nil {
		t.Fatal("bound _")
	}
	if _, err := Bind(""); err == nil {
		t.Fatal("bound the empty name")
	}
	if _, err := NewOr(); err != ErrEmptyOr {
		t.Fatal(err)
	}
	if _, err := NewOr(x, Lit(value.Int(1))); err == nil {
		t.Fatal("accepted an inconsistent or")
	}
	if _, err := NewSequence(x, x); err == nil {
		t.Fatal("accepted a duplicate")
	}
	if _, err := NewStarSequence(&SeqRest{At: 3}, x); err == nil {
		t.Fatal("accepted a rest marker out of range")
	} else if _, is := err.(*BadRest); !is {
		t.Fatalf("%T %v", err, err)
	}
	if _, err := NewMapping([]KeyPattern{{"a", Wild()}, {"a", Wild()}}, ""); err == nil {
		t.Fatal("accepted a repeated key")
	}
	if _, err := NewAs(nil, "n"); !errors.Is(err, ErrNilPattern) {
		t.Fatal(err)
	}
	if _, err := NewClass(value.NewRegistry(), "Point", nil); err == nil {
		t.Fatal("accepted an unregistered class")
	}
}

// These patterns have no encoding, so Encode couldn't give them back.
func TestConstructorsRejectUnencodable(t *testing.T) {
	if _, err := Bind("*x"); err == nil {
		t.Fatal("bound *x")
	} else if _, is := err.(*BadCaptureName); !is {
		t.Fatalf("%T %v", err, err)
	}
	if _, err := NewAs(Wild(), "*x"); err == nil {
		t.Fatal("bound *x")
	}
	if _, err := NewSequence(&Capture{"*x"}); err == nil {
		t.Fatal("accepted a capture that looks like a rest marker")
	}
	if _, err := NewMapping([]KeyPattern{{"@lit", &Capture{"x"}}}, ""); err == nil {
		t.Fatal("accepted a directive as a key")
	} else if e, is := err.(*ReservedKey); !is || e.Key != "@lit" {
		t.Fatalf("%T %v", err, err)
	}
	if _, err := NewMapping(nil, "*rest"); err == nil {
		t.Fatal("accepted *rest")
	}

	reg := testRegistry(t)
	if _, err := NewClass(reg, "Person", nil, FieldPattern{"@args", Wild()}); err == nil {
		t.Fatal("accepted a directive as a field")
	}
}

func TestConstructorDefensiveCopy(t *testing.T) {
	elems := []Pattern{Lit(value.Int(1)), Lit(value.Int(2))}
	p := Must(NewSequence(elems...))
	elems[0] = Lit(value.Int(3))
	if s := p.String(); s != "[1, 2]" {
		t.Fatal(s)
	}
}

func TestValidateAcceptsConsistentOr(t *testing.T) {
	reg := testRegistry(t)
	// Same names, different order.
	p, err := Decode(Dwimjs(`{"@or":[["?a","?b"],{"b":"?b","a":"?a"}]}`), reg)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Captures(); len(got) != 2 {
		t.Fatal(got)
	}
}

func TestValidateWithoutRegistry(t *testing.T) {
	// Without a registry, class tags aren't checked.
	p := &Class{Tag: "Whatever", Positional: []Pattern{Wild()}}
	if err := Validate(p, nil); err != nil {
		t.Fatal(err)
	}
	if err := Validate(p, value.NewRegistry()); err == nil {
		t.Fatal("expected an error")
	}
}
