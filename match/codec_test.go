package match

import (
	"encoding/json"
	"testing"

	. "github.com/Comcast/casematch/util/testutil"
	"github.com/Comcast/casematch/value"

	"gopkg.in/yaml.v2"
)

func TestDecodeErrors(t *testing.T) {
	reg := testRegistry(t)
	for _, js := range []string{
		`"?*xs"`,
		`["?*a","?*b"]`,
		`["?**x"]`,
		`{"a":"?*x"}`,
		`{"@lit":1,"b":2}`,
		`{"@or":1}`,
		`{"@or":[1],"x":2}`,
		`{"@as":"x","@pattern":1}`,
		`{"@as":"?","@pattern":1}`,
		`{"@as":"?x"}`,
		`{"@class":""}`,
		`{"@class":3}`,
		`{"@class":"Point","@args":3}`,
		`{"@class":"Point","@bogus":3}`,
		`{"@rest":"nope"}`,
		`{"@bogus":1}`,
		`1.5`,
	} {
		if p, err := Decode(Dwimjs(js), reg); err == nil {
			t.Errorf("%s decoded as %s", js, p)
		}
	}
}

func TestDecodeVariables(t *testing.T) {
	for _, s := range []string{"?", "_"} {
		p, err := Decode(s, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, is := p.(*Wildcard); !is {
			t.Fatalf("%q gave %T", s, p)
		}
	}
	p, err := Decode("?likes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c, is := p.(*Capture); !is || c.Name != "likes" {
		t.Fatalf("%#v", p)
	}
	p, err = Decode([]interface{}{"?*_"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s := p.(*Sequence); s.Rest == nil || s.Rest.Name != "" {
		t.Fatalf("%#v", p)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	for _, js := range []string{
		`1`,
		`"tacos"`,
		`null`,
		`true`,
		`"?x"`,
		`"?"`,
		`{"@lit":"?x"}`,
		`{"@lit":"_"}`,
		`{"@lit":[1,2]}`,
		`{"@or":[0,1,"?"]}`,
		`["?a","?*mid","?z"]`,
		`["?*"]`,
		`{"name":"?n","@rest":"?others"}`,
		`{"@class":"Branch","@args":["?",{"@class":"Leaf"}],"right":{"@class":"Leaf"}}`,
		`{"@as":"?n","@pattern":{"@or":[1,2]}}`,
		`{"@lit":{"@lit":"?x"}}`,
		`{"@lit":["?*x"]}`,
		`{"a":{"@lit":{"b":"?*"}}}`,
	} {
		p, err := Decode(Dwimjs(js), reg)
		if err != nil {
			t.Fatalf("%s: %v", js, err)
		}
		q, err := Decode(Encode(p), reg)
		if err != nil {
			t.Fatalf("%s: %v", js, err)
		}
		if p.String() != q.String() {
			t.Fatalf("%s: %s became %s", js, p, q)
		}
		// Encoded patterns are JSON-friendly.
		if _, err := json.Marshal(Encode(p)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDecodeYAML(t *testing.T) {
	reg := testRegistry(t)
	src := `
"@class": Branch
"@args":
  - "?v"
  - "@class": Leaf
  - "@as": "?right"
    "@pattern":
      "@class": Tree
`
	var x interface{}
	if err := yaml.Unmarshal([]byte(src), &x); err != nil {
		t.Fatal(err)
	}
	p, err := Decode(x, reg)
	if err != nil {
		t.Fatal(err)
	}
	if s := p.String(); s != "Branch(v, Leaf(), Tree() as right)" {
		t.Fatal(s)
	}

	v := value.MustFromInterface(Dwimjs(`{"@class":"Branch","value":2,"left":{"@class":"Leaf"},"right":{"@class":"Leaf"}}`))
	bs, err := (&Matcher{Classes: reg}).Attempt(p, v)
	if err != nil {
		t.Fatal(err)
	}
	if js := JS(bs); js != `{"v":2,"right":{"@class":"Leaf"}}` {
		t.Fatal(js)
	}
}
