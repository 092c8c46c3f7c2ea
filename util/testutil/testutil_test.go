package testutil

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Comcast/casematch/value"
)

type Person struct {
	Name string
	Age  int
}

func TestJS(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "simple struct",
			arg:  Person{"John Doe", 30},
			want: `{"Name":"John Doe","Age":30}`,
		},
		{
			name: "object",
			arg:  value.NewObject("Point", "x", value.Int(1)),
			want: `{"@class":"Point","x":1}`,
		},
		{
			name: "unit in a sequence",
			arg:  value.Seq{value.Unit{}, value.Str("a"), value.Bool(true)},
			want: `[null,"a",true]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JS(tt.arg); got != tt.want {
				t.Errorf("JS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "JSON string",
			arg:  `{"name":"John Doe","age":30}`,
			want: map[string]interface{}{"name": "John Doe", "age": json.Number("30")},
		},
		{
			name: "JSON bytes",
			arg:  []byte(`[9007199254740993]`),
			want: []interface{}{json.Number("9007199254740993")},
		},
		{
			name: "neither string nor bytes",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDwimjsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("didn't panic")
		}
	}()
	Dwimjs("hello world")
}

func TestDwimv(t *testing.T) {
	v := Dwimv(`{"@class":"Point","x":9007199254740993}`)
	if !value.Equal(v, value.NewObject("Point", "x", value.Int(9007199254740993))) {
		t.Fatal(v)
	}
}
