/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// ClassKey is the map key that turns a decoded map into an Object.
//
// {"@class":"Branch","value":5} becomes Branch(value=5).
const ClassKey = "@class"

// NotAnInteger occurs when FromInterface is given a number with a
// fractional part.  Values have no floating-point variant.
type NotAnInteger struct {
	Number float64
}

func (e *NotAnInteger) Error() string {
	return fmt.Sprintf("%v is not an integer", e.Number)
}

// UnsupportedType occurs when FromInterface doesn't know what to do
// with a Go value.
type UnsupportedType struct {
	X interface{}
}

func (e *UnsupportedType) Error() string {
	return fmt.Sprintf("unsupported value type %T", e.X)
}

// FromInterface converts data as produced by encoding/json or a YAML
// decoder into a Value.
//
// Both map[string]interface{} and map[interface{}]interface{} (with
// string keys) are accepted.  A map with a string "@class" property
// becomes an *Object whose fields are the other properties.
func FromInterface(x interface{}) (Value, error) {
	switch vv := x.(type) {
	case nil:
		return Unit{}, nil
	case Value:
		return vv, nil
	case bool:
		return Bool(vv), nil
	case string:
		return Str(vv), nil
	case int:
		return Int(vv), nil
	case int8:
		return Int(vv), nil
	case int16:
		return Int(vv), nil
	case int32:
		return Int(vv), nil
	case int64:
		return Int(vv), nil
	case uint:
		return Int(vv), nil
	case uint8:
		return Int(vv), nil
	case uint16:
		return Int(vv), nil
	case uint32:
		return Int(vv), nil
	case uint64:
		if vv > math.MaxInt64 {
			return nil, &UnsupportedType{x}
		}
		return Int(vv), nil
	case float32:
		return fromFloat(float64(vv))
	case float64:
		return fromFloat(vv)
	case json.Number:
		n, err := vv.Int64()
		if err != nil {
			if !strings.ContainsAny(string(vv), ".eE") {
				return nil, fmt.Errorf("integer %s is out of range", vv)
			}
			f, err := vv.Float64()
			if err != nil {
				return nil, err
			}
			return fromFloat(f)
		}
		return Int(n), nil
	case []interface{}:
		acc := make(Seq, len(vv))
		for i, y := range vv {
			v, err := FromInterface(y)
			if err != nil {
				return nil, err
			}
			acc[i] = v
		}
		return acc, nil
	case map[string]interface{}:
		return fromMap(vv)
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, fmt.Errorf("map key %#v (%T) isn't a string", k, k)
			}
			m[s] = v
		}
		return fromMap(m)
	default:
		return nil, &UnsupportedType{x}
	}
}

func fromFloat(f float64) (Value, error) {
	// float64(math.MaxInt64) is 2^63, which doesn't fit.
	if f != math.Trunc(f) || math.IsInf(f, 0) || f < math.MinInt64 || 0x1p63 <= f {
		return nil, &NotAnInteger{f}
	}
	return Int(int64(f)), nil
}

func fromMap(m map[string]interface{}) (Value, error) {
	fields := make(map[string]Value, len(m))
	for k, x := range m {
		if k == ClassKey {
			continue
		}
		v, err := FromInterface(x)
		if err != nil {
			return nil, err
		}
		fields[k] = v
	}
	if c, have := m[ClassKey]; have {
		tag, is := c.(string)
		if !is || tag == "" {
			return nil, errors.New(`"@class" must be a non-empty string`)
		}
		return &Object{
			Class:  tag,
			Fields: fields,
		}, nil
	}
	return Map(fields), nil
}

// MustFromInterface is FromInterface that panics on error.
func MustFromInterface(x interface{}) Value {
	v, err := FromInterface(x)
	if err != nil {
		panic(err)
	}
	return v
}

// ToInterface converts a Value into plain Go data suitable for
// encoding/json (and for handing to script interpreters).
//
// An *Object becomes a map with an "@class" property.
func ToInterface(v Value) interface{} {
	switch vv := v.(type) {
	case nil, Unit:
		return nil
	case Int:
		return int64(vv)
	case Str:
		return string(vv)
	case Bool:
		return bool(vv)
	case Seq:
		acc := make([]interface{}, len(vv))
		for i, x := range vv {
			acc[i] = ToInterface(x)
		}
		return acc
	case Map:
		acc := make(map[string]interface{}, len(vv))
		for k, x := range vv {
			acc[k] = ToInterface(x)
		}
		return acc
	case *Object:
		if vv == nil {
			return nil
		}
		acc := make(map[string]interface{}, len(vv.Fields)+1)
		for k, x := range vv.Fields {
			acc[k] = ToInterface(x)
		}
		acc[ClassKey] = vv.Class
		return acc
	}
	return nil
}

// MarshalJSON renders the Object with its "@class" property.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToInterface(o))
}

func (Unit) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// DecodeJSON is json.Unmarshal except that numbers are decoded as
// json.Number, so integers beyond 2^53 keep their precision when
// they get to FromInterface.
func DecodeJSON(js []byte, x interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	if err := dec.Decode(x); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// Parse decodes JSON into a Value.
func Parse(js string) (Value, error) {
	var x interface{}
	if err := DecodeJSON([]byte(js), &x); err != nil {
		return nil, err
	}
	return FromInterface(x)
}
