// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package schema implements the schema-driven type and signature model
// (spec §3-§4.2, C2): the tagged Type/ConstantValue variants, the
// probabilistic TypeGuess descriptor, call conventions, and Schema
// concretization.
package schema

import "fmt"

// Kind enumerates the nine tags a Type or ConstantValue can carry.
type Kind int

const (
	Number Kind = iota
	String
	Boolean
	Null
	Undefined
	Function
	Object
	Array
	Class
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case Null:
		return "Null"
	case Undefined:
		return "Undefined"
	case Function:
		return "Function"
	case Object:
		return "Object"
	case Array:
		return "Array"
	case Class:
		return "Class"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// AllKinds lists every Kind in a fixed, deterministic order. Used whenever
// a full kind distribution needs to be built or iterated.
var AllKinds = []Kind{Number, String, Boolean, Null, Undefined, Function, Object, Array, Class}

// Field is one entry of an ordered Object-kind field mapping.
type Field struct {
	Name string
	Type *Type
}

// Type (T) is the tagged variant from spec §3: a single Kind, plus the
// payload required by that kind (Object fields, Array element type, or a
// Class endpoint name).
type Type struct {
	Kind   Kind
	Fields []Field // valid iff Kind == Object; ordered
	Elem   *Type   // valid iff Kind == Array
	Cls    string  // valid iff Kind == Class
}

func NewScalar(k Kind) *Type { return &Type{Kind: k} }

func NewObject(fields ...Field) *Type { return &Type{Kind: Object, Fields: fields} }

func NewArray(elem *Type) *Type { return &Type{Kind: Array, Elem: elem} }

func NewClass(name string) *Type { return &Type{Kind: Class, Cls: name} }

// Field looks up a named field on an Object type.
func (t *Type) Field(name string) (*Type, bool) {
	if t == nil || t.Kind != Object {
		return nil, false
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Equal reports structural equality, used by tests and by the dedup logic
// in mutation operators.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Object:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	case Array:
		return t.Elem.Equal(o.Elem)
	case Class:
		return t.Cls == o.Cls
	default:
		return true
	}
}

// FieldValue is one entry of an ordered Object-kind ConstantValue.
type FieldValue struct {
	Name  string
	Value *Value
}

// Value (CV) is the ConstantValue variant from spec §3: parallel to Type,
// except Class carries no concrete payload — classes are only produced by
// calls, never materialized as a literal.
type Value struct {
	Kind    Kind
	Number  float64
	Str     string
	Boolean bool
	Fields  []FieldValue // valid iff Kind == Object
	Elems   []*Value     // valid iff Kind == Array
}

func NewNumberValue(v float64) *Value   { return &Value{Kind: Number, Number: v} }
func NewStringValue(v string) *Value    { return &Value{Kind: String, Str: v} }
func NewBooleanValue(v bool) *Value     { return &Value{Kind: Boolean, Boolean: v} }
func NewNullValue() *Value              { return &Value{Kind: Null} }
func NewUndefinedValue() *Value         { return &Value{Kind: Undefined} }
func NewFunctionValue() *Value          { return &Value{Kind: Function} }
func NewObjectValue(f ...FieldValue) *Value { return &Value{Kind: Object, Fields: f} }
func NewArrayValue(e ...*Value) *Value  { return &Value{Kind: Array, Elems: e} }

// TypeOf returns the Kind tag of v, used by callers that only need the
// shallow tag (e.g. signalPrio-style triage, TG.kind lookups).
func (v *Value) TypeOf() Kind {
	if v == nil {
		return Undefined
	}
	return v.Kind
}
