package factory

import (
	"reflect"
	"strconv"
)

// Aggregate describes how the members of a group combine into one collection
// value: a slice of the group's element type.
//
// The zero Aggregate collects into []any.
type Aggregate struct {
	elem reflect.Type
}

// AggregateFor returns the aggregate collecting values of type T.
func AggregateFor[T any]() Aggregate {
	return Aggregate{elem: reflect.TypeFor[T]()}
}

// AggregateOf returns the aggregate collecting values of type t. It is how a
// group's element type is inferred from its first member's factory.
func AggregateOf(t reflect.Type) Aggregate {
	return Aggregate{elem: t}
}

// Elem returns the element type.
func (a Aggregate) Elem() reflect.Type {
	if a.elem == nil {
		return anyType
	}
	return a.elem
}

// Type returns the collection type, []Elem.
func (a Aggregate) Type() reflect.Type {
	return reflect.SliceOf(a.Elem())
}

// String implements fmt.Stringer.
func (a Aggregate) String() string {
	return a.Type().String()
}

// ElementTypeError is returned by Collect when a member value does not fit
// the element type.
type ElementTypeError struct {
	Index int
	Want  reflect.Type
	Got   reflect.Type
}

// Error implements the error interface.
func (e *ElementTypeError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return "factory: collection element " + strconv.Itoa(e.Index) + " has type " + got + ", want " + e.Want.String()
}

// Collect builds a []Elem from values, in order.
func (a Aggregate) Collect(values []any) (any, error) {
	elem := a.Elem()
	out := reflect.MakeSlice(reflect.SliceOf(elem), 0, len(values))
	for i, v := range values {
		if v == nil {
			if !nilable(elem) {
				return nil, &ElementTypeError{Index: i, Want: elem}
			}
			out = reflect.Append(out, reflect.Zero(elem))
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(elem) {
			return nil, &ElementTypeError{Index: i, Want: elem, Got: rv.Type()}
		}
		out = reflect.Append(out, rv)
	}
	return out.Interface(), nil
}
