// Package factory provides the type-erased constructor capability consumed by
// the registry and the container.
//
// A Factory knows three things about itself: how many positional arguments it
// requires, the type of value it produces, and how to produce that value once
// its arguments have been resolved. The registry only ever looks at Arity and
// Type; Invoke is reserved for the container.
//
//	f := factory.Func(func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) })
//	f.Arity() // 1
//	f.Type()  // *sql.DB
package factory

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// ErrStub is returned when a Stub factory is invoked.
var ErrStub = errors.New("factory: stub factories cannot be invoked")

var (
	anyType   = reflect.TypeFor[any]()
	errorType = reflect.TypeFor[error]()
)

// Factory is a type-erased constructor.
type Factory interface {
	// Arity is the number of positional arguments Invoke requires.
	Arity() int

	// Type describes the produced value. It is never nil.
	Type() reflect.Type

	// Invoke builds the value from resolved arguments.
	Invoke(args []any) (any, error)
}

// ArityError is returned by Invoke when the argument count is wrong.
type ArityError struct {
	Want int
	Got  int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	return "factory: want " + strconv.Itoa(e.Want) + " arguments, got " + strconv.Itoa(e.Got)
}

// ArgumentTypeError is returned by Invoke when an argument cannot be assigned
// to the matching parameter.
type ArgumentTypeError struct {
	Index int
	Want  reflect.Type
	Got   reflect.Type
}

// Error implements the error interface.
func (e *ArgumentTypeError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return "factory: argument " + strconv.Itoa(e.Index) + " has type " + got + ", want " + e.Want.String()
}

// ── Value ─────────────────────────────────────────────────────────────────────

type valueFactory struct {
	v any
	t reflect.Type
}

// Value returns a zero-arity factory that always produces v.
func Value(v any) Factory {
	t := reflect.TypeOf(v)
	if t == nil {
		t = anyType
	}
	return &valueFactory{v: v, t: t}
}

func (f *valueFactory) Arity() int         { return 0 }
func (f *valueFactory) Type() reflect.Type { return f.t }

func (f *valueFactory) Invoke(args []any) (any, error) {
	if len(args) != 0 {
		return nil, &ArityError{Want: 0, Got: len(args)}
	}
	return f.v, nil
}

// ── Func ──────────────────────────────────────────────────────────────────────

type funcFactory struct {
	fn reflect.Value
}

// Func wraps an ordinary Go function. The function must take a fixed number
// of parameters and return either T or (T, error).
//
// Func panics if fn does not have that shape; a malformed constructor is a
// programming error, not a wiring error.
func Func(fn any) Factory {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("factory: Func expects a non-nil function, got %T", fn))
	}
	t := v.Type()
	if t.IsVariadic() {
		panic(fmt.Sprintf("factory: Func does not accept variadic functions (%s)", t))
	}
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		panic(fmt.Sprintf("factory: Func expects a function returning T or (T, error), got %s", t))
	}
	return &funcFactory{fn: v}
}

func (f *funcFactory) Arity() int         { return f.fn.Type().NumIn() }
func (f *funcFactory) Type() reflect.Type { return f.fn.Type().Out(0) }

func (f *funcFactory) Invoke(args []any) (any, error) {
	t := f.fn.Type()
	if len(args) != t.NumIn() {
		return nil, &ArityError{Want: t.NumIn(), Got: len(args)}
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			if !nilable(param) {
				return nil, &ArgumentTypeError{Index: i, Want: param}
			}
			in[i] = reflect.Zero(param)
			continue
		}
		av := reflect.ValueOf(arg)
		if !av.Type().AssignableTo(param) {
			return nil, &ArgumentTypeError{Index: i, Want: param, Got: av.Type()}
		}
		in[i] = av
	}

	out := f.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// ── New ───────────────────────────────────────────────────────────────────────

type typedFactory[T any] struct {
	arity int
	build func(args []any) (T, error)
}

// New returns a factory from an explicit arity and build function. It is the
// reflection-free alternative to Func.
func New[T any](arity int, build func(args []any) (T, error)) Factory {
	return &typedFactory[T]{arity: arity, build: build}
}

func (f *typedFactory[T]) Arity() int         { return f.arity }
func (f *typedFactory[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

func (f *typedFactory[T]) Invoke(args []any) (any, error) {
	if len(args) != f.arity {
		return nil, &ArityError{Want: f.arity, Got: len(args)}
	}
	return f.build(args)
}

// ── Stub ──────────────────────────────────────────────────────────────────────

type stubFactory struct {
	arity int
	t     reflect.Type
}

// Stub returns a factory that only describes itself. It is used to lint
// declarative manifests whose constructors are not linked into the binary.
// A nil t describes an untyped (any) product.
func Stub(arity int, t reflect.Type) Factory {
	if t == nil {
		t = anyType
	}
	return &stubFactory{arity: arity, t: t}
}

func (f *stubFactory) Arity() int                { return f.arity }
func (f *stubFactory) Type() reflect.Type        { return f.t }
func (f *stubFactory) Invoke([]any) (any, error) { return nil, ErrStub }

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
