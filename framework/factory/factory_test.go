package factory_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-wiring/framework/factory"
)

type greeter interface{ Greet() string }

type english struct{ name string }

func (e *english) Greet() string { return "hello " + e.name }

// ── Value ─────────────────────────────────────────────────────────────────────

func TestValue_DescribesAndReturnsValue(t *testing.T) {
	t.Parallel()

	f := factory.Value(42)
	assert.Equal(t, 0, f.Arity())
	assert.Equal(t, reflect.TypeFor[int](), f.Type())

	got, err := f.Invoke(nil)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestValue_NilIsUntyped(t *testing.T) {
	t.Parallel()

	f := factory.Value(nil)
	assert.Equal(t, reflect.TypeFor[any](), f.Type())
}

func TestValue_RejectsArguments(t *testing.T) {
	t.Parallel()

	_, err := factory.Value("x").Invoke([]any{1})
	var arity *factory.ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 0, arity.Want)
	assert.Equal(t, 1, arity.Got)
}

// ── Func ──────────────────────────────────────────────────────────────────────

func TestFunc_ArityAndType(t *testing.T) {
	t.Parallel()

	f := factory.Func(func(a string, b int) *english { return &english{name: fmt.Sprint(a, b)} })
	assert.Equal(t, 2, f.Arity())
	assert.Equal(t, reflect.TypeFor[*english](), f.Type())
}

func TestFunc_Invoke(t *testing.T) {
	t.Parallel()

	f := factory.Func(func(name string) greeter { return &english{name: name} })
	got, err := f.Invoke([]any{"ada"})
	require.NoError(t, err)
	assert.Equal(t, "hello ada", got.(greeter).Greet())
}

func TestFunc_PropagatesConstructorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := factory.Func(func() (*english, error) { return nil, boom })
	_, err := f.Invoke(nil)
	assert.ErrorIs(t, err, boom)
}

func TestFunc_ArgumentTypeMismatch(t *testing.T) {
	t.Parallel()

	f := factory.Func(func(n int) int { return n })
	_, err := f.Invoke([]any{"not-an-int"})

	var typeErr *factory.ArgumentTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 0, typeErr.Index)
	assert.Equal(t, reflect.TypeFor[int](), typeErr.Want)
}

func TestFunc_NilArgument(t *testing.T) {
	t.Parallel()

	f := factory.Func(func(g greeter) bool { return g == nil })
	got, err := f.Invoke([]any{nil})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = factory.Func(func(n int) int { return n }).Invoke([]any{nil})
	assert.Error(t, err)
}

func TestFunc_WrongArgumentCount(t *testing.T) {
	t.Parallel()

	_, err := factory.Func(func(a, b int) int { return a + b }).Invoke([]any{1})
	var arity *factory.ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 2, arity.Want)
}

func TestFunc_PanicsOnMalformedConstructors(t *testing.T) {
	t.Parallel()

	cases := map[string]any{
		"not a func":     42,
		"nil func":       (func() int)(nil),
		"variadic":       func(xs ...int) int { return len(xs) },
		"no results":     func() {},
		"only error":     func() error { return nil },
		"second not err": func() (int, int) { return 0, 0 },
		"three results":  func() (int, int, error) { return 0, 0, nil },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, func() { factory.Func(fn) })
		})
	}
}

// ── New / Stub ────────────────────────────────────────────────────────────────

func TestNew_TypedFactory(t *testing.T) {
	t.Parallel()

	f := factory.New(2, func(args []any) (string, error) {
		return fmt.Sprint(args...), nil
	})
	assert.Equal(t, 2, f.Arity())
	assert.Equal(t, reflect.TypeFor[string](), f.Type())

	got, err := f.Invoke([]any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "ab", got)

	_, err = f.Invoke([]any{"a"})
	assert.Error(t, err)
}

func TestStub_DescribesButCannotInvoke(t *testing.T) {
	t.Parallel()

	f := factory.Stub(3, nil)
	assert.Equal(t, 3, f.Arity())
	assert.Equal(t, reflect.TypeFor[any](), f.Type())

	_, err := f.Invoke([]any{1, 2, 3})
	assert.ErrorIs(t, err, factory.ErrStub)
}

// ── Aggregate ─────────────────────────────────────────────────────────────────

func TestAggregate_CollectsIntoTypedSlice(t *testing.T) {
	t.Parallel()

	agg := factory.AggregateFor[greeter]()
	assert.Equal(t, "[]factory_test.greeter", agg.String())

	got, err := agg.Collect([]any{&english{name: "a"}, &english{name: "b"}})
	require.NoError(t, err)

	gs, ok := got.([]greeter)
	require.True(t, ok)
	require.Len(t, gs, 2)
	assert.Equal(t, "hello b", gs[1].Greet())
}

func TestAggregate_ZeroValueCollectsAny(t *testing.T) {
	t.Parallel()

	var agg factory.Aggregate
	assert.Equal(t, reflect.TypeFor[any](), agg.Elem())

	got, err := agg.Collect([]any{1, "two"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "two"}, got)
}

func TestAggregate_RejectsForeignElements(t *testing.T) {
	t.Parallel()

	agg := factory.AggregateOf(reflect.TypeFor[int]())
	_, err := agg.Collect([]any{1, "x"})

	var elemErr *factory.ElementTypeError
	require.ErrorAs(t, err, &elemErr)
	assert.Equal(t, 1, elemErr.Index)
}

func TestAggregate_EmptyCollection(t *testing.T) {
	t.Parallel()

	got, err := factory.AggregateFor[string]().Collect(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)
}
