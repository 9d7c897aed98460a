package types

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var intType = reflect.TypeOf(0)

func TestConstructor_Instantiate(t *testing.T) {
	ctor := &Constructor{
		Params: []reflect.Type{intType, reflect.TypeOf((*error)(nil)).Elem()},
		New: func(args []any) (any, error) {
			return args[0].(int), nil
		},
	}

	tests := []struct {
		name    string
		args    []any
		want    any
		wantErr string
	}{
		{name: "matching args", args: []any{3, errors.New("x")}, want: 3},
		{name: "nil for interface", args: []any{4, nil}, want: 4},
		{name: "too few", args: []any{1}, wantErr: "wrong number of arguments: want 2, got 1"},
		{name: "wrong type", args: []any{"one", nil}, wantErr: "argument 0: string is not assignable to int"},
		{name: "nil for int", args: []any{nil, nil}, wantErr: "argument 0: nil is not assignable to int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctor.Instantiate(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, IsInstantiationError(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstructor_InstantiateWrapsConstructorError(t *testing.T) {
	ctor := &Constructor{New: func([]any) (any, error) { return nil, errors.New("boom") }}
	_, err := ctor.Instantiate(nil)
	require.Error(t, err)
	assert.True(t, IsInstantiationError(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestTemplate_MethodsWith(t *testing.T) {
	noop := func(any) error { return nil }
	tmpl := NewTemplate("Sample").WithMethods(
		TestMethod("first", noop),
		ParametersMethod("data", func() (any, error) { return nil, nil }),
		TestMethod("second", noop, MarkerIgnore),
	)

	tests := tmpl.MethodsWith(MarkerTest)
	require.Len(t, tests, 2)
	assert.Equal(t, "first", tests[0].Name)
	assert.Equal(t, "second", tests[1].Name)

	ignored := tmpl.MethodsWith(MarkerIgnore)
	require.Len(t, ignored, 1)
	assert.Equal(t, "second", ignored[0].Name)

	providers := tmpl.MethodsWith(MarkerParameters)
	require.Len(t, providers, 1)
	assert.True(t, providers[0].Static)

	assert.Empty(t, tmpl.MethodsWith(MarkerSuite))
}

func TestTemplate_MethodsWithOnLiteral(t *testing.T) {
	tmpl := &Template{Name: "Literal", Methods: []*Method{{Name: "t", Markers: []Marker{MarkerTest}}}}
	require.Len(t, tmpl.MethodsWith(MarkerTest), 1)
}

func TestTemplate_OnlyConstructor(t *testing.T) {
	newFn := func([]any) (any, error) { return struct{}{}, nil }

	_, err := NewTemplate("None").OnlyConstructor()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "found 0")

	_, err = NewTemplate("Two").WithConstructor(newFn).WithConstructor(newFn, intType).OnlyConstructor()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Two: test class should have exactly one public constructor, found 2")

	ctor, err := NewTemplate("One").WithConstructor(newFn, intType).OnlyConstructor()
	require.NoError(t, err)
	assert.Len(t, ctor.Params, 1)
}

func TestTestMethod_InvokePassesReceiver(t *testing.T) {
	var seen any
	m := TestMethod("check", func(receiver any) error {
		seen = receiver
		return Failf("bad %d", 1)
	})

	_, err := m.Invoke("instance")
	assert.Equal(t, "instance", seen)
	assert.EqualError(t, err, "bad 1")
	assert.True(t, m.HasMarker(MarkerTest))
	assert.False(t, m.HasMarker(MarkerIgnore))
}
