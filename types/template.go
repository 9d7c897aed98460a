package types

import (
	"fmt"
	"reflect"
)

// Marker tags a method or a template with a role the engine looks up.
type Marker string

const (
	MarkerTest       Marker = "test"       // Method is a test
	MarkerIgnore     Marker = "ignore"     // Method or template is skipped
	MarkerParameters Marker = "parameters" // Method provides parameter sets
	MarkerSuite      Marker = "suite"      // Method builds a legacy suite
)

// RunnerKind selects the runner a template asks to be run with.
type RunnerKind string

const (
	RunWithDefault       RunnerKind = ""
	RunWithParameterized RunnerKind = "parameterized"
	RunWithSuite         RunnerKind = "suite"
)

// Invoker is the callable handle of a method. Static methods are invoked with
// a nil receiver.
type Invoker func(receiver any) (any, error)

// Method is a resolved handle to one method of a template.
type Method struct {
	Name    string
	Static  bool
	Public  bool
	Markers []Marker
	Invoke  Invoker
}

// HasMarker reports whether the method carries marker m.
func (m *Method) HasMarker(marker Marker) bool {
	for _, each := range m.Markers {
		if each == marker {
			return true
		}
	}
	return false
}

// TestMethod declares a public instance method marked as a test.
func TestMethod(name string, body func(receiver any) error, extra ...Marker) *Method {
	return &Method{
		Name:    name,
		Public:  true,
		Markers: append([]Marker{MarkerTest}, extra...),
		Invoke: func(receiver any) (any, error) {
			return nil, body(receiver)
		},
	}
}

// ParametersMethod declares a public static data provider.
func ParametersMethod(name string, provide func() (any, error)) *Method {
	return &Method{
		Name:    name,
		Static:  true,
		Public:  true,
		Markers: []Marker{MarkerParameters},
		Invoke: func(any) (any, error) {
			return provide()
		},
	}
}

// SuiteMethod declares a public static legacy suite factory.
func SuiteMethod(name string, build func() (any, error)) *Method {
	return &Method{
		Name:    name,
		Static:  true,
		Public:  true,
		Markers: []Marker{MarkerSuite},
		Invoke: func(any) (any, error) {
			return build()
		},
	}
}

// Constructor builds a template instance from an argument tuple.
type Constructor struct {
	Params []reflect.Type
	New    func(args []any) (any, error)
}

// Instantiate checks args against the declared parameters and calls New.
func (c *Constructor) Instantiate(args []any) (any, error) {
	if len(args) != len(c.Params) {
		return nil, &InstantiationError{
			Err: fmt.Errorf("wrong number of arguments: want %d, got %d", len(c.Params), len(args)),
		}
	}
	for i, arg := range args {
		want := c.Params[i]
		if arg == nil {
			switch want.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
				continue
			}
			return nil, &InstantiationError{Err: fmt.Errorf("argument %d: nil is not assignable to %s", i, want)}
		}
		if got := reflect.TypeOf(arg); !got.AssignableTo(want) {
			return nil, &InstantiationError{Err: fmt.Errorf("argument %d: %s is not assignable to %s", i, got, want)}
		}
	}
	instance, err := c.New(args)
	if err != nil {
		return nil, &InstantiationError{Err: err}
	}
	return instance, nil
}

// Template is the read-only model of a test class: its constructors, its
// marked methods and, for suites, its child templates. Methods are indexed by
// marker as they are added so lookups never rescan the method set.
type Template struct {
	Name         string
	Constructors []*Constructor
	Methods      []*Method
	Children     []*Template
	RunWith      RunnerKind
	Ignored      bool

	byMarker map[Marker][]*Method
}

// NewTemplate creates an empty template with the given name.
func NewTemplate(name string) *Template {
	return &Template{
		Name:     name,
		byMarker: make(map[Marker][]*Method),
	}
}

// WithConstructor adds a constructor taking the given parameter types.
func (t *Template) WithConstructor(newFn func(args []any) (any, error), params ...reflect.Type) *Template {
	t.Constructors = append(t.Constructors, &Constructor{Params: params, New: newFn})
	return t
}

// WithMethods adds methods in declaration order.
func (t *Template) WithMethods(methods ...*Method) *Template {
	if t.byMarker == nil {
		t.byMarker = make(map[Marker][]*Method)
	}
	for _, m := range methods {
		t.Methods = append(t.Methods, m)
		for _, marker := range m.Markers {
			t.byMarker[marker] = append(t.byMarker[marker], m)
		}
	}
	return t
}

// WithChildren sets the templates a suite template aggregates.
func (t *Template) WithChildren(children ...*Template) *Template {
	t.Children = append(t.Children, children...)
	return t
}

// WithRunner asks for a specific runner kind.
func (t *Template) WithRunner(kind RunnerKind) *Template {
	t.RunWith = kind
	return t
}

// WithIgnored marks the whole template as skipped.
func (t *Template) WithIgnored() *Template {
	t.Ignored = true
	return t
}

// MethodsWith returns the methods carrying marker in declaration order.
func (t *Template) MethodsWith(marker Marker) []*Method {
	if t.byMarker == nil {
		var found []*Method
		for _, m := range t.Methods {
			if m.HasMarker(marker) {
				found = append(found, m)
			}
		}
		return found
	}
	return append([]*Method(nil), t.byMarker[marker]...)
}

// OnlyConstructor returns the single constructor, failing when the template
// declares none or several.
func (t *Template) OnlyConstructor() (*Constructor, error) {
	if len(t.Constructors) != 1 {
		return nil, &ConfigurationError{
			Template: t.Name,
			Err:      fmt.Errorf("test class should have exactly one public constructor, found %d", len(t.Constructors)),
		}
	}
	return t.Constructors[0], nil
}
