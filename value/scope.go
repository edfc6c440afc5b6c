package value

// Scope maps names to values and remembers definition order.
type Scope struct {
	names  []string
	values map[string]Value
}

func NewScope() *Scope {
	return &Scope{values: make(map[string]Value)}
}

// Define binds name to v. Redefining a name keeps its original position.
func (s *Scope) Define(name string, v Value) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = v
}

func (s *Scope) Get(name string) (Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Each calls fn for every binding in definition order until fn returns false.
func (s *Scope) Each(fn func(name string, v Value) bool) {
	if s == nil {
		return
	}
	for _, name := range s.names {
		if !fn(name, s.values[name]) {
			return
		}
	}
}

// Module is a named collection of definitions.
type Module struct {
	// Name is empty for anonymous modules.
	Name string
	// Scope is nil when the module's contents are unknown.
	Scope *Scope
}

func (m *Module) Repr() string {
	if m.Name == "" {
		return "<module>"
	}
	return "<module " + m.Name + ">"
}

// Type is a type value such as `int` or `length`.
type Type struct {
	Name string
	Docs string
}

func (t *Type) Repr() string { return t.Name }

var types = map[string]*Type{}

func init() {
	for _, name := range []string{
		"none", "auto", "bool", "int", "float", "str", "bytes", "symbol",
		"length", "ratio", "relative", "angle", "fraction", "color",
		"gradient", "stroke", "alignment", "direction", "content", "array",
		"dictionary", "function", "arguments", "module", "type", "label",
		"selector", "datetime", "regex", "version", "any",
	} {
		types[name] = &Type{Name: name}
	}
}

// TypeByName returns the builtin type with the given name.
func TypeByName(name string) (*Type, bool) {
	t, ok := types[name]
	return t, ok
}
