package value

import "github.com/arjunmahishi/scopeq/syntax"

// Func is a function value. Its representation is one of *Native, *Closure
// or *With.
type Func struct {
	repr Repr
}

// Repr is the representation of a function.
type Repr interface {
	isFuncRepr()
}

// Native is a function with a declared signature.
type Native struct {
	Name string
	Docs string
	// Params lists the parameters in declaration order.
	Params []*ParamSpec
	// Scope holds definitions reachable through field access.
	Scope *Scope
}

// Closure is a user-defined function.
type Closure struct {
	Name string
	// Node is the closure's syntax node.
	Node *syntax.Node
}

// With is a function with some arguments already applied.
type With struct {
	Func *Func
	// Args is the argument list that was applied, if known.
	Args *syntax.Node
}

func (*Native) isFuncRepr()  {}
func (*Closure) isFuncRepr() {}
func (*With) isFuncRepr()    {}

func NewFunc(r Repr) *Func { return &Func{repr: r} }

// Inner returns the function's representation.
func (f *Func) Inner() Repr { return f.repr }

// With returns f with args pre-applied.
func (f *Func) With(args *syntax.Node) *Func {
	return NewFunc(&With{Func: f, Args: args})
}

// Name returns the function's name, if it has one.
func (f *Func) Name() string {
	switch r := f.repr.(type) {
	case *Native:
		return r.Name
	case *Closure:
		return r.Name
	case *With:
		return r.Func.Name()
	}
	return ""
}

// Docs returns the function's documentation.
func (f *Func) Docs() string {
	switch r := f.repr.(type) {
	case *Native:
		return r.Docs
	case *With:
		return r.Func.Docs()
	}
	return ""
}

// Scope returns definitions associated with the function.
func (f *Func) Scope() *Scope {
	if n, ok := f.repr.(*Native); ok {
		return n.Scope
	}
	return nil
}

func (f *Func) Repr() string {
	if name := f.Name(); name != "" {
		return name
	}
	return "(..) => .."
}

// ParamSpec describes one function parameter.
type ParamSpec struct {
	Name string
	Docs string
	// Input describes the values the parameter accepts.
	Input CastInfo
	// Default is an example or default expression for the parameter.
	Default string

	Positional bool
	Named      bool
	Variadic   bool
	Settable   bool
	Required   bool
}

// CastInfo describes the values a parameter accepts.
type CastInfo interface {
	isCastInfo()
}

type (
	// CastAny accepts any value.
	CastAny struct{}
	// CastValue accepts one specific value.
	CastValue struct {
		Value Value
		Docs  string
	}
	// CastType accepts values of a type.
	CastType struct {
		Type *Type
	}
	// CastUnion accepts what any of its members accepts.
	CastUnion []CastInfo
)

func (CastAny) isCastInfo()   {}
func (CastValue) isCastInfo() {}
func (CastType) isCastInfo()  {}
func (CastUnion) isCastInfo() {}

// CastOf returns the cast info of a builtin type name, falling back to
// CastAny for unknown names.
func CastOf(typeName string) CastInfo {
	if t, ok := TypeByName(typeName); ok && typeName != "any" {
		return CastType{Type: t}
	}
	return CastAny{}
}
