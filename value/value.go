// Package value models the runtime values the completion engine reasons
// about: literals, functions, modules and types.
package value

import (
	"strconv"
	"strings"
	"unicode"
)

// Value is any value of the document language.
type Value interface {
	// Repr returns the value as it would be written in code.
	Repr() string
}

type (
	None    struct{}
	Auto    struct{}
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Symbol  string
	Numeric string

	// Dyn is a value known only by its source text.
	Dyn struct {
		Text string
		Type string
	}
)

func (None) Repr() string      { return "none" }
func (Auto) Repr() string      { return "auto" }
func (b Bool) Repr() string    { return strconv.FormatBool(bool(b)) }
func (i Int) Repr() string     { return strconv.FormatInt(int64(i), 10) }
func (s Str) Repr() string     { return strconv.Quote(string(s)) }
func (s Symbol) Repr() string  { return string(s) }
func (n Numeric) Repr() string { return string(n) }
func (d Dyn) Repr() string     { return d.Text }

func (f Float) Repr() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// TypeName returns the name of the type of v.
func TypeName(v Value) string {
	switch v := v.(type) {
	case None:
		return "none"
	case Auto:
		return "auto"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case Symbol:
		return "symbol"
	case Numeric:
		return numericType(string(v))
	case *Func:
		return "function"
	case *Module:
		return "module"
	case *Type:
		return "type"
	case Dyn:
		if v.Type != "" {
			return v.Type
		}
	}
	return "any"
}

func numericType(text string) string {
	unit := strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsDigit(r) || r == '.' || r == '-' || r == 'e'
	})
	switch unit {
	case "%":
		return "ratio"
	case "deg", "rad":
		return "angle"
	case "fr":
		return "fraction"
	}
	return "length"
}

// ParseLiteral interprets literal source text. Text that is not a literal
// yields a Dyn value.
func ParseLiteral(text string) Value {
	text = strings.TrimSpace(text)
	switch text {
	case "none":
		return None{}
	case "auto":
		return Auto{}
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if strings.HasPrefix(text, `"`) {
		if s, err := strconv.Unquote(text); err == nil {
			return Str(s)
		}
		return Dyn{Text: text, Type: "str"}
	}
	if text == "" || !(unicode.IsDigit(rune(text[0])) || text[0] == '-' || text[0] == '.') {
		return Dyn{Text: text}
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return Float(f)
	}
	if isNumeric(text) {
		return Numeric(text)
	}
	return Dyn{Text: text}
}

func isNumeric(text string) bool {
	i := strings.IndexFunc(text, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	if i <= 0 {
		return false
	}
	unit := text[i:]
	if unit == "%" {
		return true
	}
	for _, r := range unit {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
