package complete

import (
	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
)

// Kind classifies a completion.
type Kind uint8

const (
	Function Kind = iota + 1
	Variable
	Module
	Type
	Constant
	Parameter
)

var kindNames = map[Kind]string{
	Function:  "function",
	Variable:  "variable",
	Module:    "module",
	Type:      "type",
	Constant:  "constant",
	Parameter: "parameter",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, errors.Newf("unknown completion kind %d", k)
	}
	return []byte(name), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return errors.Newf("unknown completion kind %q", text)
}

// TriggerSuggest is the editor command that reopens the suggestion list.
const TriggerSuggest = "editor.action.triggerSuggest"

// Completion is a single suggestion.
type Completion struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	// Apply is the text to insert when it differs from the label. "${}"
	// marks where the cursor goes.
	Apply   string `json:"apply,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Command string `json:"command,omitempty"`
}

// kindOf classifies a value for completion.
func kindOf(v value.Value) Kind {
	switch v.(type) {
	case *value.Func:
		return Function
	case *value.Module:
		return Module
	case *value.Type:
		return Type
	}
	return Constant
}
