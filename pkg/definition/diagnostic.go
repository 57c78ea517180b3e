package definition

import (
	"errors"
	"fmt"

	"meshconf/pkg/model"
)

var (
	ErrUnrecognizedAttribute    = errors.New("unrecognized attribute")
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrDuplicateNode            = errors.New("duplicate node")
)

// Diagnostic is a single validation failure tied to a node and, where it
// applies, a key.
type Diagnostic struct {
	Kind error
	Node string
	Key  string
}

func (d Diagnostic) Error() string {
	switch d.Kind {
	case ErrUnrecognizedAttribute:
		return fmt.Sprintf("%s: %s is unfamiliar", d.Node, d.Key)
	case ErrMissingRequiredAttribute:
		return fmt.Sprintf("%s: missing %s", d.Node, d.Key)
	default:
		return fmt.Sprintf("%s: %v", d.Node, d.Kind)
	}
}

func (d Diagnostic) Unwrap() error { return d.Kind }

// Diagnostics collects every failure of a run. An empty value means the run
// is valid.
type Diagnostics []Diagnostic

// Failed reports whether any diagnostic was recorded.
func (ds Diagnostics) Failed() bool { return len(ds) > 0 }

// Err joins all diagnostics into one error, or returns nil.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, 0, len(ds))
	for _, d := range ds {
		errs = append(errs, d)
	}
	return errors.Join(errs...)
}

func unrecognized(node, key string) Diagnostic {
	return Diagnostic{Kind: ErrUnrecognizedAttribute, Node: node, Key: key}
}

// Missing builds the diagnostic for a node lacking a required attribute.
func Missing(node string, key model.Attribute) Diagnostic {
	return Diagnostic{Kind: ErrMissingRequiredAttribute, Node: node, Key: string(key)}
}

// Duplicate builds the diagnostic for a node name seen twice.
func Duplicate(node string) Diagnostic {
	return Diagnostic{Kind: ErrDuplicateNode, Node: node}
}
