package domain

import (
	"fmt"
	"strings"
)

// Kind is the closed set of task node variants.
type Kind int

const (
	// KindLeaf is an atomic task that is never decomposed further
	KindLeaf Kind = iota
	// KindAnd is a composite task that requires every child (Composite-All)
	KindAnd
	// KindOr is a composite task satisfied by exactly one child (Composite-Any)
	KindOr
)

// ParseKind parses the textual form of a node kind.
// Accepted spellings are case-insensitive.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "leaf", "atomic":
		return KindLeaf, nil
	case "and", "all", "composite-all":
		return KindAnd, nil
	case "or", "any", "composite-any":
		return KindOr, nil
	default:
		return 0, fmt.Errorf("invalid node kind %q: must be and, or, or leaf", value)
	}
}

// Validate checks if the kind is one of the known variants
func (k Kind) Validate() error {
	switch k {
	case KindLeaf, KindAnd, KindOr:
		return nil
	default:
		return fmt.Errorf("invalid node kind %d", int(k))
	}
}

// String returns the canonical lowercase name
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		return "unknown"
	}
}

// IsComposite reports whether nodes of this kind can be decomposed
func (k Kind) IsComposite() bool {
	return k == KindAnd || k == KindOr
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
