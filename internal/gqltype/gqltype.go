// Package gqltype provides the mapping from relational scalar kinds to GraphQL
// scalar types. This ensures consistent type mapping across schema generation
// and predicate translation.
package gqltype

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"model-graphql/internal/scalars"
)

// Kind represents the primitive data category of a model field.
type Kind int

const (
	// KindString is the default kind for textual data.
	KindString Kind = iota
	// KindInt represents integer numeric fields.
	KindInt
	// KindFloat represents floating-point numeric fields.
	KindFloat
	// KindBoolean represents boolean fields.
	KindBoolean
	// KindTimestamp represents point-in-time fields.
	KindTimestamp
	// KindID represents opaque identifier fields.
	KindID
	// KindJSON represents JSON blob fields.
	KindJSON
)

// UnsupportedColumnTypeError indicates a field kind with no registered GraphQL
// mapping. It is fatal at schema-build time and must never be deferred to
// request time.
type UnsupportedColumnTypeError struct {
	Kind string
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("unsupported column type %q", e.Kind)
}

// ParseKind converts a descriptor kind string to a Kind. The input is
// case-insensitive and accepts the common aliases emitted by metadata sources.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text", "varchar":
		return KindString, nil
	case "int", "integer", "bigint":
		return KindInt, nil
	case "float", "double", "decimal", "numeric":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBoolean, nil
	case "timestamp", "datetime", "time":
		return KindTimestamp, nil
	case "id", "identifier", "uuid":
		return KindID, nil
	case "json", "jsonb":
		return KindJSON, nil
	default:
		return 0, &UnsupportedColumnTypeError{Kind: s}
	}
}

// String returns the canonical descriptor spelling for the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindID:
		return "identifier"
	case KindJSON:
		return "json"
	default:
		return "string"
	}
}

// Ordered reports whether the kind supports ordering comparisons
// (_gt/_gte/_lt/_lte).
func (k Kind) Ordered() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindTimestamp:
		return true
	default:
		return false
	}
}

// Text reports whether the kind supports pattern matching (_like/_ilike).
func (k Kind) Text() bool {
	return k == KindString
}

// FilterTypeName returns the shared comparison input type name for the kind.
func (k Kind) FilterTypeName() string {
	switch k {
	case KindInt:
		return "IntFilter"
	case KindFloat:
		return "FloatFilter"
	case KindBoolean:
		return "BooleanFilter"
	case KindTimestamp:
		return "TimestampFilter"
	case KindID:
		return "IDFilter"
	case KindJSON:
		return "JSONFilter"
	default:
		return "StringFilter"
	}
}

// Scalar returns the GraphQL scalar for the kind. The returned instances are
// process-wide singletons so that repeated schema compilations share type
// identity.
func Scalar(k Kind) (*graphql.Scalar, error) {
	switch k {
	case KindString:
		return graphql.String, nil
	case KindInt:
		return graphql.Int, nil
	case KindFloat:
		return graphql.Float, nil
	case KindBoolean:
		return graphql.Boolean, nil
	case KindTimestamp:
		return scalars.Timestamp(), nil
	case KindID:
		return graphql.ID, nil
	case KindJSON:
		return scalars.JSON(), nil
	default:
		return nil, &UnsupportedColumnTypeError{Kind: fmt.Sprintf("kind(%d)", int(k))}
	}
}

// MapScalar maps a kind and nullability to a GraphQL output type. Non-nullable
// fields are wrapped in NonNull.
func MapScalar(k Kind, nullable bool) (graphql.Type, error) {
	base, err := Scalar(k)
	if err != nil {
		return nil, err
	}
	if nullable {
		return base, nil
	}
	return graphql.NewNonNull(base), nil
}
