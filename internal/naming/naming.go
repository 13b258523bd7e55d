// Package naming derives GraphQL type and root field names from model names.
// Derivation is deterministic; collisions after derivation are build-time
// errors rather than auto-suffixed, so two runs over the same descriptors
// always produce the same schema.
package naming

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
)

// Config controls root field name derivation. Templates expand `{model}` to
// the descriptor model name.
type Config struct {
	ListFieldTemplate string
	ByPkFieldTemplate string
}

// DefaultConfig returns the standard templates: the list field is the model
// name itself and the lookup field appends `_by_pk`.
func DefaultConfig() Config {
	return Config{
		ListFieldTemplate: "{model}",
		ByPkFieldTemplate: "{model}_by_pk",
	}
}

// DuplicateTypeNameError indicates two models whose derived names collide.
// Fatal at schema-build time.
type DuplicateTypeNameError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateTypeNameError) Error() string {
	return fmt.Sprintf("models %q and %q both derive GraphQL name %q", e.First, e.Second, e.Name)
}

// Namer derives names and tracks reservations for collision detection.
type Namer struct {
	config Config
	types  map[string]string
	roots  map[string]string
}

// New creates a Namer. Empty template fields fall back to the defaults.
func New(cfg Config) *Namer {
	defaults := DefaultConfig()
	if cfg.ListFieldTemplate == "" {
		cfg.ListFieldTemplate = defaults.ListFieldTemplate
	}
	if cfg.ByPkFieldTemplate == "" {
		cfg.ByPkFieldTemplate = defaults.ByPkFieldTemplate
	}
	return &Namer{
		config: cfg,
		types:  make(map[string]string),
		roots:  make(map[string]string),
	}
}

// TypeName derives the object type name for a model: singular PascalCase.
// Example: "articles" -> "Article", "user_profiles" -> "UserProfile".
func (n *Namer) TypeName(modelName string) string {
	return toPascalCase(inflection.Singular(modelName))
}

// WhereInputName returns the name of a model's boolean filter input type.
func (n *Namer) WhereInputName(typeName string) string {
	return typeName + "Where"
}

// OrderByInputName returns the name of a model's ordering input type.
func (n *Namer) OrderByInputName(typeName string) string {
	return typeName + "OrderBy"
}

// InsertInputName returns the name of a model's insert payload input type.
func (n *Namer) InsertInputName(typeName string) string {
	return typeName + "InsertInput"
}

// SetInputName returns the name of a model's update payload input type.
func (n *Namer) SetInputName(typeName string) string {
	return typeName + "SetInput"
}

// ListFieldName derives the root list field name for a model.
func (n *Namer) ListFieldName(modelName string) string {
	return expand(n.config.ListFieldTemplate, modelName)
}

// ByPkFieldName derives the root by-primary-key field name for a model.
func (n *Namer) ByPkFieldName(modelName string) string {
	return expand(n.config.ByPkFieldTemplate, modelName)
}

// InsertFieldName derives the insert mutation field name for a model.
func (n *Namer) InsertFieldName(modelName string) string {
	return "insert_" + modelName
}

// UpdateFieldName derives the update mutation field name for a model.
func (n *Namer) UpdateFieldName(modelName string) string {
	return "update_" + modelName
}

// DeleteFieldName derives the delete mutation field name for a model.
func (n *Namer) DeleteFieldName(modelName string) string {
	return "delete_" + modelName
}

// ReserveType records a derived type name for the given model and fails when
// another model already claimed it.
func (n *Namer) ReserveType(typeName, modelName string) error {
	if prev, exists := n.types[typeName]; exists {
		return &DuplicateTypeNameError{Name: typeName, First: prev, Second: modelName}
	}
	n.types[typeName] = modelName
	return nil
}

// ReserveRoot records a derived root field name for the given model and fails
// when another model already claimed it.
func (n *Namer) ReserveRoot(fieldName, modelName string) error {
	if prev, exists := n.roots[fieldName]; exists {
		return &DuplicateTypeNameError{Name: fieldName, First: prev, Second: modelName}
	}
	n.roots[fieldName] = modelName
	return nil
}

func expand(template, modelName string) string {
	return strings.ReplaceAll(template, "{model}", modelName)
}

// toPascalCase converts snake_case to PascalCase.
func toPascalCase(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}
