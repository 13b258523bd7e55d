package model

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"model-graphql/internal/gqltype"
)

// fileModel mirrors the on-disk descriptor shape. Kept separate from Model so
// file-format concerns (tags, decode hooks) stay out of the domain type.
type fileModel struct {
	Name          string             `mapstructure:"name"`
	Fields        []fileField        `mapstructure:"fields"`
	Relationships []fileRelationship `mapstructure:"relationships"`
}

type fileField struct {
	Name       string       `mapstructure:"name"`
	Kind       gqltype.Kind `mapstructure:"kind"`
	Nullable   bool         `mapstructure:"nullable"`
	PrimaryKey bool         `mapstructure:"primary_key"`
}

type fileRelationship struct {
	Name        string        `mapstructure:"name"`
	Target      string        `mapstructure:"target"`
	Cardinality string        `mapstructure:"cardinality"`
	Mapping     []fileKeyPair `mapstructure:"mapping"`
	Inverse     string        `mapstructure:"inverse"`
}

type fileKeyPair struct {
	Local   string `mapstructure:"local"`
	Foreign string `mapstructure:"foreign"`
}

// LoadFile reads model descriptors from a YAML or JSON models file. The file
// holds a top-level `models` list; field kinds use the descriptor spellings
// accepted by gqltype.ParseKind.
func LoadFile(path string) ([]Model, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read models file %q: %w", path, err)
	}

	if !v.IsSet("models") {
		return nil, fmt.Errorf("models file %q has no models list", path)
	}

	var raw []fileModel
	if err := v.UnmarshalKey(
		"models",
		&raw,
		viper.DecodeHook(stringToKindHookFunc()),
	); err != nil {
		return nil, fmt.Errorf("failed to decode models file %q: %w", path, err)
	}

	models := make([]Model, 0, len(raw))
	for _, fm := range raw {
		m := Model{Name: fm.Name}
		for _, ff := range fm.Fields {
			m.Fields = append(m.Fields, Field{
				Name:       ff.Name,
				Kind:       ff.Kind,
				Nullable:   ff.Nullable,
				PrimaryKey: ff.PrimaryKey,
			})
		}
		for _, fr := range fm.Relationships {
			rel := Relationship{
				Name:        fr.Name,
				Target:      fr.Target,
				Cardinality: Cardinality(fr.Cardinality),
				Inverse:     fr.Inverse,
			}
			for _, fp := range fr.Mapping {
				rel.Mapping = append(rel.Mapping, KeyPair{Local: fp.Local, Foreign: fp.Foreign})
			}
			m.Relationships = append(m.Relationships, rel)
		}
		models = append(models, m)
	}

	return models, nil
}

// stringToKindHookFunc decodes descriptor kind strings into gqltype.Kind,
// surfacing UnsupportedColumnTypeError for unknown spellings at load time.
func stringToKindHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(gqltype.Kind(0)) {
			return data, nil
		}
		return gqltype.ParseKind(data.(string))
	}
}
