// Package forms holds the per-use-site configuration of reservation forms.
// Every booking modal is one Definition instead of its own controller.
package forms

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrUnknownForm = errors.New("unknown form")

const (
	DefaultNameField  = "nomComplet"
	DefaultEmailField = "email"
	DefaultPhoneField = "telephone"
)

type Definition struct {
	Name        string            `yaml:"name"`
	Endpoint    string            `yaml:"endpoint"`
	Collections []string          `yaml:"collections"`
	ItemKey     string            `yaml:"item_key"`
	Fields      []string          `yaml:"fields"`
	Required    []string          `yaml:"required"`
	AnyOf       [][]string        `yaml:"any_of"`
	NameField   string            `yaml:"name_field"`
	EmailField  string            `yaml:"email_field"`
	PhoneField  string            `yaml:"phone_field"`
	TextFields  []string          `yaml:"text_fields"`
	Static      map[string]string `yaml:"static"`
	AutoClose   time.Duration     `yaml:"auto_close"`
}

// WithDefaults fills unset field names and the contact any-of group.
func (d Definition) WithDefaults(autoClose time.Duration) Definition {
	if d.NameField == "" {
		d.NameField = DefaultNameField
	}
	if d.EmailField == "" {
		d.EmailField = DefaultEmailField
	}
	if d.PhoneField == "" {
		d.PhoneField = DefaultPhoneField
	}
	if d.ItemKey == "" {
		d.ItemKey = "itemId"
	}
	if len(d.AnyOf) == 0 {
		d.AnyOf = [][]string{{d.EmailField, d.PhoneField}}
	}
	if d.AutoClose == 0 {
		d.AutoClose = autoClose
	}
	return d
}

// Accepts reports whether items of collection may be reserved through d.
// An empty list accepts every collection.
func (d Definition) Accepts(collection string) bool {
	if len(d.Collections) == 0 {
		return true
	}
	for _, c := range d.Collections {
		if c == collection {
			return true
		}
	}
	return false
}

type Registry struct {
	defs map[string]Definition
}

func NewRegistry(defs []Definition, autoClose time.Duration) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("duplicate form %q", d.Name)
		}
		r.defs[d.Name] = d.WithDefaults(autoClose)
	}
	return r, nil
}

func (r *Registry) Get(name string) (Definition, error) {
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownForm, name)
	}
	return d, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.defs))
	for n := range r.defs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

type file struct {
	Forms []Definition `yaml:"forms"`
}

// LoadFile parses and schema-checks a forms YAML file.
func LoadFile(path string, autoClose time.Duration) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forms file: %w", err)
	}
	return Parse(raw, autoClose)
}

func Parse(raw []byte, autoClose time.Duration) (*Registry, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse forms: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode forms: %w", err)
	}
	return NewRegistry(f.Forms, autoClose)
}
