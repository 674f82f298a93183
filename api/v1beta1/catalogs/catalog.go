// Package catalogs defines the Catalog configuration kind: the static
// collection of all known rules and their applicability conditions.
package catalogs

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/epodak/grule/api"
	"github.com/epodak/grule/api/v1beta1"
	"github.com/epodak/grule/pkg/rule"
	"github.com/epodak/grule/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/catalog/main.go -o catalog.v1beta1.json

var (
	//go:embed catalog.yaml
	defaultCatalogYAML []byte

	//go:embed catalog.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for catalogs.
	ValidKinds = []string{
		"Catalog",
	}

	// DefaultValidator validates catalogs against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/catalog.v1beta1.json", schemaJSON)
)

// Catalog is the static collection of rule definitions.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Catalog struct {
	// Rules maps rule identifiers to their definitions.
	Rules map[string]*rule.Rule `json:"rules,omitempty" jsonschema:"title=Rules"`

	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new empty [Catalog] with type metadata set.
func New() *Catalog {
	return &Catalog{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       "Catalog",
		},
	}
}

// Default returns the embedded default catalog.
func Default() *Catalog {
	c, err := NewLoaderFromBytes(defaultCatalogYAML).Load()
	if err != nil {
		// The embedded catalog is validated by tests; failing to load it is
		// a build defect.
		panic(fmt.Errorf("load embedded catalog: %w", err))
	}

	return c
}

// EnsureDefaults fills in type metadata, propagates map keys to rule names,
// and compiles match expressions. Malformed entries are skipped with a
// warning rather than failing the whole catalog.
func (c *Catalog) EnsureDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = v1beta1.APIVersion
	}

	if c.Kind == "" {
		c.Kind = "Catalog"
	}

	for name, r := range c.Rules {
		if r == nil {
			slog.Warn("skipping empty catalog entry", slog.String("rule", name))
			delete(c.Rules, name)

			continue
		}

		r.Name = name

		err := r.Compile()
		if err != nil {
			slog.Warn("skipping malformed catalog entry",
				slog.String("rule", name),
				slog.Any("error", err),
			)
			delete(c.Rules, name)
		}
	}
}

// List returns the catalog's rules ordered by name, for deterministic
// evaluation and display.
func (c *Catalog) List() []*rule.Rule {
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}

	slices.Sort(names)

	rules := make([]*rule.Rule, 0, len(names))
	for _, name := range names {
		rules = append(rules, c.Rules[name])
	}

	return rules
}

// Get returns the rule with the given identifier, or nil.
func (c *Catalog) Get(name string) *rule.Rule {
	return c.Rules[name]
}

func (c Catalog) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the catalog to YAML.
func (c Catalog) MarshalYAML() ([]byte, error) {
	type alias Catalog

	return api.MarshalYAML(alias(c))
}

// GetPath returns the path to the catalog configuration file.
func GetPath() string {
	return api.GetConfigPath("catalog.yaml")
}

// WriteDefault writes the embedded default catalog to the specified path.
// Using `force` will back up and replace an existing file.
func WriteDefault(path string, force bool) error {
	return api.WriteDefaultFile(path, defaultCatalogYAML, force, "catalog") //nolint:wrapcheck // Return the original error.
}

// Loader loads and validates catalog files.
type Loader struct {
	validator Validator
	yamlError *yaml.ErrorWrapper
	data      []byte
}

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*Loader)

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(l *Loader) {
		l.validator = v
	}
}

// NewLoaderFromBytes creates a [Loader] from byte data.
func NewLoaderFromBytes(data []byte, opts ...LoaderOpt) *Loader {
	l := &Loader{
		validator: DefaultValidator,
		data:      data,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.yamlError = yaml.NewErrorWrapper(
		yaml.WithSource(l.data),
	)

	return l
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile(path string, opts ...LoaderOpt) (*Loader, error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	return NewLoaderFromBytes(data, opts...), nil
}

// Validate validates the catalog data against the schema without loading it.
func (l *Loader) Validate() error {
	var anyCatalog any

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(&anyCatalog)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	if l.validator != nil {
		err = l.validator.Validate(anyCatalog)
		if err != nil {
			return l.yamlError.Wrap(err)
		}
	}

	return nil
}

// Load parses and returns the catalog.
func (l *Loader) Load() (*Catalog, error) {
	c := New()

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(c)
	if err != nil {
		return nil, l.yamlError.Wrap(err)
	}

	c.EnsureDefaults()

	return c, nil
}
