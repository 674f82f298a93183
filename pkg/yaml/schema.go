package yaml

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a Go configuration object into a JSON schema,
// pulling titles and descriptions from Go doc comments.
type SchemaGenerator struct {
	obj        any
	modulePath string
	srcDirs    []string
}

// NewSchemaGenerator creates a [SchemaGenerator] for the given object.
// srcDirs are filesystem paths to the packages whose doc comments should be
// included, relative to the generator's working directory.
func NewSchemaGenerator(obj any, modulePath string, srcDirs ...string) *SchemaGenerator {
	return &SchemaGenerator{
		obj:        obj,
		modulePath: modulePath,
		srcDirs:    srcDirs,
	}
}

// Generate produces the JSON schema document.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{}

	for _, dir := range g.srcDirs {
		err := r.AddGoComments(g.modulePath, dir)
		if err != nil {
			// Comments enrich the schema but are not required for correctness.
			slog.Warn("could not add Go comments to schema",
				slog.String("dir", dir),
				slog.Any("error", err),
			)
		}
	}

	s := r.Reflect(g.obj)

	jsData, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(jsData, '\n'), nil
}
