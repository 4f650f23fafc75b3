package diagram

import (
	_ "embed"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed layout.schema.json
var layoutSchemaSource string

var layoutSchema = jsonschema.MustCompileString("layout.schema.json", layoutSchemaSource)

// validateLayout checks a layout document against the embedded schema
// before it is decoded, so a half-written re-render is rejected as a unit.
func validateLayout(data []byte) error {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return err
	}
	return layoutSchema.Validate(instance)
}
