package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/dataplane-io/datahealth/schemas"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// definitionSchema is the compiled JSON Schema for dataset definition files.
var definitionSchema *jsonschema.Schema

func init() {
	definitionSchema = mustCompileSchema(schemas.DatasetSchemaJSON, "dataset.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateDefinitionBytes validates raw definition YAML and returns one
// message per violation, empty when the document is valid.
func ValidateDefinitionBytes(data []byte) []string {
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	if yamlDoc == nil {
		return nil
	}

	return validateAgainstSchema(definitionSchema, convertToJSONCompatible(yamlDoc))
}

// ValidateDefinitionPath validates a definition file, or every definition
// file in a directory. YAML files are checked against the schema; CSV
// inventories are checked by loading them into a scratch registry. Keys of
// the returned map are paths relative to path; only files with violations
// appear.
func ValidateDefinitionPath(path string) (map[string][]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset path not found: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading dataset directory: %w", err)
		}
		files = files[:0]
		for _, entry := range entries {
			if entry.IsDir() || !isDefinitionFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}

	violations := make(map[string][]string)
	for _, file := range files {
		var errs []string
		if filepath.Ext(file) == ".csv" {
			if csvErr := NewRegistry().AddCSV(file); csvErr != nil {
				errs = []string{csvErr.Error()}
			}
		} else {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("reading dataset file: %w", err)
			}
			errs = ValidateDefinitionBytes(data)
		}
		if len(errs) == 0 {
			continue
		}
		rel, relErr := filepath.Rel(path, file)
		if relErr != nil || rel == "." {
			rel = filepath.Base(file)
		}
		violations[rel] = errs
	}
	return violations, nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible rewrites YAML-decoded values into types the schema
// validator understands. The YAML decoder produces time.Time for unquoted
// timestamps; those become RFC 3339 strings.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
