package pkgdb

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/external.schema.json
var externalSchemaBytes []byte

var (
	externalSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// getExternalSchema compiles the embedded JSON schema once and returns it.
func getExternalSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(externalSchemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("external.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		externalSchema, compileErr = c.Compile("external.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return externalSchema, compileErr
}

// validateExternalFile checks raw external-sources JSON against the schema.
// The external file is hand-editable, so the error message lists each
// offending location rather than the first parse failure encountered.
func validateExternalFile(data []byte) error {
	schema, err := getExternalSchema()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var issues []string
	collectIssues(validationErr, &issues)
	if len(issues) == 0 {
		return validationErr
	}
	return fmt.Errorf("%s", strings.Join(issues, "; "))
}

// collectIssues walks the validation error tree and gathers leaf messages
// with their instance locations.
func collectIssues(ve *jsonschema.ValidationError, issues *[]string) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		msg := ve.Error()
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}
		*issues = append(*issues, fmt.Sprintf("%s: %s", path, msg))
		return
	}
	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}
