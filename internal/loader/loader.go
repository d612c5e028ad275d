package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/buger/jsonparser"
	"github.com/kolah/openapi2postman/internal/model"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

type Result struct {
	Document *libopenapi.DocumentModel[v3.Document]
	Version  string
	Warnings []string
	RawData  []byte
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	config := &datamodel.DocumentConfiguration{
		BasePath:            filepath.Dir(absPath),
		AllowFileReferences: true,
	}

	return loadWithConfig(data, config)
}

// LoadBytes parses an in-memory document, e.g. an HTTP request body.
func LoadBytes(data []byte) (*Result, error) {
	return loadWithConfig(data, nil)
}

// Parse loads and transforms a document in one step.
func Parse(data []byte) (*model.Document, []string, error) {
	result, err := LoadBytes(data)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Transform(result)
	if err != nil {
		return nil, result.Warnings, fmt.Errorf("transforming spec: %w", err)
	}
	return doc, result.Warnings, nil
}

// CheckVersion validates the raw JSON shape and the openapi version before
// any parsing of the rest of the document happens.
func CheckVersion(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", &InputFormatError{Reason: "document is not valid JSON"}
	}

	version, err := jsonparser.GetString(data, "openapi")
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return "", &InputFormatError{Reason: "missing openapi key"}
		}
		return "", &InputFormatError{Reason: "openapi key must be a string", Err: err}
	}
	if version != model.SupportedVersion {
		return "", &UnsupportedVersionError{Version: version}
	}
	return version, nil
}

func loadWithConfig(data []byte, config *datamodel.DocumentConfiguration) (*Result, error) {
	version, err := CheckVersion(data)
	if err != nil {
		return nil, err
	}

	marked, missing, err := markUnresolvedRefs(data)
	if err != nil {
		return nil, &InputFormatError{Reason: "scanning schema references", Err: err}
	}

	var doc libopenapi.Document
	if config != nil {
		doc, err = libopenapi.NewDocumentWithConfiguration(marked, config)
	} else {
		doc, err = libopenapi.NewDocument(marked)
	}
	if err != nil {
		return nil, &InputFormatError{Reason: "parsing OpenAPI document", Err: err}
	}

	built, err := doc.BuildV3Model()
	if built == nil {
		return nil, &InputFormatError{Reason: "building OpenAPI model", Err: err}
	}

	result := &Result{
		Document: built,
		Version:  version,
		RawData:  data,
	}

	for _, name := range missing {
		result.Warnings = append(result.Warnings, fmt.Sprintf("schema component %q is referenced but not declared", name))
	}

	// Only circular references get this far with a model; the engine reports them per schema.
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}

	if built.Model.Paths == nil || built.Model.Paths.PathItems == nil || built.Model.Paths.PathItems.Len() == 0 {
		result.Warnings = append(result.Warnings, "document declares no paths; the collection will be empty")
	}

	return result, nil
}
