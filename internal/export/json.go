package export

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/tidwall/pretty"

	"github.com/jonathan/pts-radar/internal/pipeline"
	"github.com/jonathan/pts-radar/internal/schemas"
)

// MarshalRun returns the indented JSON form of result after checking it
// against the run schema.
func MarshalRun(result *pipeline.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	if err := schemas.ValidateRun(data); err != nil {
		return nil, err
	}
	return pretty.Pretty(data), nil
}

// WriteJSON writes result to path as schema-checked, indented JSON.
func WriteJSON(path string, result *pipeline.Result) error {
	data, err := MarshalRun(result)
	if err != nil {
		return &Error{Path: path, Message: "failed to encode run", Cause: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &Error{Path: path, Message: "failed to write file", Cause: err}
	}
	return nil
}
