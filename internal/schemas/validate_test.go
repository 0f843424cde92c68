package schemas

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRun = `{
	"run_id": "0d8a9a5e-3c1e-4f58-9b0a-5d6f0c9a1b2c",
	"started_at": "2024-05-10T20:15:00+09:00",
	"duration_ms": 1830,
	"params": {"pct_threshold": "5", "volume_floor": 1000, "max_pages": 30, "full_scan": false},
	"last_page": 3,
	"crawled_rows": 150,
	"records": [
		{
			"code": "7203",
			"name": "トヨタ自動車",
			"change_pct": "12.3",
			"change_pct_raw": "+12.30%",
			"volume": 5000,
			"close_price": 2800,
			"pts_price": null,
			"page": 1,
			"disclosure_count": 1,
			"top_disclosures": [
				{"title": "🟦 決算短信", "url": "https://example.com/a.pdf", "day_tag": "today"}
			]
		},
		{
			"code": "1301",
			"name": "極洋",
			"change_pct": null,
			"volume": null,
			"disclosure_count": 0,
			"top_disclosures": []
		}
	],
	"summary": {"total": 2, "with_disclosures": 1, "without_disclosures": 1},
	"diagnostics": {}
}`

func writeJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateRun_Valid(t *testing.T) {
	assert.NoError(t, ValidateRun([]byte(validRun)))
}

func TestValidateRun_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		old       string
		new       string
		wantField string
	}{
		{"bad code", `"code": "7203"`, `"code": "72030"`, "code"},
		{"bad day tag", `"day_tag": "today"`, `"day_tag": "当日"`, "day_tag"},
		{"numeric pct", `"change_pct": "12.3"`, `"change_pct": 12.3`, "change_pct"},
		{"negative count", `"disclosure_count": 0`, `"disclosure_count": -1`, "disclosure_count"},
		{"pages above limit", `"max_pages": 30`, `"max_pages": 500`, "max_pages"},
		{"missing summary", `"summary": {"total": 2, "with_disclosures": 1, "without_disclosures": 1},`, ``, "summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(validRun, tt.old, tt.new, 1)
			require.NotEqual(t, validRun, doc)

			err := ValidateRun([]byte(doc))
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestValidateRun_TooManyDisclosures(t *testing.T) {
	link := `{"title": "t", "url": "u", "day_tag": "none"}`
	links := strings.Repeat(link+",", 5) + link
	doc := strings.Replace(validRun, `"top_disclosures": []`, `"top_disclosures": [`+links+`]`, 1)

	err := ValidateRun([]byte(doc))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateRun_MalformedDocument(t *testing.T) {
	err := ValidateRun([]byte("{ invalid json }"))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateRunFile(t *testing.T) {
	assert.NoError(t, ValidateRunFile(writeJSON(t, "run.json", validRun)))

	err := ValidateRunFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_CustomSchema(t *testing.T) {
	schemaPath := writeJSON(t, "schema.json", `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["records"]
	}`)

	assert.NoError(t, ValidateJSON(schemaPath, writeJSON(t, "ok.json", validRun)))

	err := ValidateJSON(schemaPath, writeJSON(t, "bad.json", `{"other": 1}`))
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_NonExistentFiles(t *testing.T) {
	jsonPath := writeJSON(t, "ok.json", validRun)

	err := ValidateJSON("testdata/nonexistent_schema.json", jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	schemaPath := writeJSON(t, "schema.json", `{"type": "object"}`)
	err = ValidateJSON(schemaPath, "testdata/nonexistent.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateDocument_EmbeddedSchema(t *testing.T) {
	assert.NoError(t, ValidateDocument("", []byte(validRun)))

	err := ValidateDocument("", []byte(`{"run_id":"x"}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestValidateDocument_CustomSchema(t *testing.T) {
	schemaContent := `{
		"type": "object",
		"required": ["code"],
		"properties": {"code": {"type": "string", "pattern": "^[0-9]{4}$"}}
	}`

	assert.NoError(t, ValidateDocument(schemaContent, []byte(`{"code":"7203"}`)))

	err := ValidateDocument(schemaContent, []byte(`{"code":"72030"}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors[0].Field, "code")
}

func TestValidateDocument_Unloadable(t *testing.T) {
	err := ValidateDocument(`{"type": "object"}`, []byte(`{not json`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "(inline schema)", loadErr.Path)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "code", Message: "does not match pattern"},
			{Field: "volume", Message: "must be an integer"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "code")
	assert.Contains(t, errorMsg, "volume")
}
