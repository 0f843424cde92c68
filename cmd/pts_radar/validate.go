package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/pts-radar/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an exported run against the run schema",
	Long: `Validate a JSON file against the embedded correlated run schema, or against --schema when given.
Pass --json - to read the document from stdin.`,
	RunE: runValidate,
}

var (
	validateJSONPath   string
	validateSchemaPath string
)

func init() {
	validateCmd.Flags().StringVar(&validateJSONPath, "json", "", "Path to the JSON file to validate (- for stdin)")
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Path to a JSON schema (defaults to the embedded run schema)")
	_ = validateCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	switch {
	case validateJSONPath == stdinPath:
		err = validateStdin(cmd)
	case validateSchemaPath != "":
		err = schemas.ValidateJSON(validateSchemaPath, validateJSONPath)
	default:
		err = schemas.ValidateRunFile(validateJSONPath)
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Validation failed:")
		for _, fe := range validationErr.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s: %s\n", fe.Field, fe.Message)
		}
		source := validateJSONPath
		if source == stdinPath {
			source = "stdin"
		}
		return fmt.Errorf("%s does not match the schema", source)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}

const stdinPath = "-"

func validateStdin(cmd *cobra.Command) error {
	doc, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	var schemaContent string
	if validateSchemaPath != "" {
		raw, err := os.ReadFile(validateSchemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema file: %w", err)
		}
		schemaContent = string(raw)
	}
	return schemas.ValidateDocument(schemaContent, doc)
}
