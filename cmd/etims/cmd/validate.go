package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rezonia/etims-client/internal/model"
	"github.com/rezonia/etims-client/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <contract> [files...]",
	Short: "Validate payloads against a message contract",
	Long: `Validate one or more JSON payloads without contacting the API.

Every failing rule is reported, not just the first. Reads stdin when no
file is given.

Examples:
  etims validate saveTrnsSalesOsdc sale.json
  cat item.json | etims validate saveItem
  etims validate saveItem *.json --schema 1 -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// ValidationResult is the per-file validation report
type ValidationResult struct {
	File    string             `json:"file"`
	Valid   bool               `json:"valid"`
	Payload map[string]any     `json:"payload,omitempty"`
	Errors  []model.FieldError `json:"errors,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine := validation.NewEngine(nil, validation.WithVersion(cfg.Schema.Version))

	contract := args[0]
	if _, err := engine.Contract(contract); err != nil {
		return err
	}

	files := args[1:]
	if len(files) == 0 {
		files = []string{"-"}
	}

	results := make([]*ValidationResult, 0, len(files))
	allValid := true
	for _, file := range files {
		printVerbose("Validating %s against %s (schema %s)\n", displayName(file), contract, engine.Version())
		result := validateFile(engine, contract, file)
		results = append(results, result)
		if !result.Valid {
			allValid = false
		}
	}

	if tableOutput() {
		printValidationTable(cmd.OutOrStdout(), results)
	} else if err := printJSON(results); err != nil {
		return err
	}

	if !allValid {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func validateFile(engine *validation.Engine, contract, file string) *ValidationResult {
	result := &ValidationResult{File: displayName(file)}

	payload, err := readPayload(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	normalized, err := engine.Validate(payload, contract)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			result.Errors = verr.Fields
		} else {
			result.Error = err.Error()
		}
		return result
	}

	result.Valid = true
	result.Payload = normalized
	return result
}

func printValidationTable(w io.Writer, results []*ValidationResult) {
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s: VALID\n", r.File)
			continue
		}
		fmt.Fprintf(w, "✗ %s: INVALID\n", r.File)
		if r.Error != "" {
			fmt.Fprintf(w, "  - %s\n", r.Error)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s: %s\n", e.Field, e.Message)
		}
	}
}
