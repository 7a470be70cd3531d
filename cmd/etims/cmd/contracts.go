package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/etims-client/internal/validation"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts [name]",
	Short: "List message contracts",
	Long: `List the registered message contracts, or the fields of one contract.

Examples:
  etims contracts
  etims contracts saveTrnsSalesOsdc -f table
  etims contracts --schema 1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContracts,
}

func init() {
	rootCmd.AddCommand(contractsCmd)
}

type contractSummary struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	Required    []string `json:"required,omitempty"`
}

func runContracts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine := validation.NewEngine(nil, validation.WithVersion(cfg.Schema.Version))

	names := engine.Registry().Names(engine.Version())
	if len(args) == 1 {
		names = args
	}

	summaries := make([]contractSummary, 0, len(names))
	for _, name := range names {
		c, err := engine.Contract(name)
		if err != nil {
			return err
		}
		s := contractSummary{Name: c.Name, Version: c.Version, Description: c.Description}
		if len(args) == 1 {
			s.Fields = c.FieldNames()
			s.Required = c.RequiredFieldNames()
		}
		summaries = append(summaries, s)
	}

	if !tableOutput() {
		return printJSON(summaries)
	}

	out := cmd.OutOrStdout()
	for _, s := range summaries {
		fmt.Fprintf(out, "%-22s v%s  %s\n", s.Name, s.Version, s.Description)
		if len(s.Fields) > 0 {
			fmt.Fprintf(out, "  fields:   %s\n", strings.Join(s.Fields, ", "))
			fmt.Fprintf(out, "  required: %s\n", strings.Join(s.Required, ", "))
		}
	}
	return nil
}
