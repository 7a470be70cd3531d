package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/etims-client/internal/endpoint"
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the resolved endpoint table",
	RunE:  runEndpoints,
}

func init() {
	rootCmd.AddCommand(endpointsCmd)
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := endpoint.NewTable(cfg.Endpoints)
	if err != nil {
		return err
	}

	if !tableOutput() {
		return printJSON(map[string]any{"base_url": cfg.BaseURL(), "endpoints": table.All()})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "base: %s\n", cfg.BaseURL())
	for _, ep := range table.All() {
		marker := ""
		if ep.Bootstrap {
			marker = " (bootstrap)"
		}
		fmt.Fprintf(out, "%-30s %-5s %s -> %s%s\n", ep.Name, ep.Method, ep.Path, ep.Contract, marker)
	}
	return nil
}
