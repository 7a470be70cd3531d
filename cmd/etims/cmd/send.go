package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/etims-client/pkg/etims"
)

var (
	sendInit  string
	sendQuery bool
)

var sendCmd = &cobra.Command{
	Use:   "send <operation> [file]",
	Short: "Validate and submit a payload",
	Long: `Validate a payload against the operation's contract and send it.

With --init the device bootstrap runs first and the returned cmcKey is used
for the call. The outcome is printed as JSON; the command fails when the
outcome is not a success.

Examples:
  etims send selectCodeList lookup.json
  etims send saveTrnsSalesOsdc sale.json --init init.json
  echo '{"lastReqDt":"20240101000000"}' | etims send selectNoticeList --get`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendInit, "init", "", "Initialization payload sent before the operation")
	sendCmd.Flags().BoolVar(&sendQuery, "get", false, "Send the payload as query parameters")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	operation := args[0]
	file := ""
	if len(args) > 1 {
		file = args[1]
	}

	payload, err := readPayload(file)
	if err != nil {
		return err
	}

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if sendInit != "" {
		initPayload, err := readPayload(sendInit)
		if err != nil {
			return err
		}
		printVerbose("Initializing device\n")
		if _, err := client.Initialize(ctx, initPayload); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
	}

	printVerbose("Sending %s\n", operation)
	var outcome *etims.Outcome
	if sendQuery {
		outcome, err = client.Query(ctx, operation, payload)
	} else {
		outcome, err = client.Call(ctx, operation, payload)
	}
	if err != nil {
		return err
	}

	if err := printJSON(outcome); err != nil {
		return err
	}
	return outcome.Err()
}
