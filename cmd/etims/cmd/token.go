package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	tokenForce  bool
	tokenForget bool
	tokenShow   bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Fetch or inspect the cached access token",
	Long: `Fetch an access token with the configured consumer credentials.

A cached token is reused until 60 seconds before it expires. The token
itself is printed only with --show.

Examples:
  etims token
  etims token --force
  etims token --forget`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().BoolVar(&tokenForce, "force", false, "Ignore the cached token")
	tokenCmd.Flags().BoolVar(&tokenForget, "forget", false, "Delete the cached token and exit")
	tokenCmd.Flags().BoolVar(&tokenShow, "show", false, "Print the access token")
}

func runToken(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, cfg, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if tokenForget {
		if err := client.ForgetToken(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "token forgotten")
		return nil
	}

	printVerbose("Requesting token for %s from %s\n", cfg.Env, cfg.Credentials().TokenURL)
	tok, err := client.Token(ctx, tokenForce)
	if err != nil {
		return err
	}

	out := map[string]any{
		"environment": cfg.Env,
		"expires_at":  tok.ExpiresAt.UTC().Format(time.RFC3339),
		"expires_in":  int64(time.Until(tok.ExpiresAt).Seconds()),
	}
	if tokenShow {
		out["access_token"] = tok.AccessToken
	}
	return printJSON(out)
}
