package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/etims-client/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local compliance gateway",
	Long: `Start an HTTP gateway in front of the eTIMS API.

The API provides endpoints for:
  - GET    /api/v1/contracts             - List message contracts
  - GET    /api/v1/endpoints             - List the endpoint table
  - POST   /api/v1/validate/:contract    - Validate a payload
  - POST   /api/v1/initialize            - Run the device bootstrap
  - POST   /api/v1/operations/:operation - Validate and send a payload
  - POST   /api/v1/token                 - Refresh the access token
  - DELETE /api/v1/token                 - Forget the access token
  - GET    /health                       - Health check

Examples:
  etims serve
  etims serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	config := &server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		CallTimeout:  cfg.Timeout()*2 + cfg.TokenTimeout(),
		Debug:        cfg.Server.Debug || serverDebug,
		Logger:       logger,
	}
	if serverAddr != "" {
		config.Address = serverAddr
	}
	if readTimeout > 0 {
		config.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		config.WriteTimeout = writeTimeout
	}

	srv := server.NewServer(config, client)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		_ = client.Close()
		os.Exit(0)
	}()

	fmt.Printf("Starting gateway on %s (env %s, schema %s)\n", config.Address, cfg.Env, cfg.Schema.Version)
	return srv.Run()
}
