package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/pts-radar/internal/server"
)

var (
	servePort  int
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes /api/v1/surges, /health and /metrics. Runs are serialized.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to server.port)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Run gin in debug mode and log at debug level")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(serveDebug)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	port := a.cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:              port,
		RequestsPerMinute: a.cfg.Server.RequestsPerMinute,
		Defaults:          a.cfg.Defaults,
		Debug:             serveDebug,
	}, a.newRunner(nil), a.registry, a.log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}
