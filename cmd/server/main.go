package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic/config"
	"clinic/internal/app"
	"clinic/internal/handlers"
	"clinic/internal/logger"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinical records API server",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetInt("port")
			return runServer(port)
		},
	}

	cmd.Flags().Int("port", 0, "Listen port, overrides SERVER_PORT")
	return cmd
}

func runServer(port int) error {
	config, err := config.InitConfig()
	if err != nil {
		return err
	}
	if port > 0 {
		config.ServerPort = port
	}

	logger.Setup(config.Environment, config.LogLevel)
	log := logger.New("main").Function("runServer")

	app, err := app.NewWithConfig(config)
	if err != nil {
		return log.Err("failed to initialize app", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	server, err := handlers.NewServer(app)
	if err != nil {
		return log.Err("failed to build server", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		addr := config.ListenAddress()
		log.Info("Starting server", "addr", addr, "environment", config.Environment)
		listenErr <- server.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		if err != nil {
			return log.Err("server stopped unexpectedly", err)
		}
		return nil
	case sig := <-quit:
		log.Info("Shutting down server", "signal", sig.String())
	}

	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return log.Err("server shutdown failed", err)
	}

	log.Info("Server stopped")
	return nil
}
