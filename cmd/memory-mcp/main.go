package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/memory-mcp/internal/auth"
	"github.com/roivaz/memory-mcp/internal/config"
	"github.com/roivaz/memory-mcp/internal/logging"
	memorymcp "github.com/roivaz/memory-mcp/internal/mcp"
)

var rootCmd = &cobra.Command{
	Use:   "memory-mcp",
	Short: "MCP server exposing user memory tools",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over SSE and streamable HTTP",
	RunE:  runServe,
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve MCP over stdio using the dev identity",
	RunE:  runStdio,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tools a session with the given permissions would see",
	RunE:  runTools,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("backend-url", "", "Memory backend base URL (overrides BACKEND_URL)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("auth-mode", "", "Identity source: oauth or static")
	_ = viper.BindPFlag(config.KeyBackendURL, flags.Lookup("backend-url"))
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyAuthMode, flags.Lookup("auth-mode"))

	serveCmd.Flags().String("host", "", "HTTP host")
	serveCmd.Flags().Int("port", 0, "HTTP port")
	_ = viper.BindPFlag(config.KeyHost, serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port"))

	toolsCmd.Flags().String("permissions", "", "Comma separated permission list")

	rootCmd.AddCommand(serveCmd, stdioCmd, toolsCmd)
}

func main() {
	config.Init(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("memory-mcp: %v", err)
	}
}

func newLogger() logging.Logger {
	return logging.New(logging.NewZapLogger(config.LogLevel()))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := memorymcp.DefaultConfig(logger)
	if err != nil {
		return err
	}
	srv := memorymcp.New(cfg)

	addr := config.Host() + ":" + strconv.Itoa(config.Port())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server listening", "addr", addr, "backend", config.BackendURL(), "auth", config.AuthMode())
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func runStdio(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	deps, err := memorymcp.DefaultDependencies(logger)
	if err != nil {
		return err
	}
	props := memorymcp.DevProps()
	if props.UserID() == "" {
		logger.Info("dev_user_sub is not set; memory tools will report a missing user")
	}
	return server.ServeStdio(memorymcp.NewSessionServer(props, deps))
}

func runTools(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("permissions")
	props := auth.NewStaticProps("preview", "", config.SplitList(raw))

	deps := memorymcp.Dependencies{Logger: logging.Discard()}
	var defs []mcp.Tool
	for _, t := range memorymcp.Toolset(props, deps) {
		defs = append(defs, t.Tool)
	}
	out, err := yaml.Marshal(defs)
	if err != nil {
		return fmt.Errorf("render tools: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
