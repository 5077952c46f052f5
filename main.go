package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	webview "github.com/webview/webview_go"

	"github.com/kartoza/premium-estimator/internal/config"
	"github.com/kartoza/premium-estimator/internal/logger"
	"github.com/kartoza/premium-estimator/internal/server"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	var showVersion bool

	cmd := &cobra.Command{
		Use:           "premium-estimator",
		Short:         "Medical insurance premium estimator",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "Premium Estimator v%s\n", version)
				return nil
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			cfg.Version = version
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 8080, "HTTP server port")
	flags.String("model-path", "insurance_model.gob", "Path to the model artifact")
	flags.Duration("predict-timeout", 2*time.Second, "Upper bound for a single prediction")
	flags.Bool("headless", false, "Run in headless mode (no GUI window)")
	flags.String("log-level", "INFO", "Log level: TRACE, DEBUG, INFO, WARN, ERROR")
	flags.BoolVar(&showVersion, "version", false, "Show version and exit")

	if err := bindFlags(v, flags, configFlags); err != nil {
		panic(err)
	}

	cmd.AddCommand(newModelCommand())
	return cmd
}

// configFlags maps config keys to the root command flags that override them
var configFlags = map[string]string{
	"port":            "port",
	"model_path":      "model-path",
	"predict_timeout": "predict-timeout",
	"headless":        "headless",
	"log_level":       "log-level",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag --%s for config key %s is not defined", name, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func run(cfg config.Config) error {
	log, err := logger.Setup(cfg.LogLevel)
	if err != nil {
		log.Warn("falling back to INFO logging", slog.Any("error", err))
	}

	// Find an available port (try up to 10 ports starting from the requested one)
	availablePort, err := findAvailablePort(cfg.Port, 10)
	if err != nil {
		return fmt.Errorf("failed to find available port: %w", err)
	}
	if availablePort != cfg.Port {
		log.Info("port in use, using another", slog.Int("requested", cfg.Port), slog.Int("port", availablePort))
	}
	cfg.Port = availablePort

	log.Info("premium estimator starting",
		slog.String("version", cfg.Version),
		slog.Int("port", cfg.Port),
		slog.String("model_path", cfg.ModelPath),
	)

	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(log, serverURL, 10*time.Second)

	if cfg.Headless {
		select {
		case err := <-errCh:
			return serveError(err)
		case sig := <-stop:
			log.Info("shutting down", slog.String("signal", sig.String()))
			return srv.Stop()
		}
	}

	// GUI mode: open embedded WebView window
	log.Info("opening application window")
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Medical Insurance Cost Predictor")
	w.SetSize(1280, 900, webview.HintNone)
	w.Navigate(serverURL)

	// A dead server closes the window; a signal closes it too
	failed := make(chan error, 1)
	go func() {
		select {
		case err := <-errCh:
			if err = serveError(err); err != nil {
				log.Error("server error", slog.Any("error", err))
				failed <- err
				w.Terminate()
			}
		case sig := <-stop:
			log.Info("shutting down", slog.String("signal", sig.String()))
			w.Terminate()
		}
	}()

	// Run blocks until the window is closed
	w.Run()

	select {
	case err := <-failed:
		return err
	default:
	}

	log.Info("window closed, shutting down server")
	return srv.Stop()
}

// serveError drops the error the server reports after a clean shutdown
func serveError(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// waitForServer polls until the server is accepting connections
func waitForServer(log *slog.Logger, url string, timeout time.Duration) {
	addr := url[len("http://"):]
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	log.Warn("server may not be ready", slog.String("url", url))
}

// findAvailablePort finds an available port, starting from the given port.
// If the port is in use, it tries subsequent ports up to maxAttempts times.
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		addr := fmt.Sprintf(":%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
