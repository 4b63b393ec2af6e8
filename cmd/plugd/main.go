package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/mzyy94/plugd/internal/amp"
	"github.com/mzyy94/plugd/internal/config"
	"github.com/mzyy94/plugd/internal/mustang"
	"github.com/mzyy94/plugd/internal/usbcomm"
	"github.com/mzyy94/plugd/internal/webui"
)

const reconnectInterval = 5 * time.Second

func main() {
	logLevel := parseLogLevel(envStr("PLUGD_LOG_LEVEL", "info"))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Parse configuration from environment variables
	listenPort := envInt("PLUGD_LISTEN_PORT", 8080)
	dataDir := os.Getenv("PLUGD_DATA_DIR")
	deviceName := envStr("PLUGD_DEVICE_NAME", "plugd")
	readTimeout := time.Duration(envInt("PLUGD_READ_TIMEOUT_MS", int(usbcomm.DefaultReadTimeout/time.Millisecond))) * time.Millisecond
	documentDir := os.Getenv("PLUGD_DOCUMENT_DIR")

	// Settings persist under the data directory; without one they live in memory.
	settings := config.NewMemoryStore()
	defaultExportDir := "exports"
	if dataDir != "" {
		s, err := config.NewStore(dataDir)
		if err != nil {
			slog.Error("failed to open settings", "dir", dataDir, "err", err)
			os.Exit(1)
		}
		settings = s
		defaultExportDir = filepath.Join(dataDir, "exports")
	}

	var sessionOpts []mustang.Option
	if documentDir != "" {
		if err := os.MkdirAll(documentDir, 0755); err != nil {
			slog.Error("failed to create document directory", "dir", documentDir, "err", err)
			os.Exit(1)
		}
		sessionOpts = append(sessionOpts, mustang.WithDocumentDir(documentDir))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := amp.New(func() (mustang.Transport, mustang.DeviceModel, error) {
		conn, err := usbcomm.Open(usbcomm.Options{ReadTimeout: readTimeout})
		if err != nil {
			return nil, mustang.DeviceModel{}, err
		}
		return conn, conn.Model(), nil
	}, sessionOpts...)
	defer a.Disconnect()

	go keepConnected(ctx, a, settings)

	addr := fmt.Sprintf(":%d", listenPort)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: logMiddleware(webui.NewHandler(a, settings, defaultExportDir)),
	}

	// Start mDNS advertisement
	if settings.Get().Advertise {
		mdnsServer, err := zeroconf.Register(
			deviceName,
			"_plugd._tcp",
			"local.",
			listenPort,
			[]string{
				"txtvers=1",
				"path=/api",
			},
			nil,
		)
		if err != nil {
			slog.Error("mDNS registration failed", "err", err)
			os.Exit(1)
		}
		defer mdnsServer.Shutdown()
		slog.Info("mDNS registered", "name", deviceName, "service", "_plugd._tcp")
	}

	// Start HTTP server
	go func() {
		slog.Info("HTTP server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
}

// keepConnected opens the amplifier and reopens it whenever it goes away.
func keepConnected(ctx context.Context, a *amp.Amp, settings *config.Store) {
	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()
	for {
		if !a.Online() {
			if err := a.Connect(settings.Get().LoadSlotOnConnect); err != nil {
				if errors.Is(err, usbcomm.ErrNoDevice) {
					slog.Debug("no amplifier attached")
				} else {
					slog.Warn("amplifier connection failed", "err", err)
				}
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// responseRecorder captures the status code for logging.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(rec, r)
		slog.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
