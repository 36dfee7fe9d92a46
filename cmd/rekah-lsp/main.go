// Command rekah-lsp starts the LSP client runtime against a C/C++
// project and serves a small status/metrics endpoint for manual
// inspection. It is a convenience wrapper around the internal/lsp
// package, not part of its contract.
//
// Usage:
//
//	go run ./cmd/rekah-lsp -project-root /path/to/project
//	go run ./cmd/rekah-lsp -project-root /path/to/project -http :8090
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/tkdgur4427/rekah-unreal-mcp/internal/lsp"
)

func main() {
	clangdPath := flag.String("clangd", "clangd", "clangd executable path")
	projectRoot := flag.String("project-root", "", "C/C++ project root directory (required)")
	compileCommandsDir := flag.String("compile-commands-dir", "", "directory containing compile_commands.json (defaults to project root)")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	watch := flag.Bool("watch", true, "reopen documents on external edits")
	httpAddr := flag.String("http", ":8090", "address to serve /status and /metrics on")
	flag.Parse()

	if *projectRoot == "" {
		log.Fatal("-project-root is required")
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Fatalf("failed to create prometheus exporter: %v", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	cfg := lsp.Config{
		ClangdPath:         *clangdPath,
		ProjectRoot:        *projectRoot,
		CompileCommandsDir: *compileCommandsDir,
		RequestTimeout:     *timeout,
		WatchOpenDocuments: *watch,
		Logger:             slog.Default(),
	}

	mgr := lsp.NewManager()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	client, err := mgr.Get(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("failed to start clangd: %v", err)
	}
	query := lsp.NewQuery(client)
	defer query.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, mgr.Status())
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: *httpAddr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()
	log.Printf("rekah-lsp serving status/metrics on %s, bridging %s", *httpAddr, *projectRoot)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = mgr.Reset(shutdownCtx)
}
