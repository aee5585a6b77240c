// Command flota-server hosts Flota matches.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the JSON API, the legacy
//     /servicios/partidas resource, WebSocket notifications and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (FLOTA_*, NGROK_*, optionally via .env)
// and flags override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/flota/api"
	"github.com/wricardo/mcp-training/flota/game/config"
	"github.com/wricardo/mcp-training/flota/game/service"
	"github.com/wricardo/mcp-training/flota/game/session"
	"github.com/wricardo/mcp-training/flota/transport/mcp"
	"github.com/wricardo/mcp-training/flota/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Flota Server"
)

// Options controls how the server starts and which services are enabled
type Options struct {
	Host         string        `env:"FLOTA_HOST" envDefault:"localhost"`
	Port         int           `env:"FLOTA_PORT" envDefault:"8080"`
	ConfigDir    string        `env:"FLOTA_CONFIG_DIR" envDefault:"configs"`
	DefaultRules string        `env:"FLOTA_DEFAULT_RULES"`
	SessionTTL   time.Duration `env:"FLOTA_SESSION_TTL" envDefault:"24h"`
	Debug        bool          `env:"FLOTA_DEBUG"`
	Version      bool

	Ngrok NgrokOptions
}

// NgrokOptions configures the optional public tunnel
type NgrokOptions struct {
	Enabled   bool   `env:"NGROK_ENABLED"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

// loadOptions reads the environment, then applies flags from args.
// It returns the remaining positional arguments.
func loadOptions(args []string) (*Options, []string, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}
	if opts.Ngrok.AuthToken == "" {
		opts.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
	}

	fs := flag.NewFlagSet("flota-server", flag.ContinueOnError)
	fs.IntVar(&opts.Port, "port", opts.Port, "HTTP server port")
	fs.StringVar(&opts.Host, "host", opts.Host, "HTTP server host")
	fs.StringVar(&opts.ConfigDir, "config-dir", opts.ConfigDir, "Directory containing placement rule files")
	fs.StringVar(&opts.DefaultRules, "default-rules", opts.DefaultRules, "Rule set used when a match names none")
	fs.DurationVar(&opts.SessionTTL, "session-ttl", opts.SessionTTL, "Evict matches idle for longer than this (0 disables)")
	fs.BoolVar(&opts.Debug, "debug", opts.Debug, "Enable debug logging")
	fs.BoolVar(&opts.Version, "version", false, "Show version information")
	fs.BoolVar(&opts.Ngrok.Enabled, "ngrok", opts.Ngrok.Enabled, "Enable ngrok tunnel")
	fs.StringVar(&opts.Ngrok.AuthToken, "ngrok-auth", opts.Ngrok.AuthToken, "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	fs.StringVar(&opts.Ngrok.Domain, "ngrok-domain", opts.Ngrok.Domain, "Custom ngrok domain (optional)")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if opts.SessionTTL < 0 {
		return nil, nil, fmt.Errorf("session-ttl cannot be negative, got %s", opts.SessionTTL)
	}
	return &opts, fs.Args(), nil
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
	fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
	fmt.Fprintf(out, "Available modes:\n")
	fmt.Fprintf(out, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
	fmt.Fprintf(out, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
	fmt.Fprintf(out, "  mcp-stdio        Alias for stdio-mcp\n")
	fmt.Fprintf(out, "  mcp              Alias for stdio-mcp\n")
	fmt.Fprintf(out, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(out, "\nExamples:\n")
	fmt.Fprintf(out, "  %s                          # Run HTTP server on default port 8080\n", os.Args[0])
	fmt.Fprintf(out, "  %s -port 9090               # Run HTTP server on port 9090\n", os.Args[0])
	fmt.Fprintf(out, "  %s -default-rules compact   # Small fleets unless a match asks otherwise\n", os.Args[0])
	fmt.Fprintf(out, "  %s stdio-mcp                # Run MCP stdio server\n", os.Args[0])
}

// main loads settings, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	opts, args, err := loadOptions(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Show version if requested
	if opts.Version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging
	if opts.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	// Determine mode from command
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	svc, err := initializeServices(opts)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	go svc.hub.Run()
	defer svc.hub.Stop()
	go sessionCleanupRoutine(ctx, svc.sessions, svc.hub, opts.SessionTTL)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		// Run MCP stdio server with internal HTTP server
		runStdioMCPWithInternalServer(opts, svc)

	case "server", "http":
		// Run HTTP server with API, WebSocket, and MCP endpoint
		runHTTPServer(ctx, opts, svc)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// services groups everything the transports share
type services struct {
	sessions *session.Manager
	rules    *config.Manager
	game     service.GameService
	hub      *websocket.Hub
}

// initializeServices wires the session and rules managers, the game service
// and the notification hub. The hub is not started.
func initializeServices(opts *Options) (*services, error) {
	rulesManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules manager: %w", err)
	}
	if opts.DefaultRules != "" {
		if err := rulesManager.SetDefault(opts.DefaultRules); err != nil {
			return nil, fmt.Errorf("default rules: %w", err)
		}
	}

	sessionManager := session.NewManager()

	return &services{
		sessions: sessionManager,
		rules:    rulesManager,
		game:     service.NewGameService(sessionManager, rulesManager),
		hub:      websocket.NewHub(),
	}, nil
}

// cleanupInterval is how often idle matches are checked for a given TTL
func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// sessionCleanupRoutine periodically removes matches that have not been
// accessed within ttl. A zero ttl disables eviction.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, hub *websocket.Hub, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(cleanupInterval(ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupExpired(manager, hub, ttl)
		}
	}
}

// cleanupExpired evicts idle matches and tells their subscribers
func cleanupExpired(manager *session.Manager, hub *websocket.Hub, ttl time.Duration) []int {
	removed := manager.CleanupExpiredSessions(ttl)
	for _, id := range removed {
		if hub != nil {
			hub.BroadcastEvent(id, websocket.EventMatchDeleted, nil)
		}
		log.Printf("[DELETE] match=%d reason=idle ttl=%s", id, ttl)
	}
	if len(removed) > 0 {
		log.Printf("Cleaned up %d expired matches", len(removed))
	}
	return removed
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter combines the API server and the /mcp endpoint
func newRouter(apiServer *api.Server, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	// Always add MCP endpoint for HTTP server
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts *Options, svc *services) {
	apiServer := api.NewServer(svc.game, svc.hub)

	// Setup HTTP server address
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)

	// Create MCP client for /mcp endpoint
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api/matches", addr)
		log.Printf("Legacy API: http://%s%s", addr, api.LegacyPrefix)
		log.Printf("WebSocket: ws://%s/ws?match=<match_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)
		if opts.SessionTTL > 0 {
			log.Printf("Idle matches are evicted after %s", opts.SessionTTL)
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Start ngrok tunnel if enabled
	if opts.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts.Ngrok, mainRouter)
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Println("Server stopped")
}

// runNgrokTunnel exposes handler through an ngrok HTTP endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, opts NgrokOptions, handler http.Handler) {
	if opts.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	// Configure ngrok endpoint
	var tunnel ngrokConfig.Tunnel
	if opts.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.Domain))
		log.Printf("Using custom ngrok domain: %s", opts.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(opts.AuthToken),
	)
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	// Closing the listener unblocks http.Serve on shutdown
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api/matches", ngrokURL)
	log.Printf("  Legacy API (ngrok): %s%s", ngrokURL, api.LegacyPrefix)
	log.Printf("  WebSocket (ngrok): %s/ws?match=<match_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	// Serve HTTP through ngrok tunnel
	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// externalServerAvailable reports whether a Flota server answers on baseURL
func externalServerAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API on the configured host and port; if unavailable,
// it starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(opts *Options, svc *services) {
	var baseURL string

	// First, try to connect to external API server
	externalURL := fmt.Sprintf("http://%s:%d", opts.Host, opts.Port)
	log.Printf("Checking for external API server at %s...", externalURL)

	if externalServerAvailable(externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		// No external server found, start internal one
		log.Printf("No external API server found, starting internal HTTP server")

		// Start internal HTTP server on a random available port
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		httpServer := &http.Server{
			Handler: api.NewServer(svc.game, svc.hub),
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	// Create MCP client pointing to the selected server
	mcpClient := mcp.NewClient(baseURL)

	// Run MCP stdio server (blocking)
	if baseURL == externalURL {
		log.Println("MCP stdio server ready (using external HTTP server)")
	} else {
		log.Println("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
