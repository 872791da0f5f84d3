package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedchat/schedchat/internal/assistant"
	"github.com/schedchat/schedchat/internal/calendar"
	"github.com/schedchat/schedchat/internal/instrumentation"
	"github.com/schedchat/schedchat/internal/mcp/oauthbridge"
	"github.com/schedchat/schedchat/internal/resources"
	"github.com/schedchat/schedchat/internal/server"
	"github.com/schedchat/schedchat/internal/tools/assistant_tools"
	"github.com/schedchat/schedchat/internal/tools/calendar_tools"
	"github.com/schedchat/schedchat/internal/tools/google_tools"
)

// OAuthSecurityConfig holds OAuth security settings
type OAuthSecurityConfig struct {
	AllowPublicClientRegistration bool
	RegistrationAccessToken       string
	AllowInsecureAuthWithoutState bool
	MaxClientsPerIP               int
}

// MetricsConfig holds metrics server settings
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		transport          string
		httpAddr           string
		yolo               bool
		googleClientID     string
		googleClientSecret string
		disableStreaming   bool
		baseURL            string
		endpoint           string
		model              string
		warmAccounts       string
		// OAuth Security Settings
		allowPublicClientRegistration bool
		registrationAccessToken       string
		allowInsecureAuthWithoutState bool
		maxClientsPerIP               int
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide the
scheduling assistant and Google Calendar tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with Google OAuth

Safety Mode:
  By default, the server operates in read-only mode: calendar tools that
  create, update or delete events are not registered. The assistant_chat
  tool can still change the calendar through conversation. Use --yolo to
  register the write tools as well.

Completion Endpoint:
  TOGETHER_API_KEY env var is required for the assistant_chat tool.
  Optionally set --endpoint/TOGETHER_API_ENDPOINT and
  --model/SCHEDCHAT_MODEL. Calendar tools work without it.

OAuth Configuration (streamable-http only):
  Base URL (required for deployed instances):
    --base-url https://your-domain.com OR MCP_BASE_URL env var
    Auto-detected for localhost (development only)

  Google OAuth app (required):
    --google-client-id and --google-client-secret flags
    OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars`,
		RunE: func(cmd *cobra.Command, args []string) error {
			securityConfig := OAuthSecurityConfig{
				AllowPublicClientRegistration: allowPublicClientRegistration,
				RegistrationAccessToken:       registrationAccessToken,
				AllowInsecureAuthWithoutState: allowInsecureAuthWithoutState,
				MaxClientsPerIP:               maxClientsPerIP,
			}

			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(serveOptions{
				Transport:          transport,
				Debug:              debugMode,
				HTTPAddr:           httpAddr,
				Yolo:               yolo,
				GoogleClientID:     googleClientID,
				GoogleClientSecret: googleClientSecret,
				DisableStreaming:   disableStreaming,
				BaseURL:            baseURL,
				Endpoint:           endpoint,
				Model:              model,
				WarmAccounts:       warmAccounts,
				Security:           securityConfig,
				Metrics:            metricsConfig,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Register calendar write tools (event creation, update, deletion). Default is read-only mode.")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID (HTTP transport only). Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret (HTTP transport only). Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for OAuth (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Completion endpoint URL. Can also use TOGETHER_API_ENDPOINT env var.")
	cmd.Flags().StringVar(&model, "model", "", "Completion model name. Can also use SCHEDCHAT_MODEL env var.")
	cmd.Flags().StringVar(&warmAccounts, "warm-accounts", "", "Comma-separated account names whose calendar clients are created at startup. Can also use SCHEDCHAT_WARM_ACCOUNTS env var.")

	// OAuth Security Settings (HTTP transport only)
	cmd.Flags().BoolVar(&allowPublicClientRegistration, "oauth-allow-public-registration", false, "WARNING: Allow unauthenticated client registration (NOT recommended for production). Can also use MCP_OAUTH_ALLOW_PUBLIC_REGISTRATION env var. Default: false (secure)")
	cmd.Flags().StringVar(&registrationAccessToken, "oauth-registration-token", "", "Registration access token required for client registration when public registration is disabled. Can also use MCP_OAUTH_REGISTRATION_TOKEN env var.")
	cmd.Flags().BoolVar(&allowInsecureAuthWithoutState, "oauth-allow-no-state", false, "WARNING: Allow authorization without state parameter (weakens CSRF protection). Can also use MCP_OAUTH_ALLOW_NO_STATE env var. Default: false (secure)")
	cmd.Flags().IntVar(&maxClientsPerIP, "oauth-max-clients-per-ip", 10, "Maximum number of clients that can be registered per IP address (prevents DoS). Can also use MCP_OAUTH_MAX_CLIENTS_PER_IP env var. Default: 10")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// serveOptions carries the resolved serve command configuration.
type serveOptions struct {
	Transport          string
	Debug              bool
	HTTPAddr           string
	Yolo               bool
	GoogleClientID     string
	GoogleClientSecret string
	DisableStreaming   bool
	BaseURL            string
	Endpoint           string
	Model              string
	WarmAccounts       string
	Security           OAuthSecurityConfig
	Metrics            MetricsConfig
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load metrics config from environment if not set via flags
	if !opts.Metrics.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			opts.Metrics.Enabled = true
		}
	}
	if opts.Metrics.Addr == "" || opts.Metrics.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.Metrics.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if opts.Transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.Transport != "stdio" && opts.Metrics.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Get Google OAuth credentials from environment if not provided via flags
	if opts.GoogleClientID == "" {
		opts.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if opts.GoogleClientSecret == "" {
		opts.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	// Get OAuth security settings from environment if not provided via flags
	if !opts.Security.AllowPublicClientRegistration && os.Getenv("MCP_OAUTH_ALLOW_PUBLIC_REGISTRATION") == "true" {
		opts.Security.AllowPublicClientRegistration = true
	}
	if opts.Security.RegistrationAccessToken == "" {
		opts.Security.RegistrationAccessToken = os.Getenv("MCP_OAUTH_REGISTRATION_TOKEN")
	}
	if !opts.Security.AllowInsecureAuthWithoutState && os.Getenv("MCP_OAUTH_ALLOW_NO_STATE") == "true" {
		opts.Security.AllowInsecureAuthWithoutState = true
	}
	if opts.Security.MaxClientsPerIP == 0 {
		if envMax := os.Getenv("MCP_OAUTH_MAX_CLIENTS_PER_IP"); envMax != "" {
			if maxClients, err := strconv.Atoi(envMax); err == nil && maxClients > 0 {
				opts.Security.MaxClientsPerIP = maxClients
			}
		}
		// If still 0, use default of 10
		if opts.Security.MaxClientsPerIP == 0 {
			opts.Security.MaxClientsPerIP = 10
		}
	}

	if opts.WarmAccounts == "" {
		opts.WarmAccounts = os.Getenv("SCHEDCHAT_WARM_ACCOUNTS")
	}

	// The completion endpoint is optional for serve: without it the
	// conversation tools report a configuration error while calendar
	// tools keep working. A nil interface must stay nil, so only assign
	// when the client was actually created.
	var completer assistant.Completer
	if client, err := newCompleter(opts.Endpoint, opts.Model); err != nil {
		if opts.Transport != "stdio" {
			log.Printf("Completion endpoint not configured, assistant_chat will report errors: %v", err)
		}
	} else {
		completer = client
	}

	logLevel := slog.LevelInfo
	if opts.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx, completer, assistant.DefaultConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Warm calendar clients for accounts with stored tokens
	for _, account := range parseCommaSeparatedList(opts.WarmAccounts) {
		if !calendar.HasTokenForAccount(account) {
			log.Printf("Warning: no stored token for warm account %q, skipping", account)
			continue
		}
		client, err := calendar.NewClientForAccount(shutdownCtx, account)
		if err != nil {
			log.Printf("Warning: failed to create calendar client for account %q: %v", account, err)
			continue
		}
		serverContext.SetCalendarClientForAccount(account, client)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if opts.Transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("schedchat", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// readOnly is the inverse of yolo
	readOnly := !opts.Yolo

	// Log the mode for visibility (only for non-stdio transports)
	if opts.Transport != "stdio" {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable calendar write tools)")
		} else {
			log.Println("Starting server with calendar WRITE tools enabled (--yolo flag is set)")
		}
	}

	// Register all tools and resources
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch opts.Transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting schedchat MCP server with %s transport...\n", opts.Transport)
		return runStreamableHTTPServer(mcpSrv, serverContext, shutdownCtx, opts, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	// Define all tool registrations
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Assistant",
			register: func() error {
				return assistant_tools.RegisterAssistantTools(mcpSrv, ctx)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Google Auth",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, ctx)
			},
		},
		{
			name: "User Resources",
			register: func() error {
				return resources.RegisterUserResources(mcpSrv, ctx)
			},
		},
	}

	// Register all tools
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, ctx context.Context, opts serveOptions, instrProvider *instrumentation.Provider) error {
	// Determine base URL from flag, environment variable, or auto-detection
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("MCP_BASE_URL")
	}
	if baseURL == "" {
		// Fall back to auto-detection for local development
		baseURL = fmt.Sprintf("http://%s", opts.HTTPAddr)
		if opts.HTTPAddr[0] == ':' {
			baseURL = fmt.Sprintf("http://localhost%s", opts.HTTPAddr)
		}
		log.Printf("No base URL configured, using auto-detected: %s", baseURL)
		log.Printf("For deployed instances, set --base-url flag or MCP_BASE_URL env var")
	} else {
		log.Printf("Using configured base URL: %s", baseURL)
	}

	// Create OAuth handler
	oauthConfig := server.OAuthConfig{
		BaseURL:                       baseURL,
		GoogleClientID:                opts.GoogleClientID,
		GoogleClientSecret:            opts.GoogleClientSecret,
		DisableStreaming:              opts.DisableStreaming,
		AllowPublicClientRegistration: opts.Security.AllowPublicClientRegistration,
		RegistrationAccessToken:       opts.Security.RegistrationAccessToken,
		AllowInsecureAuthWithoutState: opts.Security.AllowInsecureAuthWithoutState,
		MaxClientsPerIP:               opts.Security.MaxClientsPerIP,
	}

	oauthHandler, err := server.CreateOAuthHandler(oauthConfig)
	if err != nil {
		return fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	// Route Google API clients through the OAuth token store, so calendar
	// access uses the tokens minted during client authentication.
	serverContext.SetTokenProvider(oauthbridge.NewTokenProvider(oauthHandler.GetStore()))

	// Create OAuth server with the existing handler
	oauthServer := server.NewOAuthHTTPServerWithHandler(mcpSrv, oauthHandler, opts.DisableStreaming)

	// Set up health checker for health check endpoints
	healthChecker := server.NewHealthChecker(serverContext)
	oauthServer.SetHealthChecker(healthChecker)

	// Set up HTTP instrumentation for metrics
	if instrProvider != nil && instrProvider.Enabled() {
		oauthServer.SetMetrics(instrProvider.Metrics())
	}

	fmt.Printf("Streamable HTTP server with Google OAuth authentication starting on %s\n", opts.HTTPAddr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	fmt.Printf("  OAuth metadata: /.well-known/oauth-protected-resource\n")
	fmt.Printf("  Authorization Server: %s\n", baseURL)
	if opts.Metrics.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", opts.Metrics.Addr)
	}

	fmt.Println("\nClients must authenticate with Google OAuth to access this server.")
	fmt.Println("The MCP client will handle the OAuth flow automatically.")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := oauthServer.Start(opts.HTTPAddr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := oauthServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
