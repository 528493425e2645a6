// ABOUTME: Entry point for capability-hub, the consulting capability registry server
// ABOUTME: Subcommands: serve, init, hash-password, health, capabilities

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/capability-hub/internal/config"
	"github.com/2389/capability-hub/internal/credentials"
	"github.com/2389/capability-hub/internal/registry"
	"github.com/2389/capability-hub/internal/server"
	"github.com/2389/capability-hub/internal/store"
	"github.com/2389/capability-hub/internal/telemetry"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                        _     _ _ _ _              _           _
  ___ __ _ _ __   __ _| |__ (_) (_) |_ _   _     | |__  _   _| |__
 / __/ _' | '_ \ / _' | '_ \| | | | __| | | |____| '_ \| | | | '_ \
| (_| (_| | |_) | (_| | |_) | | | | |_| |_| |____| | | | |_| | |_) |
 \___\__,_| .__/ \__,_|_.__/|_|_|_|\__|\__, |    |_| |_|\__,_|_.__/
          |_|                          |___/
`

// getConfigPath returns the path to the config file.
// Priority: CAPHUB_CONFIG env var > XDG_CONFIG_HOME/capability-hub/config.yaml > ~/.config/capability-hub/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("CAPHUB_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "capability-hub", "config.yaml")
}

func usage() {
	fmt.Println("Usage: capability-hub <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                    Start the HTTP server")
	fmt.Println("  init                     Create a new config file interactively")
	fmt.Println("  hash-password [password] Print a bcrypt hash for a practice lead record")
	fmt.Println("  health                   Check server health")
	fmt.Println("  capabilities             List capabilities and their consultants")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin, os.Stdout)
	case "hash-password":
		err = runHashPassword(os.Args[2:], os.Stdin, os.Stdout)
	case "health":
		err = runHealth(ctx)
	case "capabilities":
		err = runCapabilities(ctx, os.Stdout)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Leads:     %s\n", cfg.Credentials.Path)
	green.Print("    ▶ ")
	fmt.Printf("Sessions:  %s\n", cfg.Sessions.Backend)
	if !cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	} else {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}
	fmt.Println()

	shutdownTelemetry := telemetry.Setup(ctx, cfg.Telemetry, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	creds, err := credentials.Load(cfg.Credentials.Path)
	if err != nil {
		return fmt.Errorf("loading practice leads: %w", err)
	}

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	reg, err := registry.New(catalog)
	if err != nil {
		return fmt.Errorf("seeding registry: %w", err)
	}

	sessions, err := openSessionStore(cfg.Sessions)
	if err != nil {
		return err
	}

	logger.Info("components initialized",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"capabilities", reg.Len(),
		"practice_leads", creds.Len(),
	)

	srv, err := server.New(cfg, logger, server.Deps{
		Credentials: creds,
		Sessions:    sessions,
		Registry:    reg,
	})
	if err != nil {
		_ = sessions.Close()
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func loadCatalog(cfg config.CatalogConfig) ([]registry.Capability, error) {
	if cfg.Path == "" {
		return registry.DefaultCatalog(), nil
	}
	catalog, err := registry.LoadCatalog(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return catalog, nil
}

func openSessionStore(cfg config.SessionsConfig) (store.SessionStore, error) {
	switch cfg.Backend {
	case config.SessionBackendSQLite:
		s, err := store.NewSQLiteSessionStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		return s, nil
	default:
		return store.NewMemorySessionStore(), nil
	}
}

// runHashPassword prints a bcrypt hash of the password given as an argument
// or, failing that, the first line of stdin.
func runHashPassword(args []string, stdin io.Reader, stdout io.Writer) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := credentials.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

// serverURL derives the base URL a local CLI should use to reach the server.
// CAPHUB_URL overrides everything.
func serverURL(cfg *config.Config) string {
	if envURL := os.Getenv("CAPHUB_URL"); envURL != "" {
		return strings.TrimRight(envURL, "/")
	}
	if cfg.Tailscale.Enabled {
		if cfg.Tailscale.HTTPS || cfg.Tailscale.Funnel {
			return "https://" + cfg.Tailscale.Hostname
		}
		return "http://" + cfg.Tailscale.Hostname
	}
	addr := cfg.Server.HTTPAddr
	if strings.HasPrefix(addr, "0.0.0.0:") {
		addr = "127.0.0.1:" + strings.TrimPrefix(addr, "0.0.0.0:")
	} else if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

func get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return http.DefaultClient.Do(req)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resp, err := get(ctx, serverURL(cfg)+"/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runCapabilities(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resp, err := get(ctx, serverURL(cfg)+"/capabilities")
	if err != nil {
		return fmt.Errorf("listing capabilities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listing capabilities: status %d", resp.StatusCode)
	}

	caps, err := decodeCapabilities(resp.Body)
	if err != nil {
		return err
	}
	printCapabilities(out, caps)
	return nil
}

// decodeCapabilities reads the {name: capability} object, keeping key order.
func decodeCapabilities(r io.Reader) ([]registry.Capability, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding capabilities: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("decoding capabilities: expected a JSON object")
	}

	var caps []registry.Capability
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding capabilities: %w", err)
		}
		name, _ := tok.(string)

		var c registry.Capability
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		c.Name = name
		caps = append(caps, c)
	}
	return caps, nil
}

func printCapabilities(out io.Writer, caps []registry.Capability) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	for _, c := range caps {
		cyan.Fprint(out, c.Name)
		gray.Fprintf(out, "  %s · %d h/week · %d consultants\n", c.PracticeArea, c.Capacity, c.Consultants.Len())
		for _, email := range c.Consultants.Emails() {
			fmt.Fprintf(out, "    - %s\n", email)
		}
	}
}

func runInit(stdin io.Reader, stdout io.Writer) error {
	reader := bufio.NewReader(stdin)

	fmt.Fprintln(stdout, "capability-hub configuration setup")
	fmt.Fprintln(stdout, "==================================")
	fmt.Fprintln(stdout)

	defaultConfigPath := getConfigPath()
	outputFile := prompt(reader, stdout, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, stdout, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	fmt.Fprintln(stdout, "\n--- Server Configuration ---")
	httpAddr := prompt(reader, stdout, "HTTP address", config.DefaultHTTPAddr)

	fmt.Fprintln(stdout, "\n--- Practice Leads ---")
	leadsPath := prompt(reader, stdout, "Practice leads file", "practice_leads.json")

	fmt.Fprintln(stdout, "\n--- Sessions ---")
	backend := prompt(reader, stdout, "Session backend (memory/sqlite)", config.SessionBackendMemory)
	var sessionsPath string
	if backend == config.SessionBackendSQLite {
		sessionsPath = prompt(reader, stdout, "Session database path", "sessions.db")
	}

	fmt.Fprintln(stdout, "\n--- Tailscale Configuration ---")
	tailscaleEnabled := isYes(prompt(reader, stdout, "Enable Tailscale?", "no"))

	var tsHostname, tsAuthKey string
	var tsEphemeral, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, stdout, "Tailscale hostname", "capability-hub")
		tsAuthKey = prompt(reader, stdout, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		tsEphemeral = isYes(prompt(reader, stdout, "Ephemeral node?", "no"))
		tsFunnel = isYes(prompt(reader, stdout, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Fprintln(stdout, "\n--- Logging Configuration ---")
	logLevel := prompt(reader, stdout, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, stdout, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# capability-hub configuration\n")
	cfg.WriteString("# Generated by capability-hub init\n\n")

	cfg.WriteString("server:\n")
	if !tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", httpAddr))
	}
	cfg.WriteString("\n")

	cfg.WriteString("credentials:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", leadsPath))
	cfg.WriteString("\n")

	cfg.WriteString("sessions:\n")
	cfg.WriteString(fmt.Sprintf("  backend: %q\n", backend))
	if sessionsPath != "" {
		cfg.WriteString(fmt.Sprintf("  path: %q\n", sessionsPath))
	}
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", tailscaleEnabled))
	if tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", tsHostname))
		if tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	if _, err := config.Parse(outputFile, []byte(cfg.String())); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(stdout, "\nConfig written to %s\n", outputFile)
	fmt.Fprintln(stdout, "\nAdd practice leads with hashes from:")
	fmt.Fprintln(stdout, "  capability-hub hash-password")
	fmt.Fprintln(stdout, "\nTo start the server:")
	fmt.Fprintln(stdout, "  capability-hub serve")

	return nil
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
