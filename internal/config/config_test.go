package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// cliWithPath returns a CLI struct pointing at the given config file.
func cliWithPath(path string) *CLI {
	return &CLI{Config: path}
}

// writeConfig writes data to name inside a fresh temp dir and returns its path.
func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[server]
host = "127.0.0.1"
port = 9000
body_max_bytes = 5242880

[static]
root = "web"
index = "main.html"

[upstream]
base_url = "http://backend.local:5001"
timeout_seconds = 3
idle_connections = 4

[proxy]
path = "/api/orders"

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.Static.Root != "web" {
		t.Errorf("Static.Root = %q, want %q", cfg.Static.Root, "web")
	}
	if cfg.Static.Index != "main.html" {
		t.Errorf("Static.Index = %q, want %q", cfg.Static.Index, "main.html")
	}
	if cfg.Upstream.BaseURL != "http://backend.local:5001" {
		t.Errorf("Upstream.BaseURL = %q, want %q", cfg.Upstream.BaseURL, "http://backend.local:5001")
	}
	if cfg.Upstream.TimeoutSeconds != 3 {
		t.Errorf("Upstream.TimeoutSeconds = %d, want %d", cfg.Upstream.TimeoutSeconds, 3)
	}
	if cfg.Proxy.Path != "/api/orders" {
		t.Errorf("Proxy.Path = %q, want %q", cfg.Proxy.Path, "/api/orders")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.FilePath() != path {
		t.Errorf("FilePath() = %q, want %q", cfg.FilePath(), path)
	}
}

func TestLoad_YAMLConfig(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  port: 9100
upstream:
  base_url: https://orders.example.com
cors:
  allow_headers: "Content-Type, Authorization"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9100)
	}
	if cfg.Upstream.BaseURL != "https://orders.example.com" {
		t.Errorf("Upstream.BaseURL = %q, want %q", cfg.Upstream.BaseURL, "https://orders.example.com")
	}
	if cfg.CORS.AllowHeaders != "Content-Type, Authorization" {
		t.Errorf("CORS.AllowHeaders = %q, want %q", cfg.CORS.AllowHeaders, "Content-Type, Authorization")
	}
	if cfg.CORS.AllowOrigin != "*" {
		t.Errorf("CORS.AllowOrigin = %q, want default %q", cfg.CORS.AllowOrigin, "*")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "config.toml", "[server\nport = ")

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected parse error, got nil")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("error = %q, want mention of parse", err)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[log]
level = "verbose"
`)

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for invalid log level, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "config.toml", "# empty\n")

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Server.Host", cfg.Server.Host, "0.0.0.0"},
		{"Server.Port", cfg.Server.Port, 8080},
		{"Server.BodyMaxBytes", cfg.Server.BodyMaxBytes, int64(1024 * 1024)},
		{"Static.Root", cfg.Static.Root, "javascript-version"},
		{"Static.Index", cfg.Static.Index, "index.html"},
		{"Upstream.BaseURL", cfg.Upstream.BaseURL, "http://localhost:5000"},
		{"Upstream.TimeoutSeconds", cfg.Upstream.TimeoutSeconds, 10},
		{"Proxy.Path", cfg.Proxy.Path, "/api/track-order"},
		{"CORS.AllowOrigin", cfg.CORS.AllowOrigin, "*"},
		{"CORS.AllowMethods", cfg.CORS.AllowMethods, "POST, GET, OPTIONS"},
		{"CORS.AllowHeaders", cfg.CORS.AllowHeaders, "Content-Type"},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "text"},
		{"Metrics.Enabled", cfg.Metrics.Enabled, false},
		{"Metrics.Path", cfg.Metrics.Path, "/metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("default %s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	orig := configSearchPaths
	configSearchPaths = []string{filepath.Join(t.TempDir(), "missing.toml")}
	t.Cleanup(func() { configSearchPaths = orig })

	cfg, err := Load(&CLI{})
	if err != nil {
		t.Fatalf("Load() error = %v; running without a config file should be allowed", err)
	}
	if cfg.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", cfg.FilePath())
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(cliWithPath("/nonexistent/config.toml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[server]
host = "0.0.0.0"
port = 8000

[static]
root = "from-file"

[upstream]
base_url = "http://localhost:5000"

[log]
level = "info"
`)

	cli := &CLI{
		Config:     path,
		Host:       "127.0.0.1",
		Port:       3000,
		BackendURL: "http://127.0.0.1:6000",
		StaticRoot: "from-cli",
		LogLevel:   "debug",
	}

	cfg, err := Load(cli)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q (CLI override)", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d (CLI override)", cfg.Server.Port, 3000)
	}
	if cfg.Upstream.BaseURL != "http://127.0.0.1:6000" {
		t.Errorf("Upstream.BaseURL = %q, want %q (CLI override)", cfg.Upstream.BaseURL, "http://127.0.0.1:6000")
	}
	if cfg.Static.Root != "from-cli" {
		t.Errorf("Static.Root = %q, want %q (CLI override)", cfg.Static.Root, "from-cli")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q (CLI override)", cfg.Log.Level, "debug")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"negative port", "[server]\nport = -1\n", "server.port"},
		{"port too large", "[server]\nport = 70000\n", "server.port"},
		{"negative body_max_bytes", "[server]\nbody_max_bytes = -1\n", "body_max_bytes"},
		{"negative timeout", "[upstream]\ntimeout_seconds = -5\n", "timeout_seconds"},
		{"negative idle connections", "[upstream]\nidle_connections = -1\n", "idle_connections"},
		{"ftp upstream", "[upstream]\nbase_url = \"ftp://localhost:5000\"\n", "http or https"},
		{"upstream without host", "[upstream]\nbase_url = \"http://\"\n", "no host"},
		{"proxy path without slash", "[proxy]\npath = \"api/track-order\"\n", "proxy.path"},
		{"proxy path on healthz", "[proxy]\npath = \"/healthz\"\n", "conflicts"},
		{"proxy path above status", "[proxy]\npath = \"/devserver\"\n", "conflicts"},
		{"index with directory", "[static]\nindex = \"sub/index.html\"\n", "static.index"},
		{"bad log format", "[log]\nformat = \"xml\"\n", "log.format"},
		{"rate limit zero", "[server.rate_limit]\nenabled = true\nrequests_per_second = 0\n", "requests_per_second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.toml", tt.data)

			_, err := Load(cliWithPath(path))
			if err == nil {
				t.Fatalf("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_HTTPSUpstreamAccepted(t *testing.T) {
	path := writeConfig(t, "config.toml", "[upstream]\nbase_url = \"https://orders.example.com\"\n")

	if _, err := Load(cliWithPath(path)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_RateLimitConfig_Enabled(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[server.rate_limit]
enabled = true
requests_per_second = 50.0
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("expected RateLimit.Enabled = true")
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 50.0 {
		t.Errorf("RateLimit.RequestsPerSecond = %v, want 50.0", cfg.Server.RateLimit.RequestsPerSecond)
	}
}

func TestFindConfigInPaths_Found(t *testing.T) {
	path := writeConfig(t, "config.toml", "[server]\nport = 8080\n")

	got := findConfigInPaths([]string{path})
	if got != path {
		t.Errorf("findConfigInPaths() = %q, want %q", got, path)
	}
}

func TestFindConfigInPaths_NotFound(t *testing.T) {
	got := findConfigInPaths([]string{"/nonexistent/a.toml", "/nonexistent/b.toml"})
	if got != "" {
		t.Errorf("findConfigInPaths() = %q, want empty", got)
	}
}

func TestFindConfigInPaths_Priority(t *testing.T) {
	path1 := writeConfig(t, "config.toml", "[server]\nport = 8080\n")
	path2 := writeConfig(t, "config.toml", "[server]\nport = 8081\n")

	got := findConfigInPaths([]string{path1, path2})
	if got != path1 {
		t.Errorf("findConfigInPaths() = %q, want first match %q", got, path1)
	}
}

func TestLoad_MetricsPathDefault(t *testing.T) {
	path := writeConfig(t, "config.toml", "[metrics]\nenabled = true\n")

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
}

func TestLoad_MetricsPathConflicts(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"proxy path", "/api/track-order"},
		{"below proxy path", "/api/track-order/metrics"},
		{"healthz", "/healthz"},
		{"status", "/devserver/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeConfig(t, "config.toml", `
[metrics]
enabled = true
path = "`+tt.path+`"
`)

			_, err := Load(cliWithPath(cfgPath))
			if err == nil {
				t.Fatalf("Load() expected error for metrics.path=%q conflicting with route, got nil", tt.path)
			}
			if !strings.Contains(err.Error(), "conflicts") {
				t.Errorf("error = %q, want mention of conflict", err)
			}
		})
	}
}

func TestLoad_MetricsPathNoLeadingSlash(t *testing.T) {
	path := writeConfig(t, "config.toml", "[metrics]\nenabled = true\npath = \"metrics\"\n")

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for metrics.path without leading slash, got nil")
	}
	if !strings.Contains(err.Error(), "metrics.path") {
		t.Errorf("error = %q, want mention of metrics.path", err)
	}
}

func TestLoad_MetricsDisabledSkipsPathValidation(t *testing.T) {
	path := writeConfig(t, "config.toml", "[metrics]\nenabled = false\npath = \"bad-no-slash\"\n")

	if _, err := Load(cliWithPath(path)); err != nil {
		t.Fatalf("Load() error = %v; disabled metrics should skip path validation", err)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	sc := &ServerConfig{Host: "127.0.0.1", Port: 3000}
	want := "127.0.0.1:3000"
	if got := sc.Addr(); got != want {
		t.Errorf("Addr() = %q, want %q", got, want)
	}
}

func TestConfig_UpstreamURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"http://localhost:5000", "/api/track-order", "http://localhost:5000/api/track-order"},
		{"http://localhost:5000/", "/api/track-order", "http://localhost:5000/api/track-order"},
		{"https://orders.example.com/v2", "/api/track-order", "https://orders.example.com/v2/api/track-order"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			cfg := &Config{
				Upstream: UpstreamConfig{BaseURL: tt.base},
				Proxy:    ProxyConfig{Path: tt.path},
			}
			got, err := cfg.UpstreamURL()
			if err != nil {
				t.Fatalf("UpstreamURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UpstreamURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
