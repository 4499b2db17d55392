// Package setup registers the MCP stdio server with desktop MCP clients.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ServerKey is the entry name written under mcpServers.
const ServerKey = "disputekit"

// BinaryName is the MCP stdio server executable.
const BinaryName = "mcp-server-lite"

// ClientConfig is the desktop client configuration file. Unknown top-level
// keys are preserved.
type ClientConfig struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`
	extra      map[string]json.RawMessage
}

// ServerEntry describes how the client launches one MCP server.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options controls Register.
type Options struct {
	ConfigPath string // client config file; defaults to DefaultConfigPath
	BinaryPath string // server executable; searched for when empty
	DataDir    string // exported as DISPUTEKIT_DATA_DIR
}

// Status reports what Register left behind.
type Status struct {
	ConfigPath string
	Registered bool
	Command    string
	DataDir    string
	Issues     []string
}

// DefaultConfigPath returns the desktop client's config file for this OS.
func DefaultConfigPath() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Claude", "claude_desktop_config.json"), nil
	default:
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
		return filepath.Join(configDir, "Claude", "claude_desktop_config.json"), nil
	}
}

// Load reads a client config. A missing file yields an empty config.
func Load(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{MCPServers: map[string]ServerEntry{}, extra: map[string]json.RawMessage{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.extra); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := cfg.extra["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(cfg.extra, "mcpServers")
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]ServerEntry{}
	}
	return cfg, nil
}

// Save writes the config back, creating its directory.
func Save(path string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]interface{}, len(cfg.extra)+1)
	for k, v := range cfg.extra {
		out[k] = v
	}
	out["mcpServers"] = cfg.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Register adds or replaces the disputekit entry and returns the config
// path written.
func Register(opts Options) (string, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", err
		}
	}

	binary := opts.BinaryPath
	if binary == "" {
		var err error
		if binary, err = FindBinary(); err != nil {
			return "", err
		}
	}

	cfg, err := Load(path)
	if err != nil {
		return "", err
	}

	entry := ServerEntry{Command: binary}
	if opts.DataDir != "" {
		entry.Env = map[string]string{"DISPUTEKIT_DATA_DIR": opts.DataDir}
	}
	cfg.MCPServers[ServerKey] = entry

	return path, Save(path, cfg)
}

// FindBinary looks for the MCP server executable on PATH and in the usual
// build and install locations.
func FindBinary() (string, error) {
	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}

	home, _ := os.UserHomeDir()
	locations := []string{
		filepath.Join(".", BinaryName),
		filepath.Join(".", "build", BinaryName),
		filepath.Join(home, ".local", "bin", BinaryName),
		filepath.Join("/usr/local/bin", BinaryName),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			if abs, err := filepath.Abs(loc); err == nil {
				return abs, nil
			}
			return loc, nil
		}
	}
	return "", fmt.Errorf("binary %q not found in common locations", BinaryName)
}

// Inspect reports whether the server is registered in the config at path
// and whether the registered binary and data directory exist.
func Inspect(path string) (*Status, error) {
	status := &Status{ConfigPath: path, Issues: []string{}}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	entry, ok := cfg.MCPServers[ServerKey]
	if !ok {
		status.Issues = append(status.Issues, "disputekit is not registered")
		return status, nil
	}

	status.Registered = true
	status.Command = entry.Command
	status.DataDir = entry.Env["DISPUTEKIT_DATA_DIR"]

	if info, err := os.Stat(entry.Command); err != nil {
		status.Issues = append(status.Issues, fmt.Sprintf("server binary not found: %s", entry.Command))
	} else if info.Mode()&0111 == 0 {
		status.Issues = append(status.Issues, fmt.Sprintf("server binary is not executable: %s", entry.Command))
	}
	if status.DataDir != "" {
		if _, err := os.Stat(status.DataDir); os.IsNotExist(err) {
			status.Issues = append(status.Issues, fmt.Sprintf("data directory will be created on first run: %s", status.DataDir))
		}
	}
	return status, nil
}
