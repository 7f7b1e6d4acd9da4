package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Audit    AuditConfig    `yaml:"audit"`
	Security SecurityConfig `yaml:"security"`
	Diskpart DiskpartConfig `yaml:"diskpart"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	HTTPPort   int    `yaml:"http_port"`
	GRPCPort   int    `yaml:"grpc_port"`
}

type APIConfig struct {
	EnableHTTP bool   `yaml:"enable_http"`
	EnableGRPC bool   `yaml:"enable_grpc"`
	TLSCert    string `yaml:"tls_cert"`
	TLSKey     string `yaml:"tls_key"`
}

type AuditConfig struct {
	Enabled    bool   `yaml:"enabled"`
	LogPath    string `yaml:"log_path"`
	RemotePush bool   `yaml:"remote_push"`
	RemoteURL  string `yaml:"remote_url"`
}

type SecurityConfig struct {
	TokenAuth bool   `yaml:"token_auth"`
	AuthDB    string `yaml:"auth_db"`
}

type DiskpartConfig struct {
	// ToolPath resolves on PATH when not absolute.
	ToolPath string `yaml:"tool_path"`
	// Timeouts are in seconds; destructive covers wipe/create/delete/format/extend/shrink.
	DefaultTimeoutSec     int `yaml:"default_timeout_sec"`
	DestructiveTimeoutSec int `yaml:"destructive_timeout_sec"`
	// OutputCodepage names the console codepage of localized tool output
	// (cp437, cp850, cp866, cp1252). Empty decodes output as-is.
	OutputCodepage string `yaml:"output_codepage"`
}

func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1",
			HTTPPort:   8085,
			GRPCPort:   9095,
		},
		API: APIConfig{
			EnableHTTP: true,
			EnableGRPC: false,
		},
		Audit: AuditConfig{
			Enabled:    true,
			LogPath:    `C:\ProgramData\dpagent\audit.log`,
			RemotePush: false,
		},
		Security: SecurityConfig{
			TokenAuth: true,
			AuthDB:    `C:\ProgramData\dpagent\auth.db`,
		},
		Diskpart: DiskpartConfig{
			ToolPath:              "diskpart",
			DefaultTimeoutSec:     30,
			DestructiveTimeoutSec: 60,
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 1 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc_port: %d", c.Server.GRPCPort)
	}
	if (c.API.TLSCert == "") != (c.API.TLSKey == "") {
		return fmt.Errorf("tls_cert and tls_key must both be set")
	}
	if c.API.EnableHTTP && c.API.TLSCert != "" {
		if _, err := os.Stat(c.API.TLSCert); err != nil {
			return fmt.Errorf("tls_cert not found: %w", err)
		}
	}
	if c.API.EnableHTTP && c.API.TLSKey != "" {
		if _, err := os.Stat(c.API.TLSKey); err != nil {
			return fmt.Errorf("tls_key not found: %w", err)
		}
	}
	if c.Diskpart.ToolPath == "" {
		return fmt.Errorf("diskpart tool_path must not be empty")
	}
	if c.Diskpart.DefaultTimeoutSec < 1 {
		return fmt.Errorf("invalid default_timeout_sec: %d", c.Diskpart.DefaultTimeoutSec)
	}
	if c.Diskpart.DestructiveTimeoutSec < c.Diskpart.DefaultTimeoutSec {
		return fmt.Errorf("destructive_timeout_sec must be at least default_timeout_sec")
	}
	return nil
}

func (c *Config) SaveExample(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
