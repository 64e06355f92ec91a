package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8000"

// ServerConfig server configuration
type ServerConfig struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// Config CLI configuration
type Config struct {
	DefaultServer string                  `yaml:"default_server"`
	Servers       map[string]ServerConfig `yaml:"servers"`
	configPath    string
}

// getConfigPath gets the configuration file path
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".saas-analytics")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "cli.yaml"), nil
}

// LoadConfig loads ~/.saas-analytics/cli.yaml, creating it on first use
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return loadConfigFrom(configPath)
}

func loadConfigFrom(configPath string) (*Config, error) {
	config := &Config{
		configPath: configPath,
		Servers:    make(map[string]ServerConfig),
	}

	// If config file doesn't exist, create default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config.DefaultServer = "local"
		config.Servers["local"] = ServerConfig{
			URL:         defaultServerURL,
			Description: "Local analytics API",
		}
		if err := config.Save(); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid CLI config %s: %w", configPath, err)
	}
	if config.Servers == nil {
		config.Servers = make(map[string]ServerConfig)
	}

	config.configPath = configPath
	return config, nil
}

// Save saves the configuration
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// AddServer adds a server
func (c *Config) AddServer(name, url, description string) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if url == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	c.Servers[name] = ServerConfig{
		URL:         url,
		Description: description,
	}

	// If this is the first server, set it as default
	if c.DefaultServer == "" {
		c.DefaultServer = name
	}

	return c.Save()
}

// RemoveServer removes a server
func (c *Config) RemoveServer(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}

	delete(c.Servers, name)

	// If the deleted server was the default, pick the first remaining one
	if c.DefaultServer == name {
		c.DefaultServer = ""
		if names := c.ServerNames(); len(names) > 0 {
			c.DefaultServer = names[0]
		}
	}

	return c.Save()
}

// SetDefault sets the default server
func (c *Config) SetDefault(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}

	c.DefaultServer = name
	return c.Save()
}

// GetServer gets server configuration; an empty name means the default
func (c *Config) GetServer(name string) (*ServerConfig, error) {
	if name == "" {
		name = c.DefaultServer
	}

	server, exists := c.Servers[name]
	if !exists {
		return nil, fmt.Errorf("server '%s' not found", name)
	}

	return &server, nil
}

// ServerNames lists configured server names in sorted order
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
