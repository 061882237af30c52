package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Doorbird DoorbirdConfig `yaml:"doorbird"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

type DoorbirdConfig struct {
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Timeout  string `yaml:"timeout"`
}

type EventsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// ExternalURL is the base URL under which the device can reach the
	// event listener, e.g. http://192.168.1.10:8080.
	ExternalURL string `yaml:"external_url"`
	Token       string `yaml:"token"`
	Relaxation  int    `yaml:"relaxation"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Doorbird.Timeout == "" {
		c.Doorbird.Timeout = "15s"
	}
	if c.Events.ListenAddr == "" {
		c.Events.ListenAddr = ":8080"
	}
	if c.Events.Relaxation == 0 {
		c.Events.Relaxation = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
