package hmuxd

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultAPIAddr is where the daemon listens when the config does not say.
const DefaultAPIAddr = "[::]:9999"

// WebSpec configures the handler for non-gRPC traffic.
type WebSpec struct {
	// Greeting is the body served by the catch-all route.
	Greeting string `yaml:"greeting,omitempty"`
}

// MetricsSpec enables the prometheus endpoint at /metrics.
type MetricsSpec struct{}

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	// SharedHandlers serves every connection from one handler pair instead
	// of building a fresh pair per HTTP/2 connection.
	SharedHandlers bool         `yaml:"shared_handlers"`
	Web            WebSpec      `yaml:"web"`
	Metrics        *MetricsSpec `yaml:"metrics,omitempty"`
}

func (c Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultAPIAddr
	}
	return c.ListenAddr
}

func DefaultConfig() Config {
	return Config{
		ListenAddr: DefaultAPIAddr,
		Web:        WebSpec{Greeting: "Hello World"},
		Metrics:    &MetricsSpec{},
	}
}

func LoadConfig(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parsing config from %s", p)
	}
	return config, nil
}

func SaveConfig(c Config, p string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
