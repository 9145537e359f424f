package config

import (
	"errors"
	"fmt"
	"os"

	redis_wrapper "github.com/joripage/limit-orderbook/pkg/infra/redis"
	"github.com/joripage/limit-orderbook/pkg/publisher"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultQueueSize   = 1024
	defaultDepthLevels = 10
	defaultMetricsAddr = ":9090"
)

type EngineConfig struct {
	QueueSize int `yaml:"queue_size"`
}

type AppConfig struct {
	ServiceName string                     `yaml:"service_name"`
	LogLevel    string                     `yaml:"log_level"`
	MetricsAddr string                     `yaml:"metrics_addr"`
	Instruments []string                   `yaml:"instruments"`
	Engine      EngineConfig               `yaml:"engine"`
	Kafka       *publisher.KafkaConfig     `yaml:"kafka"`
	Redis       *redis_wrapper.RedisConfig `yaml:"redis"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}

	cfg, err := Parse(configBytes)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}

// Parse expands environment variables in raw, decodes it, applies defaults
// and validates the result.
func Parse(raw []byte) (*AppConfig, error) {
	raw = []byte(os.ExpandEnv(string(raw)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Engine.QueueSize <= 0 {
		c.Engine.QueueSize = defaultQueueSize
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = defaultMetricsAddr
	}
	if c.Redis != nil && c.Redis.DepthLevels <= 0 {
		c.Redis.DepthLevels = defaultDepthLevels
	}
}

func (c *AppConfig) Validate() error {
	if len(c.Instruments) == 0 {
		return errors.New("no instruments configured")
	}
	seen := make(map[string]struct{}, len(c.Instruments))
	for _, tickID := range c.Instruments {
		if tickID == "" {
			return errors.New("empty instrument tick id")
		}
		if _, ok := seen[tickID]; ok {
			return fmt.Errorf("instrument %q configured twice", tickID)
		}
		seen[tickID] = struct{}{}
	}
	if c.Kafka != nil && c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return errors.New("kafka enabled without brokers or topic")
		}
	}
	if c.Redis != nil && c.Redis.Enabled && c.Redis.ConnectionURL == "" {
		return errors.New("redis enabled without connection_url")
	}
	return nil
}
