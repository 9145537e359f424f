package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
service_name: lob
log_level: debug
instruments: [BTC-USD, ETH-USD]
engine:
  queue_size: 64
kafka:
  enabled: true
  brokers: ["${KAFKA_BROKER}"]
  topic: fills
  batch_size: 10
redis:
  enabled: true
  connection_url: redis://localhost:6379/0
  key_prefix: lob
`

func TestLoad(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "kafka-1:9092")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lob", cfg.ServiceName)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, cfg.Instruments)
	assert.Equal(t, 64, cfg.Engine.QueueSize)
	assert.Equal(t, defaultMetricsAddr, cfg.MetricsAddr)
	require.NotNil(t, cfg.Kafka)
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Kafka.BatchSize)
	require.NotNil(t, cfg.Redis)
	assert.Equal(t, defaultDepthLevels, cfg.Redis.DepthLevels)
}

func TestLoadFromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instruments: [ABC]\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defaultQueueSize, cfg.Engine.QueueSize)
	assert.Nil(t, cfg.Kafka)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"no instruments":        "service_name: x\n",
		"duplicate instrument":  "instruments: [A, A]\n",
		"kafka without brokers": "instruments: [A]\nkafka: {enabled: true, topic: t}\n",
		"redis without url":     "instruments: [A]\nredis: {enabled: true}\n",
		"bad yaml":              "instruments: [A\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("instruments: [A]\nkafka: {enabled: false}\n"))
	assert.NoError(t, err, "disabled sinks need no addresses")
}
