package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9090
database:
  dsn: "root:pw@tcp(127.0.0.1:3306)/motorway?parseTime=true"
kafka:
  brokers: ["k1:9092", "k2:9092"]
kafka_event_topic:
  topic: negotiation-events
  group_id: negotiation-push
negotiation:
  snapshot_ttl: 30
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "negotiation-events", cfg.KafkaEventTopic.Topic)
	assert.Equal(t, 30, cfg.Negotiation.SnapshotTTL)
	// 未配置的键取默认值
	assert.Equal(t, 10, cfg.Negotiation.LockTTL)
	assert.Equal(t, "@every 5s", cfg.Negotiation.RelaySpec)
	assert.Equal(t, 10, cfg.Negotiation.RelayMaxAttempts)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "vehicles", cfg.Elastic.VehicleIndex)
}
