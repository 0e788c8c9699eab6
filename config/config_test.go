package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  notification_requested_topic_name: "shipment.notification_requested"
redis:
  host: "localhost"
  port: 6379
shiptrack:
  grpc_addr: ":50051"
  http_addr: ":8080"
  storage_driver: "memory"
  facility_location: "Chrisdan Enterprises - Jamaica, NY"
  strict_transitions: true
  lookup_cache_ttl_seconds: 30
  notification_mode: "queued"
notify:
  email_from: "Chrisdan Enterprises <noreply@example.com>"
  resend_api_key: "from-file"
  rate_limit_per_recipient_per_minute: 5
`

func writeSample(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o600))
	return p
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeSample(t))
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "shipment.notification_requested", cfg.Kafka.NotificationRequestedTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, ":8080", cfg.ShipTrack.HTTPAddr)
	require.Equal(t, "memory", cfg.ShipTrack.StorageDriver)
	require.True(t, cfg.ShipTrack.StrictTransitions)
	require.Equal(t, 30, cfg.ShipTrack.LookupCacheTTLSeconds)
	require.Equal(t, 5, cfg.Notify.RateLimitPerRecipientPerMinute)
}

func TestLoadConfig_EnvOverridesCredentials(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "from-env")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")

	cfg, err := LoadConfig(writeSample(t))
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Notify.ResendAPIKey)
	require.Equal(t, "12345", cfg.Notify.WhatsAppPhoneID)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfig_Addresses(t *testing.T) {
	cfg, err := LoadConfig(writeSample(t))
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.PostgresConnString())
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers())
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadConfig_ShippedSample(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "configs", "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.ShipTrack.StorageDriver)
	require.Equal(t, "direct", cfg.ShipTrack.NotificationMode)
	require.Equal(t, ":8082", cfg.Notify.WorkerHTTPAddr)
	require.Equal(t, "first", cfg.Notify.KafkaStartOffset)
	require.Equal(t, 5, cfg.ShipTrack.LedgerWriteTimeoutSeconds)
}
