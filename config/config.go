package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	ShipTrack ShipTrackConfig `yaml:"shiptrack"`
	Notify    NotifyConfig    `yaml:"notify"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                           string `yaml:"host"`
	Port                           int    `yaml:"port"`
	NotificationRequestedTopicName string `yaml:"notification_requested_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ShipTrackConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`

	// "postgres" (default) | "memory"
	StorageDriver string `yaml:"storage_driver"`
	// YAML list of shipments loaded into the memory driver on start.
	SeedFile string `yaml:"seed_file"`

	FacilityLocation  string `yaml:"facility_location"`
	DefaultDeviceInfo string `yaml:"default_device_info"`

	// Rejects unknown statuses and backward transitions when set.
	StrictTransitions bool `yaml:"strict_transitions"`

	LookupCacheTTLSeconds int `yaml:"lookup_cache_ttl_seconds"`
	LockTTLSeconds        int `yaml:"lock_ttl_seconds"`

	// Bounds the ledger appends that follow a committed status change.
	LedgerWriteTimeoutSeconds int `yaml:"ledger_write_timeout_seconds"`

	// "direct" (default) | "queued" | "off"
	NotificationMode     string `yaml:"notification_mode"`
	NotifyTimeoutSeconds int    `yaml:"notify_timeout_seconds"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type NotifyConfig struct {
	EmailFrom     string `yaml:"email_from"`
	ResendBaseURL string `yaml:"resend_base_url"`
	ResendAPIKey  string `yaml:"resend_api_key"`

	WhatsAppBaseURL     string `yaml:"whatsapp_base_url"`
	WhatsAppAccessToken string `yaml:"whatsapp_access_token"`
	WhatsAppPhoneID     string `yaml:"whatsapp_phone_number_id"`

	TrackingURL string `yaml:"tracking_url"`

	RateLimitPerRecipientPerMinute int `yaml:"rate_limit_per_recipient_per_minute"`

	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`
	KafkaStartOffset   string `yaml:"kafka_start_offset"`
	WorkerHTTPAddr     string `yaml:"worker_http_addr"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// applyEnv lets provider credentials come from the environment (or a .env file)
// instead of the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.Notify.ResendAPIKey = v
	}
	if v := os.Getenv("WHATSAPP_ACCESS_TOKEN"); v != "" {
		c.Notify.WhatsAppAccessToken = v
	}
	if v := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); v != "" {
		c.Notify.WhatsAppPhoneID = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

func (c *Config) PostgresConnString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.Username, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName, sslMode)
}

func (c *Config) KafkaBrokers() []string {
	return []string{fmt.Sprintf("%s:%d", c.Kafka.Host, c.Kafka.Port)}
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
