package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	MaxMessageBytes  int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	MessageRateLimit int   `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`

	// RedisAddr switches the chat broadcaster to Redis pub/sub when
	// set, for multi-process deployments. Empty means in-process only.
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`

	// AMQPURL switches email dispatch to a RabbitMQ queue when set.
	// Empty means emails are logged instead.
	AMQPURL   string `mapstructure:"amqp_url" yaml:"amqp_url"`
	MailQueue string `mapstructure:"mail_queue" yaml:"mail_queue"`
	MailFrom  string `mapstructure:"mail_from" yaml:"mail_from"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "studysphere.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "studysphere",
		JWTAudience:       "studysphere-clients",
		TokenTTL:          24 * time.Hour,
		MaxMessageBytes:   1 << 20,
		MessageRateLimit:  120,
		MailQueue:         "email_jobs",
		MailFrom:          "noreply@studysphere.local",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.RedisAddr != "" {
		c.RedisAddr = other.RedisAddr
	}
	if other.AMQPURL != "" {
		c.AMQPURL = other.AMQPURL
	}
}
