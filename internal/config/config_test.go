package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		DataBackend:     "memory",
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		SessionHours:    24,
		ExportBatchSize: 10,
		ExportInterval:  30 * time.Second,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "dynamo" }, "invalid data backend"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "at least 16 characters"},
		{"bad session hours", func(c *Config) { c.SessionHours = 0 }, "session lifetime"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost:5672" }, "AMQP URL scheme"},
		{"empty amqp queue", func(c *Config) { c.AMQPURL = "amqp://localhost:5672"; c.AMQPQueue = "" }, "queue name"},
		{"bad batch size", func(c *Config) { c.ExportBatchSize = 0 }, "export batch size"},
		{"bad interval", func(c *Config) { c.ExportInterval = time.Millisecond }, "export interval"},
	}
	for _, tc := range cases {
		c := validConfig()
		tc.mutate(c)
		err := c.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestValidateAccumulatesErrors(t *testing.T) {
	c := validConfig()
	c.Port = "x"
	c.JWTSecret = ""
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}
