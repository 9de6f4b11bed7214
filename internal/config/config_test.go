package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"APP_ENV":    "test",
		"APP_PORT":   "8080",
		"DB_USER":    "auth",
		"DB_HOST":    "127.0.0.1",
		"DB_PORT":    "3306",
		"DB_NAME":    "auth",
		"JWT_SECRET": "secret",
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(lookupFrom(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.VerificationCodeTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "2.1.0", cfg.MinClientVersion)
	assert.Equal(t, BrokerRabbitMQ, cfg.NotifyBroker)
	assert.Equal(t, "notifications.email", cfg.NotifyQueue)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.False(t, cfg.LogResetCodes)
	assert.False(t, cfg.IsDevelopment())
}

func TestParse_Overrides(t *testing.T) {
	env := baseEnv()
	env["APP_ENV"] = "development"
	env["ACCESS_TOKEN_TTL"] = "30m"
	env["VERIFICATION_CODE_TTL"] = "15m"
	env["BCRYPT_COST"] = "4"
	env["NOTIFY_BROKER"] = "Redis"
	env["LOG_RESET_CODES"] = "yes"
	env["AMQP_URL"] = "amqp://u:p@mq:5672/"

	cfg, err := Parse(lookupFrom(env))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.VerificationCodeTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, BrokerRedis, cfg.NotifyBroker)
	assert.Equal(t, "amqp://u:p@mq:5672/", cfg.RabbitMQURL)
	assert.True(t, cfg.LogResetCodes)
	assert.True(t, cfg.IsDevelopment())
}

func TestParse_ReportsAllProblems(t *testing.T) {
	env := baseEnv()
	delete(env, "JWT_SECRET")
	delete(env, "DB_HOST")
	env["BCRYPT_COST"] = "high"
	env["NOTIFY_BROKER"] = "kafka"
	env["ACCESS_TOKEN_TTL"] = "-1h"

	_, err := Parse(lookupFrom(env))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET")
	assert.Contains(t, msg, "DB_HOST")
	assert.Contains(t, msg, "BCRYPT_COST")
	assert.Contains(t, msg, "NOTIFY_BROKER")
	assert.Contains(t, msg, "ACCESS_TOKEN_TTL")
}

func TestRedisOptions(t *testing.T) {
	opts := RedisOptions(lookupFrom(map[string]string{
		"REDIS_HOST": "cache",
		"REDIS_PORT": "6380",
		"REDIS_ADDR": "ignored:1",
		"REDIS_DB":   "3",
		"REDIS_TLS":  "1",
	}))
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.NotNil(t, opts.TLSConfig)

	opts = RedisOptions(lookupFrom(map[string]string{}))
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Nil(t, opts.TLSConfig)
}
