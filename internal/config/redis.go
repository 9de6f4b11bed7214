package config

// This file defines the Redis client constructor.  Redis is used as the
// alternative notification broker (a list acting as a work queue) when
// NOTIFY_BROKER=redis.  The client parameters are loaded from environment
// variables.

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions reads the Redis connection settings from the environment.
// Supported variables are:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (used when host/port are not both set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
func RedisOptions(lookup func(string) (string, bool)) *redis.Options {
	get := func(k string) string { v, _ := lookup(k); return v }
	addr := get("REDIS_ADDR")
	if host, port := get("REDIS_HOST"), get("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if n, err := strconv.Atoi(get("REDIS_DB")); err == nil {
		dbNum = n
	}
	var tlsConf *tls.Config
	if v := get("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &redis.Options{
		Addr:      addr,
		Password:  get("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	}
}

// NewRedisClient instantiates a Redis client from the environment and pings
// it with a short timeout.  Unlike a cache, the notification queue cannot
// degrade silently, so a failed ping is returned as an error.
func NewRedisClient(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(RedisOptions(os.LookupEnv))
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return client, nil
}
