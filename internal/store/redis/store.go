// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package redis provides a Redis-backed store.Store for deployments where several
// terminals share one persisted identity.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"chatbox/cli/internal/store"
)

// Store is a Redis-backed implementation of store.Store
type Store struct {
	client *redis.Client
	cfg    Config
	prefix string
	log    *slog.Logger
}

// Ensure Store implements the interface
var _ store.Store = (*Store)(nil)

// New connects to Redis and verifies the connection
func New(cfg Config, log *slog.Logger) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg, log), nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, log *slog.Logger) *Store {
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		client: client,
		cfg:    cfg,
		prefix: "chatbox:" + cfg.Profile + ":",
		log:    log.With("component", "store.redis"),
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OpTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("read failed", "key", key, "err", err)
		}
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}

func (s *Store) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		s.log.Warn("write failed", "key", key, "err", err)
	}
}

func (s *Store) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.log.Warn("delete failed", "key", key, "err", err)
	}
}
