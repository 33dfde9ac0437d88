// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package redisbus publishes system commands on a Redis channel.
package redisbus

import (
	"context"

	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/logging"

	"github.com/redis/go-redis/v9"
)

// Publisher is the subset of Redis the bus needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Close() error
}

type redisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps an existing client.
func NewRedisPublisher(client *redis.Client) Publisher {
	return &redisPublisher{client: client}
}

func (r *redisPublisher) Publish(ctx context.Context, channel string, message []byte) error {
	return r.client.Publish(ctx, channel, message).Err()
}

func (r *redisPublisher) Close() error { return r.client.Close() }

// Bus publishes every system command as its JSON encoding.
type Bus struct {
	pub     Publisher
	channel string
}

// Open connects to url and verifies the server answers.
func Open(ctx context.Context, url, channel string) (*Bus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return New(NewRedisPublisher(client), channel), nil
}

// New builds a bus on top of pub.
func New(pub Publisher, channel string) *Bus {
	return &Bus{pub: pub, channel: channel}
}

func (b *Bus) Send(ctx context.Context, cmd model.CommandSystem) error {
	msg, err := model.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := b.pub.Publish(ctx, b.channel, msg); err != nil {
		return err
	}
	logging.With("redisbus").Debugf("published %s %s on %s", cmd.CommandType(), cmd.CommandID(), b.channel)
	return nil
}

func (b *Bus) Close(ctx context.Context) error { return b.pub.Close() }
