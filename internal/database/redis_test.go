package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/keyxmakerx/almanac/internal/config"
)

func TestNewRedis_EmptyURL(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Error("expected nil client when no URL is configured")
	}
}

func TestNewRedis_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), config.RedisConfig{
		URL: "redis://" + mr.Addr(),
		TTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mr.Get("k")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != "v" {
		t.Errorf("expected v, got %q", got)
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{URL: "not a url"})
	if err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + addr})
	if err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
