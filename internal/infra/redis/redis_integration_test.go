//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"yakmarket-admin-bot/internal/config"
	"yakmarket-admin-bot/internal/domain/model"
)

func TestMessageRegistryAgainstRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	cli, err := NewClient(ctx, &config.RedisConfig{URL: url})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cli.Close()

	reg := NewMessageRegistry(cli, time.Minute)
	t.Cleanup(func() { _ = reg.Clear(ctx) })

	if err := reg.AppendProductMessage(ctx, "it-17", model.MessageRef{ChatID: 1, MessageID: 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	refs, err := reg.ProductMessages(ctx, "it-17")
	if err != nil || len(refs) != 1 {
		t.Fatalf("expected one ref, got %v err=%v", refs, err)
	}
	if err := reg.SetUserView(ctx, "it-5", model.MessageRef{ChatID: 1, MessageID: 3}); err != nil {
		t.Fatalf("set view: %v", err)
	}
	if ref, ok, err := reg.UserView(ctx, "it-5", 1); err != nil || !ok || ref.MessageID != 3 {
		t.Fatalf("unexpected view %+v ok=%v err=%v", ref, ok, err)
	}
}
