//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/infra/registry"
	"yakmarket-admin-bot/internal/render"
	"yakmarket-admin-bot/internal/usecase"
)

func TestNotificationUseCase(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("should deliver to every operator and record each message", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{}
		reg := registry.NewMemory()
		uc := usecase.NewNotificationUseCase(bot, reg, []int64{8012802187, 42}, render.Options{}, 4, testLogger)

		// --- Act ---
		n, err := uc.NotifyNewProduct(ctx, &model.Product{ID: "17", Title: "Lamp", Price: "50"})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if n != 2 || len(bot.Sent) != 2 {
			t.Fatalf("expected 2 deliveries, but got %d (%d sent)", n, len(bot.Sent))
		}
		for _, s := range bot.Sent {
			if !strings.Contains(s.Text, "Lamp") || !strings.Contains(s.Text, "50") {
				t.Errorf("card is missing title or price: %q", s.Text)
			}
			if s.Rows[0][0].Data != "product_approve_17" {
				t.Errorf("unexpected controls: %+v", s.Rows)
			}
		}
		refs, _ := reg.ProductMessages(ctx, "17")
		if len(refs) != 2 {
			t.Fatalf("expected 2 registry entries under 17, but got %d", len(refs))
		}
		if refs[0].Body == "" {
			t.Error("expected the rendered body stored with the ref")
		}
	})

	t.Run("should keep delivering when one operator fails", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{
			SendMessageFunc: func(_ context.Context, p adapter.SendMessageParams) error {
				if p.ChatID == 1 {
					return errors.New("Forbidden: bot was blocked by the user")
				}
				return nil
			},
		}
		reg := registry.NewMemory()
		uc := usecase.NewNotificationUseCase(bot, reg, []int64{1, 2}, render.Options{}, 1, testLogger)

		// --- Act ---
		n, err := uc.NotifyNewProduct(ctx, &model.Product{ID: "9", Title: "Chair", Price: "10"})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 delivery, but got %d", n)
		}
		refs, _ := reg.ProductMessages(ctx, "9")
		if len(refs) != 1 || refs[0].ChatID != 2 {
			t.Errorf("expected only operator 2 recorded, got %+v", refs)
		}
	})

	t.Run("should fall back to text when the photo cannot be sent", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{
			SendMessageFunc: func(_ context.Context, p adapter.SendMessageParams) error {
				if p.PhotoURL != "" {
					return errors.New("Bad Request: wrong file identifier")
				}
				return nil
			},
		}
		reg := registry.NewMemory()
		uc := usecase.NewNotificationUseCase(bot, reg, []int64{1}, render.Options{}, 1, testLogger)

		// --- Act ---
		n, err := uc.NotifyNewProduct(ctx, &model.Product{ID: "3", Title: "Vase", Price: "5", ImageURL: "https://cdn/x.jpg"})

		// --- Assert ---
		if err != nil || n != 1 {
			t.Fatalf("expected a text delivery, got n=%d err=%v", n, err)
		}
		refs, _ := reg.ProductMessages(ctx, "3")
		if len(refs) != 1 || refs[0].HasPhoto {
			t.Errorf("expected a text ref, got %+v", refs)
		}
	})

	t.Run("should report when nobody received the card", func(t *testing.T) {
		bot := &MockTelegramBot{SendMessageFunc: func(context.Context, adapter.SendMessageParams) error {
			return errors.New("network down")
		}}
		uc := usecase.NewNotificationUseCase(bot, registry.NewMemory(), []int64{1, 2}, render.Options{}, 2, testLogger)

		_, err := uc.NotifyNewProduct(ctx, &model.Product{ID: "4"})
		if !errors.Is(err, domain.ErrDeliveryFailed) {
			t.Fatalf("expected delivery failed, but got: %v", err)
		}
	})
}
