//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/infra/registry"
	"yakmarket-admin-bot/internal/usecase"
)

func TestUserUseCase(t *testing.T) {
	ctx := context.Background()

	newUC := func() (*MockBackend, *registry.Memory, *MockAuditLog, usecase.UserUseCase) {
		backend := NewMockBackend()
		backend.Users["5"] = &model.ManagedUser{ID: "5", Username: "bob", Warnings: 2}
		reg := registry.NewMemory()
		audit := &MockAuditLog{}
		return backend, reg, audit, usecase.NewUserUseCase(backend, reg, audit, 20, 100, newTestLogger())
	}

	t.Run("should return the refetched record after warn", func(t *testing.T) {
		_, _, audit, uc := newUC()

		u, err := uc.Warn(ctx, 1, "5", "spam")

		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if u == nil || u.Warnings != 3 {
			t.Fatalf("expected 3 warnings, but got %+v", u)
		}
		if audit.Entries[0].Detail != "spam" || audit.Entries[0].Verb != model.VerbWarn {
			t.Errorf("unexpected audit entry %+v", audit.Entries[0])
		}
	})

	t.Run("should surface backend failure on warn", func(t *testing.T) {
		backend, _, _, uc := newUC()
		backend.MutateErr = domain.ErrBackendUnavailable

		u, err := uc.Warn(ctx, 1, "5", "")

		if !errors.Is(err, domain.ErrBackendUnavailable) || u != nil {
			t.Fatalf("expected backend failure, got u=%+v err=%v", u, err)
		}
		if backend.Users["5"].Warnings != 2 {
			t.Error("warning count must stay at 2")
		}
	})

	t.Run("should block then unblock", func(t *testing.T) {
		_, _, _, uc := newUC()
		u, err := uc.Block(ctx, 1, "5")
		if err != nil || !u.Blocked {
			t.Fatalf("expected blocked user, got %+v err=%v", u, err)
		}
		u, err = uc.Unblock(ctx, 1, "5")
		if err != nil || u.Blocked {
			t.Fatalf("expected unblocked user, got %+v err=%v", u, err)
		}
	})

	t.Run("should reset warnings to zero", func(t *testing.T) {
		_, _, _, uc := newUC()
		u, err := uc.Unwarn(ctx, 1, "5")
		if err != nil || u.Warnings != 0 {
			t.Fatalf("expected 0 warnings, got %+v err=%v", u, err)
		}
	})

	t.Run("should report success when only the refetch fails", func(t *testing.T) {
		backend, _, _, uc := newUC()
		backend.GetUserErr = domain.ErrBackendUnavailable

		u, err := uc.Block(ctx, 1, "5")

		if err != nil || u != nil {
			t.Fatalf("expected nil user and nil error, got %+v %v", u, err)
		}
		if !backend.Users["5"].Blocked {
			t.Error("expected the block committed")
		}
	})

	t.Run("should drop user views on delete", func(t *testing.T) {
		backend, reg, _, uc := newUC()
		_ = reg.SetUserView(ctx, "5", model.MessageRef{ChatID: 1, MessageID: 3})

		if err := uc.Delete(ctx, 1, "5"); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if _, ok := backend.Users["5"]; ok {
			t.Error("expected user deleted at backend")
		}
		if _, ok, _ := reg.UserView(ctx, "5", 1); ok {
			t.Error("expected view removed")
		}
	})

	t.Run("should compute stats from the sample", func(t *testing.T) {
		backend, _, _, uc := newUC()
		backend.Users["6"] = &model.ManagedUser{ID: "6", Blocked: true}
		s, err := uc.Stats(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if s.Total != 2 || s.Blocked != 1 || s.Warned != 1 || s.Active != 1 {
			t.Errorf("unexpected stats %+v", s)
		}
	})

	t.Run("should reject empty ids", func(t *testing.T) {
		_, _, _, uc := newUC()
		if _, err := uc.Block(ctx, 1, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, but got: %v", err)
		}
	})
}
