package users

import (
	"context"
	"testing"

	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/memory"
)

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, user.User{Email: "  Ana@Example.COM ", Name: " Ana "})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.Name != "Ana" {
		t.Fatalf("name not trimmed: %q", created.Name)
	}
	if created.Role != user.RoleStandard {
		t.Fatalf("default role = %d", created.Role)
	}
	if !created.Active {
		t.Fatal("new accounts start active")
	}

	// Lookup is normalized the same way.
	if _, err := svc.GetByEmail(ctx, "ANA@example.com"); err != nil {
		t.Fatalf("get by email: %v", err)
	}

	// A differently cased duplicate is still a duplicate.
	if _, err := svc.Register(ctx, user.User{Email: "ANA@EXAMPLE.COM", Name: "Twin"}); !storage.IsAlreadyExists(err) {
		t.Fatalf("expected already-exists, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, user.User{Email: "", Name: "x"}); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for empty email, got %v", err)
	}
	if _, err := svc.Register(ctx, user.User{Email: "not-an-email", Name: "x"}); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for mail without @, got %v", err)
	}
	if _, err := svc.Register(ctx, user.User{Email: "a@b.c", Name: "  "}); storage.CodeOf(err) != storage.CodeInvalidParameter {
		t.Fatalf("expected invalid-parameter for blank name, got %v", err)
	}
}
