package postgres

import (
	"context"
	"testing"

	"github.com/pratik-mahalle/upscaler/internal/domain/user"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)

	tests := []struct {
		name     string
		user     *user.User
		wantCode string
	}{
		{
			name:     "create user successfully",
			user:     &user.User{Email: "test@example.com", PasswordHash: "hash"},
			wantCode: "",
		},
		{
			name:     "create another user",
			user:     &user.User{Email: "another@example.com", PasswordHash: "hash"},
			wantCode: "",
		},
		{
			name:     "duplicate email differing in case",
			user:     &user.User{Email: "Test@Example.com", PasswordHash: "hash"},
			wantCode: errors.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), tt.user)

			if tt.wantCode != "" {
				if !errors.IsCode(err, tt.wantCode) {
					t.Errorf("Create() error = %v, want code %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if tt.user.ID == "" {
				t.Error("Create() did not set user ID")
			}
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &user.User{Email: "find@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByEmail(ctx, " FIND@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() ID = %v, want %v", got.ID, u.ID)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("GetByEmail() PasswordHash = %v, want hash", got.PasswordHash)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != "find@example.com" {
		t.Errorf("GetByID() Email = %v", byID.Email)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("GetByID() error = %v, want NOT_FOUND", err)
	}
}
