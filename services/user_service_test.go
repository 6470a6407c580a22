package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"rsvp.link/models"
	"rsvp.link/repositories"
)

func TestUserService_Create(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	svc := NewUserService(repositories.NewUserRepository(db))
	ctx := context.Background()

	created, err := svc.Create(ctx, admin.ID, CreateUserInput{
		Username: "  sales9  ",
		Password: "long-enough",
		Role:     models.RoleSales,
		Name:     "销售九号",
		WechatID: "wx-sales9",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Username != "sales9" {
		t.Errorf("username = %q, want trimmed %q", created.Username, "sales9")
	}
	if created.Password == "long-enough" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("long-enough")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if !created.IsActive {
		t.Error("new account not active")
	}
}

func TestUserService_Create_Validation(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	createTestUser(t, db, "taken", models.RoleSales)
	svc := NewUserService(repositories.NewUserRepository(db))
	ctx := context.Background()

	cases := []struct {
		name    string
		input   CreateUserInput
		wantErr error
	}{
		{"empty username", CreateUserInput{Password: "long-enough", Role: models.RoleSales}, ErrUserInvalidInput},
		{"short password", CreateUserInput{Username: "u1", Password: "short", Role: models.RoleSales}, ErrPasswordTooShort},
		{"bad role", CreateUserInput{Username: "u2", Password: "long-enough", Role: "GUEST"}, ErrUserInvalidInput},
		{"duplicate username", CreateUserInput{Username: "taken", Password: "long-enough", Role: models.RoleSales}, ErrUsernameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, admin.ID, tc.input); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUserService_SetActive(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	sales := createTestUser(t, db, "sales1", models.RoleSales)
	svc := NewUserService(repositories.NewUserRepository(db))
	ctx := context.Background()

	if err := svc.SetActive(ctx, admin.ID, sales.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	reloaded, err := svc.GetByID(ctx, sales.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.IsActive {
		t.Error("account still active after deactivation")
	}
	// Map-based updates must still stamp the audit column.
	if reloaded.UpdatedBy == nil || *reloaded.UpdatedBy != admin.ID {
		t.Errorf("UpdatedBy = %v, want %d", reloaded.UpdatedBy, admin.ID)
	}

	if err := svc.SetActive(ctx, admin.ID, sales.ID, true); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	reloaded, _ = svc.GetByID(ctx, sales.ID)
	if !reloaded.IsActive {
		t.Error("account still inactive after reactivation")
	}

	if err := svc.SetActive(ctx, admin.ID, 9999, false); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown id err = %v, want ErrUserNotFound", err)
	}
}

func TestUserService_SetActive_KeepsLastAdmin(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	svc := NewUserService(repositories.NewUserRepository(db))
	ctx := context.Background()

	if err := svc.SetActive(ctx, admin.ID, admin.ID, false); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("deactivating sole admin err = %v, want ErrLastAdmin", err)
	}

	second := createTestUser(t, db, "admin2", models.RoleAdmin)
	if err := svc.SetActive(ctx, admin.ID, second.ID, false); err != nil {
		t.Errorf("deactivating one of two admins failed: %v", err)
	}
}

func TestUserService_ResetPassword(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	sales := createTestUser(t, db, "sales1", models.RoleSales)
	svc := NewUserService(repositories.NewUserRepository(db))
	ctx := context.Background()

	if err := svc.ResetPassword(ctx, admin.ID, sales.ID, "tiny"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password err = %v, want ErrPasswordTooShort", err)
	}
	if err := svc.ResetPassword(ctx, admin.ID, sales.ID, "brand-new-password"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	reloaded, err := svc.GetByID(ctx, sales.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reloaded.Password), []byte("brand-new-password")); err != nil {
		t.Errorf("stored hash does not match new password: %v", err)
	}
}
