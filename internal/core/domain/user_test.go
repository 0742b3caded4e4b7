package domain

import (
	"errors"
	"testing"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("Should create user with normalized email", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("u-1", "  Shopper.One@Example.COM  ")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if user.Email != "shopper.one@example.com" {
			t.Errorf("Expected lower-cased email, got %s", user.Email)
		}
		if user.ID != "u-1" {
			t.Errorf("Expected id u-1, got %s", user.ID)
		}
		if user.CreatedAt.IsZero() || !user.CreatedAt.Equal(user.UpdatedAt) {
			t.Error("Expected CreatedAt and UpdatedAt to be set to the same instant")
		}
	})

	t.Run("Should fail with invalid email", func(t *testing.T) {
		t.Parallel()

		for _, email := range []string{"not-an-email", "", "Shopper <shopper@example.com>"} {
			if _, err := NewUser("u-1", email); !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("%q: expected ErrInvalidEmail, got %v", email, err)
			}
		}
	})
}

func TestUserPassword(t *testing.T) {
	t.Parallel()

	t.Run("Should hash password and advance UpdatedAt", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("u-1", "shopper@example.com")
		before := user.UpdatedAt

		if err := user.SetPassword("groceries-2024"); err != nil {
			t.Fatalf("Expected no error setting password, got %v", err)
		}

		if user.PasswordHash == "" || user.PasswordHash == "groceries-2024" {
			t.Error("Password should be stored as a bcrypt hash")
		}
		if !user.UpdatedAt.After(before) {
			t.Error("UpdatedAt should move forward after setting the password")
		}
	})

	t.Run("Should count characters, not bytes", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("u-1", "shopper@example.com")

		if err := user.SetPassword("ééééééé"); !errors.Is(err, ErrPasswordTooShort) {
			t.Errorf("Expected ErrPasswordTooShort for 7 runes, got %v", err)
		}
	})

	t.Run("CheckPassword should accept only the right password", func(t *testing.T) {
		t.Parallel()
		user, _ := NewUser("u-1", "shopper@example.com")
		_ = user.SetPassword("correct-horse")

		if err := user.CheckPassword("correct-horse"); err != nil {
			t.Errorf("Expected password to match, got %v", err)
		}
		if err := user.CheckPassword("wrong-horse"); err == nil {
			t.Error("Expected error for wrong password")
		}
	})
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@B.Com "); got != "a@b.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
