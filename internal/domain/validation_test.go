package domain

import (
	"errors"
	"testing"
)

func TestAdminValidation_StartCheck(t *testing.T) {
	t.Run("claims a pending review", func(t *testing.T) {
		v, err := NewAdminValidation("booking-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := v.StartCheck("admin-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Status != ValidationStatusChecking {
			t.Errorf("expected checking, got %s", v.Status)
		}
		if v.AdminID != "admin-1" {
			t.Errorf("expected the claiming admin recorded, got %q", v.AdminID)
		}
	})

	t.Run("rejected on a closed review", func(t *testing.T) {
		v, _ := NewAdminValidation("booking-1")
		if err := v.Confirm("admin-1", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := v.StartCheck("admin-2"); !errors.Is(err, ErrValidationClosed) {
			t.Fatalf("expected ErrValidationClosed, got %v", err)
		}
	})
}
