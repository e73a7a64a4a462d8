package statusflow

import (
	"testing"

	"github.com/expediterhq/expediter/internal/order/domain"
)

func TestAllowedStrict(t *testing.T) {
	cases := []struct {
		from, to domain.Status
		want     bool
	}{
		{domain.StatusPending, domain.StatusPreparing, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		{domain.StatusPending, domain.StatusCompleted, false},
		{domain.StatusPreparing, domain.StatusReady, true},
		{domain.StatusPreparing, domain.StatusPending, false},
		{domain.StatusReady, domain.StatusCompleted, true},
		{domain.StatusReady, domain.StatusCancelled, false},
		{domain.StatusCompleted, domain.StatusPending, false},
		{domain.StatusCompleted, domain.StatusCompleted, false},
		{domain.StatusCancelled, domain.StatusPreparing, false},
		{domain.StatusCancelled, domain.StatusCancelled, false},
	}

	for _, tc := range cases {
		if got := Allowed(tc.from, tc.to, true); got != tc.want {
			t.Errorf("Allowed(%s, %s, strict) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAllowedPermissive(t *testing.T) {
	// Permissive mode accepts any known status, including backwards moves.
	if !Allowed(domain.StatusReady, domain.StatusPending, false) {
		t.Error("permissive mode should allow backwards transitions")
	}
	if !Allowed(domain.StatusCompleted, domain.StatusPreparing, false) {
		t.Error("permissive mode should allow reopening a completed order")
	}
	if Allowed(domain.StatusPending, domain.Status("shipped"), false) {
		t.Error("unknown statuses stay rejected even in permissive mode")
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []domain.Status{domain.StatusCompleted, domain.StatusCancelled} {
		if !Terminal(s) {
			t.Errorf("Terminal(%s) = false, want true", s)
		}
	}
	for _, s := range []domain.Status{domain.StatusPending, domain.StatusPreparing, domain.StatusReady} {
		if Terminal(s) {
			t.Errorf("Terminal(%s) = true, want false", s)
		}
	}
}
