package sessionstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	s := &booking.Session{Token: "tok-1", DoorstepPickup: true, PickupAddress: "KN 5 Rd"}
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PickupAddress != "KN 5 Rd" {
		t.Fatalf("expected saved address, got %q", got.PickupAddress)
	}

	// The stored session is a copy, not the caller's pointer.
	got.PickupAddress = "elsewhere"
	again, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.PickupAddress != "KN 5 Rd" {
		t.Fatal("store leaked a shared session pointer")
	}
}

func TestMemoryStore_MissingToken(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ExpiryAbandonsSession(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(30 * time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Save(ctx, &booking.Session{Token: "tok-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	now = now.Add(29 * time.Minute)
	if _, err := store.Get(ctx, "tok-1"); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}

	// Each save refreshes the TTL.
	if err := store.Save(ctx, &booking.Session{Token: "tok-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(29 * time.Minute)
	if _, err := store.Get(ctx, "tok-1"); err != nil {
		t.Fatalf("expected refreshed session, got %v", err)
	}

	now = now.Add(31 * time.Minute)
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to read as not found, got %v", err)
	}
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, &booking.Session{Token: "tok-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
