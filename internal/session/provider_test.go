package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "default provider", provider: "", wantErr: false},
		{name: "memory provider", provider: "memory", wantErr: false},
		{name: "unsupported provider", provider: "unsupported", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewStore(context.Background(), Config{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if store == nil {
				t.Fatalf("expected store, got nil")
			}
			if err := store.Close(); err != nil {
				t.Fatalf("expected close without error, got %v", err)
			}
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	adminID := uuid.New()
	in := &Data{AdminID: adminID, Email: "admin@example.com", CreatedAt: time.Now().Unix()}
	store.Set(ctx, "sid", in, time.Minute)

	// The store holds a copy, so mutating the caller's value after Set must
	// not leak into stored sessions.
	in.Email = "mutated@example.com"

	got, ok := store.Get(ctx, "sid")
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got.AdminID != adminID {
		t.Fatalf("unexpected admin id: got %s, want %s", got.AdminID, adminID)
	}
	if got.Email != "admin@example.com" {
		t.Fatalf("unexpected email: got %q", got.Email)
	}

	store.Delete(ctx, "sid")
	if _, ok := store.Get(ctx, "sid"); ok {
		t.Fatal("expected session to be gone after delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "sid", &Data{Email: "admin@example.com"}, -time.Second)
	if _, ok := store.Get(ctx, "sid"); ok {
		t.Fatal("expected expired session to be treated as missing")
	}
}
