// ABOUTME: Tests for child profile persistence
// ABOUTME: Covers pairing codes, coin balance adjustment, and ownership listing

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// createTestParent satisfies the children.parent_id foreign key
func createTestParent(t *testing.T, store *SQLiteStore, id string) {
	t.Helper()

	user := &User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		Name:         "Parent " + id,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
}

func newTestChild(id, parentID, code string) *Child {
	now := time.Now().UTC().Truncate(time.Second)
	return &Child{
		ID:        id,
		ParentID:  parentID,
		Name:      "Kid " + id,
		Age:       9,
		Gender:    "other",
		Code:      code,
		Coins:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetChild(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createTestParent(t, store, "parent-1")
	child := newTestChild("child-1", "parent-1", "ABC123")
	if err := store.CreateChild(ctx, child); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	got, err := store.GetChild(ctx, "child-1")
	if err != nil {
		t.Fatalf("GetChild failed: %v", err)
	}
	if got.ParentID != "parent-1" {
		t.Errorf("ParentID = %q, want parent-1", got.ParentID)
	}
	if got.Code != "ABC123" {
		t.Errorf("Code = %q, want ABC123", got.Code)
	}
	if got.Coins != 0 {
		t.Errorf("Coins = %d, want 0", got.Coins)
	}
}

func TestGetChildByCode(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createTestParent(t, store, "parent-1")
	if err := store.CreateChild(ctx, newTestChild("child-1", "parent-1", "XYZ789")); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	got, err := store.GetChildByCode(ctx, "XYZ789")
	if err != nil {
		t.Fatalf("GetChildByCode failed: %v", err)
	}
	if got.ID != "child-1" {
		t.Errorf("ID = %q, want child-1", got.ID)
	}

	if _, err := store.GetChildByCode(ctx, "NOPE99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestCreateChild_DuplicateCode(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createTestParent(t, store, "parent-1")
	if err := store.CreateChild(ctx, newTestChild("child-1", "parent-1", "SAME00")); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	err := store.CreateChild(ctx, newTestChild("child-2", "parent-1", "SAME00"))
	if !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestCreateChild_MissingParentIsNotDuplicateCode(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	// No parent row: the FK failure must not look like a code collision,
	// or callers would retry it with fresh codes.
	err := store.CreateChild(context.Background(), newTestChild("child-1", "no-such-parent", "ABC123"))
	if err == nil {
		t.Fatal("expected an error for missing parent")
	}
	if errors.Is(err, ErrDuplicateCode) {
		t.Errorf("expected a plain error, got ErrDuplicateCode")
	}
}

func TestListChildren(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createTestParent(t, store, "parent-1")
	createTestParent(t, store, "parent-2")
	if err := store.CreateChild(ctx, newTestChild("child-1", "parent-1", "AAA111")); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}
	if err := store.CreateChild(ctx, newTestChild("child-2", "parent-1", "BBB222")); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}
	if err := store.CreateChild(ctx, newTestChild("child-3", "parent-2", "CCC333")); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	children, err := store.ListChildren(ctx, "parent-1")
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("expected 2 children for parent-1, got %d", len(children))
	}
}

func TestAdjustChildCoins(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createTestParent(t, store, "parent-1")
	if err := store.CreateChild(ctx, newTestChild("child-1", "parent-1", "AAA111")); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	child, err := store.AdjustChildCoins(ctx, "child-1", 30)
	if err != nil {
		t.Fatalf("AdjustChildCoins failed: %v", err)
	}
	if child.Coins != 30 {
		t.Errorf("Coins = %d, want 30", child.Coins)
	}

	child, err = store.AdjustChildCoins(ctx, "child-1", -10)
	if err != nil {
		t.Fatalf("AdjustChildCoins failed: %v", err)
	}
	if child.Coins != 20 {
		t.Errorf("Coins = %d, want 20", child.Coins)
	}
}

func TestAdjustChildCoins_InsufficientBalance(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createTestParent(t, store, "parent-1")
	if err := store.CreateChild(ctx, newTestChild("child-1", "parent-1", "AAA111")); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	if _, err := store.AdjustChildCoins(ctx, "child-1", -5); !errors.Is(err, ErrInsufficientCoins) {
		t.Errorf("expected ErrInsufficientCoins, got %v", err)
	}

	// Balance should be untouched after the failed deduction
	child, err := store.GetChild(ctx, "child-1")
	if err != nil {
		t.Fatalf("GetChild failed: %v", err)
	}
	if child.Coins != 0 {
		t.Errorf("Coins = %d, want 0", child.Coins)
	}
}

func TestAdjustChildCoins_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.AdjustChildCoins(context.Background(), "nonexistent", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAndDeleteChild(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	createTestParent(t, store, "parent-1")
	child := newTestChild("child-1", "parent-1", "AAA111")
	if err := store.CreateChild(ctx, child); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	child.Name = "Renamed"
	child.Age = 10
	if err := store.UpdateChild(ctx, child); err != nil {
		t.Fatalf("UpdateChild failed: %v", err)
	}

	got, err := store.GetChild(ctx, "child-1")
	if err != nil {
		t.Fatalf("GetChild failed: %v", err)
	}
	if got.Name != "Renamed" || got.Age != 10 {
		t.Errorf("update not applied: got %q age %d", got.Name, got.Age)
	}

	if err := store.DeleteChild(ctx, "child-1"); err != nil {
		t.Fatalf("DeleteChild failed: %v", err)
	}
	if _, err := store.GetChild(ctx, "child-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteChild(ctx, "child-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
