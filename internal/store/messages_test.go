// ABOUTME: Tests for chat message persistence
// ABOUTME: Covers insertion, read flags, history ordering, and limit clamping

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func insertTestMessage(t *testing.T, store *SQLiteStore, id string, createdAt time.Time) *Message {
	t.Helper()

	msg := &Message{
		ID:         id,
		ParentID:   "parent-1",
		ChildID:    "child-1",
		SenderID:   "parent-1",
		SenderRole: SenderRoleParent,
		Content:    "message " + id,
		CreatedAt:  createdAt,
	}
	if err := store.InsertMessage(context.Background(), msg); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	return msg
}

func TestInsertAndGetMessage(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	msg := &Message{
		ID:         "msg-1",
		ParentID:   "parent-1",
		ChildID:    "child-1",
		SenderID:   "child-1",
		SenderRole: SenderRoleChild,
		Content:    "did my chores",
		CreatedAt:  now,
	}
	if err := store.InsertMessage(ctx, msg); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	got, err := store.GetMessage(ctx, "msg-1")
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}

	if got.Content != "did my chores" {
		t.Errorf("Content = %q, want %q", got.Content, "did my chores")
	}
	if got.SenderRole != SenderRoleChild {
		t.Errorf("SenderRole = %q, want %q", got.SenderRole, SenderRoleChild)
	}
	if got.Read {
		t.Error("new message should not be marked read")
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestGetMessage_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetMessage(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkMessageRead(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	insertTestMessage(t, store, "msg-1", time.Now().UTC())

	msg, err := store.MarkMessageRead(ctx, "msg-1")
	if err != nil {
		t.Fatalf("MarkMessageRead failed: %v", err)
	}
	if !msg.Read {
		t.Error("message should be marked read")
	}

	// Marking the same message again is a no-op, not an error
	msg, err = store.MarkMessageRead(ctx, "msg-1")
	if err != nil {
		t.Fatalf("second MarkMessageRead failed: %v", err)
	}
	if !msg.Read {
		t.Error("message should still be marked read")
	}
}

func TestMarkMessageRead_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	_, err := store.MarkMessageRead(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListConversationMessages_AscendingOrder(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	// Insert out of chronological order
	insertTestMessage(t, store, "msg-2", base.Add(2*time.Second))
	insertTestMessage(t, store, "msg-1", base.Add(1*time.Second))
	insertTestMessage(t, store, "msg-3", base.Add(3*time.Second))

	messages, err := store.ListConversationMessages(ctx, "parent-1", "child-1", 50)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}

	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, wantID := range []string{"msg-1", "msg-2", "msg-3"} {
		if messages[i].ID != wantID {
			t.Errorf("messages[%d].ID = %q, want %q", i, messages[i].ID, wantID)
		}
	}
}

func TestListConversationMessages_OrderWithUnevenFractions(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 5, 0, time.UTC)

	// A shorter fraction rendered as "...05.5Z" would sort after
	// "...05.55Z" lexicographically; padded storage keeps time order.
	insertTestMessage(t, store, "older", base.Add(500*time.Millisecond))
	insertTestMessage(t, store, "newer", base.Add(550*time.Millisecond))

	messages, err := store.ListConversationMessages(ctx, "parent-1", "child-1", 50)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != "older" || messages[1].ID != "newer" {
		t.Errorf("got %q, %q; want older, newer", messages[0].ID, messages[1].ID)
	}

	// The bounded query must keep the true newest message
	messages, err = store.ListConversationMessages(ctx, "parent-1", "child-1", 1)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != "newer" {
		t.Fatalf("limit 1: got %v, want just newer", messages)
	}
}

func TestListConversationMessages_TimestampTieBreaksOnID(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	at := time.Date(2026, 8, 1, 12, 0, 5, 0, time.UTC)

	insertTestMessage(t, store, "msg-b", at)
	insertTestMessage(t, store, "msg-a", at)

	messages, err := store.ListConversationMessages(ctx, "parent-1", "child-1", 50)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != "msg-a" || messages[1].ID != "msg-b" {
		t.Errorf("got %q, %q; want msg-a, msg-b", messages[0].ID, messages[1].ID)
	}
}

func TestListConversationMessages_LimitKeepsNewest(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	for i := 1; i <= 5; i++ {
		insertTestMessage(t, store, fmt.Sprintf("msg-%d", i), base.Add(time.Duration(i)*time.Second))
	}

	// Limit 2 keeps the newest two, still returned oldest-first
	messages, err := store.ListConversationMessages(ctx, "parent-1", "child-1", 2)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != "msg-4" || messages[1].ID != "msg-5" {
		t.Errorf("got %q, %q; want msg-4, msg-5", messages[0].ID, messages[1].ID)
	}
}

func TestListConversationMessages_DefaultAndMaxLimit(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 60; i++ {
		insertTestMessage(t, store, fmt.Sprintf("msg-%03d", i), base.Add(time.Duration(i)*time.Second))
	}

	// Zero limit falls back to the default of 50
	messages, err := store.ListConversationMessages(ctx, "parent-1", "child-1", 0)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}
	if len(messages) != 50 {
		t.Errorf("expected 50 messages with zero limit, got %d", len(messages))
	}

	// An oversized limit is clamped to 200, which here returns everything
	messages, err = store.ListConversationMessages(ctx, "parent-1", "child-1", 100000)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}
	if len(messages) != 60 {
		t.Errorf("expected 60 messages with oversized limit, got %d", len(messages))
	}
}

func TestListConversationMessages_IsolatedByConversation(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	insertTestMessage(t, store, "msg-1", now)

	other := &Message{
		ID:         "msg-other",
		ParentID:   "parent-1",
		ChildID:    "child-2",
		SenderID:   "parent-1",
		SenderRole: SenderRoleParent,
		Content:    "different conversation",
		CreatedAt:  now,
	}
	if err := store.InsertMessage(ctx, other); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	messages, err := store.ListConversationMessages(ctx, "parent-1", "child-1", 50)
	if err != nil {
		t.Fatalf("ListConversationMessages failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != "msg-1" {
		t.Errorf("expected only msg-1, got %d messages", len(messages))
	}
}

func TestCountConversationMessages(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	count, err := store.CountConversationMessages(ctx, "parent-1", "child-1")
	if err != nil {
		t.Fatalf("CountConversationMessages failed: %v", err)
	}
	if count != 0 {
		t.Errorf("empty conversation count = %d, want 0", count)
	}

	for i := 0; i < 3; i++ {
		insertTestMessage(t, store, fmt.Sprintf("msg-%d", i), base.Add(time.Duration(i)*time.Second))
	}

	count, err = store.CountConversationMessages(ctx, "parent-1", "child-1")
	if err != nil {
		t.Fatalf("CountConversationMessages failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
