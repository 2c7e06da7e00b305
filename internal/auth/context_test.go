// ABOUTME: Unit tests for authentication context functions
// ABOUTME: Tests Principal context propagation helpers

package auth

import (
	"context"
	"testing"
)

func TestWithPrincipal_FromContext(t *testing.T) {
	p := &Principal{Role: RoleParent, ParentID: "p1"}
	ctx := WithPrincipal(context.Background(), p)

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext() = nil, want principal")
	}
	if got.ParentID != "p1" || got.Role != RoleParent {
		t.Errorf("FromContext() = %+v, want %+v", got, p)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustFromContext() did not panic on empty context")
		}
	}()
	MustFromContext(context.Background())
}

func TestMustFromContext_Present(t *testing.T) {
	p := &Principal{Role: RoleChild, ChildID: "c1", ParentID: "p1"}
	ctx := WithPrincipal(context.Background(), p)

	got := MustFromContext(ctx)
	if got.ChildID != "c1" {
		t.Errorf("MustFromContext() = %+v, want child c1", got)
	}
}
