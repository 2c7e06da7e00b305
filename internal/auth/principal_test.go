// ABOUTME: Unit tests for Principal normalization from token claims
// ABOUTME: Covers legacy claim-name variants and missing-identity cases

package auth

import (
	"errors"
	"testing"
)

func TestPrincipalFromClaims_ChildVariants(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
	}{
		{
			name: "canonical names",
			claims: map[string]any{
				"role": "child", "childId": "c1", "parentId": "p1",
			},
		},
		{
			name: "lowercase variants",
			claims: map[string]any{
				"role": "child", "childid": "c1", "parentid": "p1",
			},
		},
		{
			name: "bare names",
			claims: map[string]any{
				"role": "child", "child": "c1", "parent": "p1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := principalFromClaims(tt.claims)
			if err != nil {
				t.Fatalf("principalFromClaims() error = %v", err)
			}
			if p.Role != RoleChild || p.ChildID != "c1" || p.ParentID != "p1" {
				t.Errorf("got %+v, want child c1/p1", p)
			}
		})
	}
}

func TestPrincipalFromClaims_ParentVariants(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
	}{
		{name: "userId", claims: map[string]any{"role": "parent", "userId": "p1"}},
		{name: "userID", claims: map[string]any{"role": "parent", "userID": "p1"}},
		{name: "id", claims: map[string]any{"role": "parent", "id": "p1"}},
		{name: "sub only", claims: map[string]any{"role": "parent", "sub": "p1"}},
		{name: "no role claim", claims: map[string]any{"userId": "p1"}},
		{name: "legacy family role", claims: map[string]any{"role": "family", "userId": "p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := principalFromClaims(tt.claims)
			if err != nil {
				t.Fatalf("principalFromClaims() error = %v", err)
			}
			if p.Role != RoleParent || p.ParentID != "p1" {
				t.Errorf("got %+v, want parent p1", p)
			}
			if p.ChildID != "" {
				t.Errorf("ChildID = %q, want empty", p.ChildID)
			}
		})
	}
}

func TestPrincipalFromClaims_ChildWithPartialIdentity(t *testing.T) {
	// A child token with only a childId still resolves; the chat layer
	// handles the missing parent linkage with best-effort room joins.
	p, err := principalFromClaims(map[string]any{"role": "child", "childId": "c1"})
	if err != nil {
		t.Fatalf("principalFromClaims() error = %v", err)
	}
	if p.ChildID != "c1" || p.ParentID != "" {
		t.Errorf("got %+v, want child c1 with empty parent", p)
	}
}

func TestPrincipalFromClaims_MissingIdentity(t *testing.T) {
	for _, claims := range []map[string]any{
		{"role": "child"},
		{"role": "parent"},
		{},
	} {
		_, err := principalFromClaims(claims)
		if !errors.Is(err, ErrMissingIdentity) {
			t.Errorf("claims %v: error = %v, want ErrMissingIdentity", claims, err)
		}
	}
}

func TestPrincipal_SenderID(t *testing.T) {
	child := &Principal{Role: RoleChild, ChildID: "c1", ParentID: "p1"}
	if got := child.SenderID(); got != "c1" {
		t.Errorf("child SenderID() = %q, want c1", got)
	}

	parent := &Principal{Role: RoleParent, ParentID: "p1"}
	if got := parent.SenderID(); got != "p1" {
		t.Errorf("parent SenderID() = %q, want p1", got)
	}
}
