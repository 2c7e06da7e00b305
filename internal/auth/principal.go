// ABOUTME: Canonical Principal identity for parent and child connections
// ABOUTME: Normalizes token claim shape variants into a single typed form

package auth

import (
	"errors"
	"fmt"
)

// Role identifies which side of a family conversation a principal is on.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// ErrMissingIdentity is returned when a token carries no usable identity claims.
var ErrMissingIdentity = errors.New("token carries no identity")

// Principal is the authenticated identity attached to a connection or request.
// A child principal always carries both its own ID and its parent's ID.
// A parent principal carries only ParentID.
type Principal struct {
	Role     Role
	ParentID string
	ChildID  string
}

// IsChild reports whether the principal is a child account.
func (p *Principal) IsChild() bool {
	return p.Role == RoleChild
}

// SenderID returns the identity to attribute outgoing messages to:
// the child ID for child principals, the parent ID otherwise.
func (p *Principal) SenderID() string {
	if p.IsChild() {
		return p.ChildID
	}
	return p.ParentID
}

// principalFromClaims builds a canonical Principal from decoded token claims.
// Historic tokens use inconsistent claim names (childId/childid/child,
// parentId/parentid/parent, userId/userID/id), so all variants are accepted
// here and nowhere else.
func principalFromClaims(claims map[string]any) (*Principal, error) {
	role, _ := claims["role"].(string)

	if role == string(RoleChild) {
		p := &Principal{
			Role:     RoleChild,
			ChildID:  firstStringClaim(claims, "childId", "childid", "child", "sub"),
			ParentID: firstStringClaim(claims, "parentId", "parentid", "parent"),
		}
		if p.ChildID == "" && p.ParentID == "" {
			return nil, fmt.Errorf("%w: child token", ErrMissingIdentity)
		}
		return p, nil
	}

	// Parent (or legacy "user"/"family") token
	p := &Principal{
		Role:     RoleParent,
		ParentID: firstStringClaim(claims, "userId", "userID", "parentId", "id", "sub"),
	}
	if p.ParentID == "" {
		return nil, fmt.Errorf("%w: parent token", ErrMissingIdentity)
	}
	return p, nil
}

// firstStringClaim returns the first non-empty string value among the named claims.
func firstStringClaim(claims map[string]any, names ...string) string {
	for _, name := range names {
		if v, ok := claims[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
