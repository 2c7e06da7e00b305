// Package auth provides authentication for famcoin-gateway.
//
// # Overview
//
// Two surfaces consume this package: the REST API (Bearer tokens on each
// request) and the realtime chat endpoint (a token presented once at the
// websocket handshake). Both produce the same canonical Principal.
//
// # Principal Normalization
//
// Tokens issued over the life of the system use inconsistent claim names for
// the same identity (childId vs childid vs child, userId vs id). All variants
// are normalized into a single Principal at this boundary; downstream code
// never inspects raw claims.
//
// # Token Format
//
// Tokens are HS256-signed JWTs. Parent tokens carry {sub, userId, role:"parent"};
// child tokens carry {sub, childId, parentId, role:"child"}. Expiry is enforced
// via the standard exp claim.
package auth
