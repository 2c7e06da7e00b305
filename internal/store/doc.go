// Package store provides persistence for famcoin-gateway.
//
// # Overview
//
// The Store interface covers parent accounts, child profiles, categories,
// tasks, rewards, reward claims, and chat messages. SQLiteStore is the only
// implementation; it creates its schema on open and stores timestamps as
// RFC3339 strings in UTC.
//
// # Conversations
//
// Messages are keyed by the (parent_id, child_id) pair. There is no
// conversation table: the pair itself is the conversation identity, and the
// composite index on (parent_id, child_id, created_at) serves the
// newest-first history query.
//
// # Concurrency
//
// Each operation touches a single row, so the store relies on SQLite's
// per-statement atomicity. Coin adjustments use a guarded UPDATE so balances
// can never go negative under concurrent redemptions.
package store
