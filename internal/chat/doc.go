// ABOUTME: Package documentation for the realtime chat core
// ABOUTME: Explains rooms, the frame protocol, and delivery guarantees

// Package chat implements the realtime messaging layer between parents and
// children over websocket connections.
//
// Each connection authenticates at handshake with a JWT and is joined to
// rooms derived from its principal: parents join parent:{id}; children join
// child:{id}, parent:{id}, and the conversation room. The Registry owns the
// room-to-connection index and fans events out to the union of targeted
// rooms, delivering at most once per connection.
//
// Clients speak a correlated request/response protocol: each request frame
// carries an id echoed on exactly one response frame. Persisted messages and
// read receipts are additionally pushed to interested rooms as uncorrelated
// events. Event delivery is fire-and-forget; a connection that cannot keep
// up drops events rather than stalling the sender, and clients reconcile via
// get_history.
package chat
