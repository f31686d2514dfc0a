// Package chat implements the room and connection state machine behind the
// PeerChat relay: the connection registry, the room directory with bounded
// per-room message history, and the router that turns inbound wire frames
// into state mutations and outbound events.
//
// The package is transport-agnostic. It only sees sockets through the Conn
// capability interface, and every state mutation is serialized through the
// Router so concurrent joins, sends, deletes, and disconnects are applied in
// a total order.
package chat
