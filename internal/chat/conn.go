package chat

// Conn is the capability the core needs from a transport connection. The
// transport layer owns the socket lifecycle; the core only observes whether
// the connection is open and hands it frames to deliver.
//
// Send must never block the caller: a slow or closed recipient is the
// transport's problem, not the router's. Delivery is best effort.
type Conn interface {
	IsOpen() bool
	Send(payload []byte)
}
