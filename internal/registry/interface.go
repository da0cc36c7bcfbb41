package registry

// Conn is a live-connection handle held by the registry. The registry does
// not own the connection; the transport layer manages its lifecycle.
type Conn interface {
	// TrySend pushes a serialized frame without blocking. It reports
	// whether the frame was accepted by the transport buffer.
	TrySend(data []byte) bool
}

// Registry maps user ids to their active live connection. It is rebuilt
// empty on process restart; all previously online users become offline.
type Registry interface {
	// Register inserts or replaces the entry for userID.
	Register(userID uint, conn Conn)
	// Lookup returns the connection for userID, if any.
	Lookup(userID uint) (Conn, bool)
	// Unregister removes every entry whose value is conn.
	Unregister(conn Conn)
	// Count returns the number of registered users.
	Count() int
}
