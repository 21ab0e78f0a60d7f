// Package relay carries the synchronization protocol between WebSocket
// clients and document sessions.
//
// Each accepted socket becomes a Conn with one reader and one writer
// goroutine. The reader decodes frames in receive order and dispatches
// them: SyncStep1 is answered with SyncStep2, SyncStep2 and Update are
// merged with the connection id as origin, and Awareness frames are
// rebroadcast verbatim to the other connections of the session. The
// writer drains a bounded queue; a connection whose queue is full is
// closed and resynchronizes when it reconnects.
package relay
