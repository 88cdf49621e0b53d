// Package bridge serves document events from a browser over WebSocket.
//
// Each WebSocket connection is one component lifetime. When a client
// connects, the server creates a lifecycle.Owner and a dom.Document for the
// session, runs the Component setup function (which typically calls
// listen.Use), and mounts the owner. Events sent by the client are
// dispatched into the session's document. When the connection closes the
// owner is disposed, which runs the component's teardown.
//
// # Wire Format
//
// All frames are JSON text messages.
//
// Client to server:
//
//	{"type": "keydown", "data": {"key": "Enter"}, "ts": 1700000000000}
//
// Server to client:
//
//	{"op": "listen", "type": "keydown"}    // first listener for keydown attached
//	{"op": "unlisten", "type": "keydown"}  // last listener for keydown removed
//	{"op": "event", "type": "keydown", "data": {...}}
//	{"op": "error", "code": "L040", "message": "Malformed event frame"}
//
// The client uses listen/unlisten to decide which real document events to
// forward, so only events the server is listening for cross the wire.
//
// # Routes
//
// Handler mounts the WebSocket endpoint at /ws, a health check at /healthz
// and the Prometheus endpoint at /metrics.
package bridge
