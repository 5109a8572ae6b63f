// Package transport wraps ZeroMQ sockets for the ruby node.
//
// This package implements:
//   - Message: single-owner frame buffer handed off on send
//   - Socket: Router/Dealer/Request/Reply/Pub/Sub/Pair endpoints with multi-part frames
//   - Context: socket factory that tracks live sockets by id and force-closes them
//   - ErrorDelegate: observer notified of every transport failure
package transport
