// Package server implements the transport layer of the PeerChat relay: the
// HTTP and WebSocket surface in front of the chat core.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, routing, metrics, and HTTP handlers. The server
// package never inspects chat state directly; it feeds connection and frame
// events to chat.Router and delivers whatever the router emits.
package server
