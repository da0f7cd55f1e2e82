// Package timer implements the gRPC transport of the match clock UI bridge.
//
// The service is registered from a hand-written descriptor: every method
// takes a google.protobuf.Struct of arguments and replies with a
// google.protobuf.BoolValue, except ListNotifications which replies with a
// Struct describing the tray. Method names map one-to-one onto coordinator
// commands, so no generated code is involved.
package timer
