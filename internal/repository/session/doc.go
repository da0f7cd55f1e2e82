// Package session persists opaque session blobs keyed by a shared password.
//
// Blobs live in a diskv store. The password never reaches the filesystem:
// each entry is named after the hex SHA-256 of the password and sharded by
// its first two characters. Entries not written for longer than the
// retention period are pruned.
package session
