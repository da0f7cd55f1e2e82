// Package session serves the session key/value endpoint over HTTP.
//
// Every request is a POST of {"action", "password", "data"} to the root path.
// The check, load and save actions map onto the session repository, and
// stale sessions are pruned before each action runs.
package session
