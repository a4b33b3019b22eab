// Package cli provides the interactive identitykeeper command-line client.
//
// App wires configuration and the gRPC session client into a small REPL:
// register, login, logout, change password, and view or edit the profile.
// A background watcher pings the server and flips the prompt between online
// and offline.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
