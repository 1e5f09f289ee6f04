// Package cli provides the interactive store admin command-line client.
//
// It wires configuration, local credential storage, the API client, and an
// interactive REPL. Typical flow: restore a previous session silently, start
// a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout with a guarded session lifecycle
//   - Product catalog: paginated listing, filtering, create, update, delete
//   - Category management gated by per-category group permissions
//   - Guarded navigation that bounces unauthenticated users to login and
//     resumes the interrupted command afterwards
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
