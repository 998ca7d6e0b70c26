// Package commands defines the seahorse CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init                 Save account settings and create the local keypair
//   - fingerprint          Print the public key fingerprint
//   - keys                 List pairwise keys held on this device
//   - friend request <p>   Send a friend request carrying a fresh shared key
//   - friend accept <p>    Accept p's request after verifying the key locally
//   - friend reject <p>    Decline p's request
//   - friend confirm <p>   Check the key p echoed when accepting
//   - friend remove <p>    End an accepted friendship
//   - friend list          List friends
//   - friend pending       List requests waiting for you
//   - friend outgoing      List your requests still pending
//   - share <p> [json]     Encrypt data for p and store it in your slot
//   - fetch <p> | --all    Fetch and decrypt what friends shared
//   - message <p> <text>   Append a chat message to the conversation with p
//   - reset                Delete all your registry records and local keys
//
// # Implementation
//
// The root command loads <home>/config.yaml and applies flag overrides before
// any subcommand runs. Subcommands that need keys or the registry build the
// dependency graph (device store, key manager, registry client, services)
// through app.NewWire and close it when they return.
package commands
