// Package cli provides the ulak command-line client.
//
// It wires configuration, local state storage, the backend client and the
// transfer service into a cobra command tree. Run without a subcommand it
// starts an interactive shell that executes each line through the same tree.
//
// Key features:
//   - login / logout / register / forgot / passwd
//   - send files to a user id or an IP address
//   - inbox and home views of the transfer list
//   - accept / reject / cancel / download of transfer sessions
//
// Every command is checked against routing.Guard before it runs, and every
// backend failure is reported to the user as a short message.
package cli
