// Package transfers derives the per-user views of the transfer-session list
// and exposes the session state transitions as backend calls.
//
// The client is a mirror of backend-owned status: nothing here changes a
// TransferSession locally. Every mutating call is followed by a re-fetch of
// the whole list.
package transfers
