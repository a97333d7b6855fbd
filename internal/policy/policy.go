// Package policy holds the pure access decisions for message
// operations. It performs no I/O: callers fetch the message first and
// consult the policy before exposing or mutating it.
package policy

import "github.com/messagely/apiserver/types"

// CanView reports whether identity may see the message detail. Only
// the sender and the recipient may.
func CanView(identity string, msg types.MessageDetail) bool {
	return identity == msg.FromUser.Username || identity == msg.ToUser.Username
}

// CanMarkRead reports whether identity may mark the message as read.
// Only the recipient may; the sender cannot mark their own message.
func CanMarkRead(identity string, msg types.MessageDetail) bool {
	return identity == msg.ToUser.Username
}

// OwnsMailbox reports whether identity may list the mailbox of
// username. Inbox and outbox listings are strictly self-scoped.
func OwnsMailbox(identity, username string) bool {
	return identity == username
}
