package policy

import (
	"testing"

	"github.com/messagely/apiserver/types"
	"github.com/stretchr/testify/assert"
)

func messageBetween(from, to string) types.MessageDetail {
	return types.MessageDetail{
		FromUser: types.UserSummary{Username: from},
		ToUser:   types.UserSummary{Username: to},
	}
}

func TestCanView(t *testing.T) {
	msg := messageBetween("alice", "bob")

	tests := []struct {
		name     string
		identity string
		want     bool
	}{
		{"sender may view", "alice", true},
		{"recipient may view", "bob", true},
		{"third party may not view", "carol", false},
		{"empty identity may not view", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanView(tt.identity, msg))
		})
	}
}

func TestCanMarkRead(t *testing.T) {
	msg := messageBetween("alice", "bob")

	tests := []struct {
		name     string
		identity string
		want     bool
	}{
		{"recipient may mark read", "bob", true},
		{"sender may not mark read", "alice", false},
		{"third party may not mark read", "carol", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMarkRead(tt.identity, msg))
		})
	}
}

func TestOwnsMailbox(t *testing.T) {
	assert.True(t, OwnsMailbox("alice", "alice"))
	assert.False(t, OwnsMailbox("alice", "bob"))
	assert.False(t, OwnsMailbox("", "bob"))
}

// A message to oneself is viewable and markable by that same identity.
func TestSelfMessage(t *testing.T) {
	msg := messageBetween("alice", "alice")
	assert.True(t, CanView("alice", msg))
	assert.True(t, CanMarkRead("alice", msg))
}
