// Copyright 2024-2026 Aiku AI

package bridge

import "testing"

func TestMuteFilterUsers(t *testing.T) {
	t.Parallel()
	f := NewMuteFilter(MuteUsers{
		IRC:   []string{"Troll"},
		Slack: []string{"spambot"},
	}, nil)

	if !f.IsMuted(FromIRC, "troll", "hi") {
		t.Error("IRC user mute should be case-insensitive")
	}
	if f.IsMuted(FromSlack, "troll", "hi") {
		t.Error("IRC mute list must not apply to the Slack direction")
	}
	if !f.IsMuted(FromSlack, "SpamBot", "hi") {
		t.Error("Slack user mute should be case-insensitive")
	}
	if f.IsMuted(FromIRC, "alice", "hi") {
		t.Error("unlisted user should not be muted")
	}
}

func TestMuteFilterWords(t *testing.T) {
	t.Parallel()
	f := NewMuteFilter(MuteUsers{}, []string{"badword"})

	if !f.IsMuted(FromIRC, "alice", "this has badword here") {
		t.Error("substring match should mute")
	}
	if !f.IsMuted(FromIRC, "alice", "SHOUTING BADWORD LOUDLY") {
		t.Error("substring match should be case-insensitive")
	}
	if !f.IsMuted(FromSlack, "alice", "embeddedbadwordhere") {
		t.Error("blocked words match anywhere in the text")
	}
	if f.IsMuted(FromSlack, "alice", "perfectly fine") {
		t.Error("clean text should not be muted")
	}
}

func TestMuteFilterEmpty(t *testing.T) {
	t.Parallel()
	f := NewMuteFilter(MuteUsers{}, []string{""})
	if f.IsMuted(FromIRC, "alice", "anything") {
		t.Error("empty blocked word must not mute everything")
	}
}
