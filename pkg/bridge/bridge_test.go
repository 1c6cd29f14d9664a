// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"
	"testing"
)

// TestQuietPeriodEndToEnd walks the full hold-then-flush cycle through the
// event handlers: a join gates the nick, messages buffer, and the timer
// event releases them in order through the normal delivery path.
func TestQuietPeriodEndToEnd(t *testing.T) {
	t.Parallel()
	b, _, fs, _ := newTestBridge(t, nil)

	b.handleEvent(IRCJoin{Channel: "#bridge", Nick: "carol"})
	b.handleEvent(IRCMessage{Channel: "#bridge", Nick: "carol", Text: "one"})
	b.handleEvent(IRCMessage{Channel: "#bridge", Nick: "carol", Text: "two"})
	b.handleEvent(IRCMessage{Channel: "#bridge", Nick: "carol", Text: "three"})

	if len(fs.Posts) != 0 {
		t.Fatalf("messages must be held during the quiet period, got %+v", fs.Posts)
	}
	if got := b.queue.PendingCount("#bridge", "carol"); got != 3 {
		t.Fatalf("pending = %d, want 3", got)
	}

	gen := b.queue.entries["#bridge"]["carol"].gen

	// A superseded timer callback must not flush anything.
	b.handleEvent(queueTimerFired{Channel: "#bridge", Nick: "carol", Gen: gen - 1})
	if len(fs.Posts) != 0 {
		t.Fatalf("stale timer generation must be ignored, got %+v", fs.Posts)
	}

	b.handleEvent(queueTimerFired{Channel: "#bridge", Nick: "carol", Gen: gen})
	want := []string{"one", "two", "three"}
	if len(fs.Posts) != len(want) {
		t.Fatalf("posts = %+v, want %d flushed messages", fs.Posts, len(want))
	}
	for i, text := range want {
		if fs.Posts[i].Text != text {
			t.Errorf("posts[%d].Text = %q, want %q", i, fs.Posts[i].Text, text)
		}
		if fs.Posts[i].Opts.Username != "carol" {
			t.Errorf("posts[%d].Opts.Username = %q, want carol", i, fs.Posts[i].Opts.Username)
		}
	}

	// After the flush the nick is idle again; messages pass straight through.
	b.handleEvent(IRCMessage{Channel: "#bridge", Nick: "carol", Text: "four"})
	if len(fs.Posts) != 4 || fs.Posts[3].Text != "four" {
		t.Fatalf("post-flush message must relay immediately, posts = %+v", fs.Posts)
	}
}

// TestQuietPeriodDiscardOnLeave: leaving during the quiet period throws the
// buffer away, and the timer that was armed for it fires into nothing.
func TestQuietPeriodDiscardOnLeave(t *testing.T) {
	t.Parallel()
	b, _, fs, _ := newTestBridge(t, nil)

	b.handleEvent(IRCJoin{Channel: "#bridge", Nick: "carol"})
	b.handleEvent(IRCMessage{Channel: "#bridge", Nick: "carol", Text: "spam"})
	gen := b.queue.entries["#bridge"]["carol"].gen
	b.handleEvent(IRCPart{Channel: "#bridge", Nick: "carol"})

	b.handleEvent(queueTimerFired{Channel: "#bridge", Nick: "carol", Gen: gen})

	if len(fs.Posts) != 0 {
		t.Errorf("buffer must be discarded on part, got %+v", fs.Posts)
	}
	if got := b.queue.PendingCount("#bridge", "carol"); got != 0 {
		t.Errorf("pending = %d after part, want 0", got)
	}
}

func TestQuitDiscardsAcrossChannels(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.ChannelMapping = map[string]string{
		"general": "#bridge",
		"dev":     "#dev",
	}
	b, _, fs, fd := newTestBridge(t, cfg)
	fd.ByName["dev"] = SlackChannel{ID: "C2", Name: "dev", IsMember: true}

	b.handleEvent(IRCJoin{Channel: "#bridge", Nick: "carol"})
	b.handleEvent(IRCJoin{Channel: "#dev", Nick: "carol"})
	b.handleEvent(IRCMessage{Channel: "#bridge", Nick: "carol", Text: "a"})
	b.handleEvent(IRCMessage{Channel: "#dev", Nick: "carol", Text: "b"})

	b.handleEvent(IRCQuit{Nick: "carol", Channels: []string{"#bridge", "#dev"}})

	if got := b.queue.PendingCount("#bridge", "carol"); got != 0 {
		t.Errorf("pending in #bridge = %d after quit, want 0", got)
	}
	if got := b.queue.PendingCount("#dev", "carol"); got != 0 {
		t.Errorf("pending in #dev = %d after quit, want 0", got)
	}
	if len(fs.Posts) != 0 {
		t.Errorf("no posts expected, got %+v", fs.Posts)
	}
}

func TestIRCAbortIsFatal(t *testing.T) {
	t.Parallel()
	b, _, _, _ := newTestBridge(t, nil)

	if err := b.handleEvent(IRCAbort{Message: "connection reset"}); err == nil {
		t.Fatal("IRCAbort must stop the loop")
	}
}

func TestRunProcessesDispatchedEventsInOrder(t *testing.T) {
	t.Parallel()
	b, fi, _, _ := newTestBridge(t, nil)

	b.Dispatch(SlackMessage{ChannelID: "C1", UserID: "U1", Text: "first"})
	b.Dispatch(SlackMessage{ChannelID: "C1", UserID: "U2", Text: "second"})
	b.Dispatch(IRCAbort{Message: "test shutdown"})

	if err := b.Run(context.Background()); err == nil {
		t.Fatal("Run must return the abort error")
	}

	want := []targetText{
		{"#bridge", "<alice> first"},
		{"#bridge", "<bob> second"},
	}
	if len(fi.Privmsgs) != len(want) {
		t.Fatalf("privmsgs = %+v, want %+v", fi.Privmsgs, want)
	}
	for i := range want {
		if fi.Privmsgs[i] != want[i] {
			t.Errorf("privmsgs[%d] = %+v, want %+v", i, fi.Privmsgs[i], want[i])
		}
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	b, _, _, _ := newTestBridge(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Run(ctx); err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}
