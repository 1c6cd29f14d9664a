// Copyright 2024-2026 Aiku AI

package bridge

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// targetText records one outbound IRC call.
type targetText struct {
	Target string
	Text   string
}

// fakeIRC records outbound IRC traffic for assertions.
type fakeIRC struct {
	Privmsgs []targetText
	Notices  []targetText
	Actions  []targetText
	Joins    []targetText // Target = channel, Text = key
	Raws     []string
}

func (f *fakeIRC) Privmsg(target, text string) {
	f.Privmsgs = append(f.Privmsgs, targetText{target, text})
}

func (f *fakeIRC) Notice(target, text string) {
	f.Notices = append(f.Notices, targetText{target, text})
}

func (f *fakeIRC) Action(target, text string) {
	f.Actions = append(f.Actions, targetText{target, text})
}

func (f *fakeIRC) Join(channel, key string) {
	f.Joins = append(f.Joins, targetText{channel, key})
}

func (f *fakeIRC) SendRaw(command string, params ...string) {
	line := command
	for _, p := range params {
		line += " " + p
	}
	f.Raws = append(f.Raws, line)
}

// slackPost records one outbound Slack post.
type slackPost struct {
	ChannelID string
	Text      string
	Opts      PostOptions
}

// fakeSlack records outbound Slack posts for assertions.
type fakeSlack struct {
	Posts []slackPost
	Err   error
}

func (f *fakeSlack) PostMessage(channelID, text string, opts PostOptions) error {
	f.Posts = append(f.Posts, slackPost{channelID, text, opts})
	return f.Err
}

// fakeDirectory is an in-memory SlackDirectory.
type fakeDirectory struct {
	ByName  map[string]SlackChannel
	Users   map[string]string
	Members map[string][]string
	Self    string
}

func (d *fakeDirectory) ChannelName(id string) (string, bool) {
	for _, ch := range d.ByName {
		if ch.ID == id {
			return ch.Name, true
		}
	}
	return "", false
}

func (d *fakeDirectory) UserName(id string) (string, bool) {
	name, ok := d.Users[id]
	return name, ok
}

func (d *fakeDirectory) ChannelByName(name string) (SlackChannel, bool) {
	ch, ok := d.ByName[name]
	return ch, ok
}

func (d *fakeDirectory) ChannelMembers(id string) []string {
	return d.Members[id]
}

func (d *fakeDirectory) SelfID() string {
	return d.Self
}

// testConfig returns a validated config with the standard test mapping
// general <-> #bridge and a one-hour quiet window so no timer fires during
// a test unless it is driven explicitly.
func testConfig() *Config {
	cfg := &Config{
		Server:         "irc.example.com",
		Nickname:       "bridgebot",
		Token:          "xoxb-test",
		ChannelMapping: map[string]string{"general": "#bridge"},
		QueueFor:       Duration(time.Hour),
	}
	cfg.applyDefaults()
	return cfg
}

// testDirectory returns a directory matching testConfig: channel C1
// "general" with members alice and bob, users U1=alice, U2=bob, and the
// bridge itself as USELF.
func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		ByName: map[string]SlackChannel{
			"general": {ID: "C1", Name: "general", IsMember: true},
		},
		Users:   map[string]string{"U1": "alice", "U2": "bob"},
		Members: map[string][]string{"C1": {"alice", "bob"}},
		Self:    "USELF",
	}
}

// newTestBridge wires a Bridge to recording fakes. Tests drive it by
// calling handleEvent directly; nothing runs concurrently.
func newTestBridge(t *testing.T, cfg *Config) (*Bridge, *fakeIRC, *fakeSlack, *fakeDirectory) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	fi := &fakeIRC{}
	fs := &fakeSlack{}
	fd := testDirectory()
	b, err := New(cfg, fi, fs, fd, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b, fi, fs, fd
}
