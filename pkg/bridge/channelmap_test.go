// Copyright 2024-2026 Aiku AI

package bridge

import (
	"errors"
	"testing"
)

func TestChannelMapRoundTrip(t *testing.T) {
	t.Parallel()
	cm, err := NewChannelMap(map[string]string{
		"general": "#general",
		"dev":     "#Dev secretkey",
		"ops":     "&ops",
	})
	if err != nil {
		t.Fatalf("NewChannelMap: %v", err)
	}

	for _, slackName := range []string{"general", "dev", "ops"} {
		ircChannel, ok := cm.IRCFor(slackName)
		if !ok {
			t.Fatalf("IRCFor(%q) not found", slackName)
		}
		back, ok := cm.SlackFor(ircChannel)
		if !ok || back != slackName {
			t.Errorf("SlackFor(IRCFor(%q)) = %q, %v; want %q", slackName, back, ok, slackName)
		}
	}
	for _, ircChannel := range cm.IRCChannels() {
		slackName, ok := cm.SlackFor(ircChannel)
		if !ok {
			t.Fatalf("SlackFor(%q) not found", ircChannel)
		}
		back, ok := cm.IRCFor(slackName)
		if !ok || back != ircChannel {
			t.Errorf("IRCFor(SlackFor(%q)) = %q, %v; want %q", ircChannel, back, ok, ircChannel)
		}
	}
}

func TestChannelMapNormalization(t *testing.T) {
	t.Parallel()
	cm, err := NewChannelMap(map[string]string{
		"#dev": "#DevChan thekey ignored",
	})
	if err != nil {
		t.Fatalf("NewChannelMap: %v", err)
	}

	ircChannel, ok := cm.IRCFor("dev")
	if !ok || ircChannel != "#devchan" {
		t.Errorf("IRCFor(dev) = %q, %v; want #devchan (lower-cased, key stripped)", ircChannel, ok)
	}
	if _, ok := cm.IRCFor("#dev"); !ok {
		t.Error("IRCFor should accept a leading # on the slack name")
	}
	if name, ok := cm.SlackFor("#DEVCHAN"); !ok || name != "dev" {
		t.Errorf("SlackFor(#DEVCHAN) = %q, %v; want dev (case-insensitive)", name, ok)
	}
	if key := cm.JoinKey("#DevChan"); key != "thekey" {
		t.Errorf("JoinKey = %q, want thekey", key)
	}
	if key := cm.JoinKey("#nosuch"); key != "" {
		t.Errorf("JoinKey for unmapped channel = %q, want empty", key)
	}
}

func TestChannelMapConstructionErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		mapping map[string]string
	}{
		{"empty", map[string]string{}},
		{"missing prefix", map[string]string{"general": "general"}},
		{"empty value", map[string]string{"general": "   "}},
		{"duplicate irc channel", map[string]string{"a": "#chan", "b": "#Chan"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewChannelMap(tc.mapping)
			if err == nil {
				t.Fatal("expected error")
			}
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Errorf("error type = %T, want *ConfigurationError", err)
			}
		})
	}
}

func TestChannelMapUnmapped(t *testing.T) {
	t.Parallel()
	cm, err := NewChannelMap(map[string]string{"general": "#general"})
	if err != nil {
		t.Fatalf("NewChannelMap: %v", err)
	}
	if _, ok := cm.IRCFor("nosuch"); ok {
		t.Error("IRCFor(nosuch) should not resolve")
	}
	if _, ok := cm.SlackFor("#nosuch"); ok {
		t.Error("SlackFor(#nosuch) should not resolve")
	}
}
