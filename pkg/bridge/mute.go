// Copyright 2024-2026 Aiku AI

package bridge

import "strings"

// Direction identifies which network a message came from.
type Direction int

const (
	// FromIRC marks messages flowing IRC → Slack.
	FromIRC Direction = iota
	// FromSlack marks messages flowing Slack → IRC.
	FromSlack
)

// MuteFilter suppresses messages by author identity or substring match.
// It is immutable after construction and evaluated before any other
// processing on either direction.
type MuteFilter struct {
	ircUsers   map[string]struct{}
	slackUsers map[string]struct{}
	words      []string
}

// NewMuteFilter builds a MuteFilter from the configured user lists and
// blocked substrings. All matching is case-insensitive.
func NewMuteFilter(users MuteUsers, words []string) *MuteFilter {
	f := &MuteFilter{
		ircUsers:   make(map[string]struct{}, len(users.IRC)),
		slackUsers: make(map[string]struct{}, len(users.Slack)),
		words:      make([]string, 0, len(words)),
	}
	for _, u := range users.IRC {
		f.ircUsers[strings.ToLower(u)] = struct{}{}
	}
	for _, u := range users.Slack {
		f.slackUsers[strings.ToLower(u)] = struct{}{}
	}
	for _, w := range words {
		if w != "" {
			f.words = append(f.words, strings.ToLower(w))
		}
	}
	return f
}

// IsMuted reports whether a message by author with the given text should be
// dropped: the author is in the blocked-user set for its direction, or any
// blocked substring occurs in the text.
func (f *MuteFilter) IsMuted(dir Direction, author, text string) bool {
	users := f.ircUsers
	if dir == FromSlack {
		users = f.slackUsers
	}
	if _, ok := users[strings.ToLower(author)]; ok {
		return true
	}
	lower := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
