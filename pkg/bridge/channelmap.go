// Copyright 2024-2026 Aiku AI

package bridge

import (
	"sort"
	"strings"
)

// ChannelMap is the bidirectional translation between Slack channel names
// and IRC channels. It is built once from the configuration and immutable
// afterwards. IRC channel names are stored lower-cased; a trailing
// whitespace-separated token on the configured IRC value is kept aside as
// the channel join key and never appears in lookups.
type ChannelMap struct {
	slackToIRC map[string]string
	ircToSlack map[string]string
	ircKeys    map[string]string
}

// NewChannelMap builds a ChannelMap from the configured mapping of Slack
// channel name to IRC channel. Construction fails with a ConfigurationError
// if the mapping is empty, an IRC channel is missing its prefix, or either
// side contains duplicates.
func NewChannelMap(mapping map[string]string) (*ChannelMap, error) {
	if len(mapping) == 0 {
		return nil, &ConfigurationError{Reason: "channel_mapping must not be empty"}
	}
	cm := &ChannelMap{
		slackToIRC: make(map[string]string, len(mapping)),
		ircToSlack: make(map[string]string, len(mapping)),
		ircKeys:    make(map[string]string),
	}
	for slackName, ircValue := range mapping {
		slackName = strings.TrimPrefix(slackName, "#")
		if slackName == "" {
			return nil, &ConfigurationError{Reason: "empty slack channel name in channel_mapping"}
		}
		fields := strings.Fields(ircValue)
		if len(fields) == 0 {
			return nil, &ConfigurationError{Reason: "empty irc channel for slack channel " + slackName}
		}
		ircChannel := strings.ToLower(fields[0])
		if !strings.HasPrefix(ircChannel, "#") && !strings.HasPrefix(ircChannel, "&") {
			return nil, &ConfigurationError{Reason: "irc channel " + ircChannel + " is missing its # prefix"}
		}
		if _, ok := cm.slackToIRC[slackName]; ok {
			return nil, &ConfigurationError{Reason: "duplicate slack channel " + slackName + " in channel_mapping"}
		}
		if _, ok := cm.ircToSlack[ircChannel]; ok {
			return nil, &ConfigurationError{Reason: "duplicate irc channel " + ircChannel + " in channel_mapping"}
		}
		cm.slackToIRC[slackName] = ircChannel
		cm.ircToSlack[ircChannel] = slackName
		if len(fields) > 1 {
			cm.ircKeys[ircChannel] = fields[1]
		}
	}
	return cm, nil
}

// IRCFor returns the IRC channel mapped to a Slack channel name.
func (cm *ChannelMap) IRCFor(slackName string) (string, bool) {
	ircChannel, ok := cm.slackToIRC[strings.TrimPrefix(slackName, "#")]
	return ircChannel, ok
}

// SlackFor returns the Slack channel name mapped to an IRC channel.
// IRC channel names are case-insensitive.
func (cm *ChannelMap) SlackFor(ircChannel string) (string, bool) {
	slackName, ok := cm.ircToSlack[strings.ToLower(ircChannel)]
	return slackName, ok
}

// IRCChannels returns all mapped IRC channels in sorted order.
func (cm *ChannelMap) IRCChannels() []string {
	channels := make([]string, 0, len(cm.ircToSlack))
	for ch := range cm.ircToSlack {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

// JoinKey returns the join key configured for an IRC channel, if any.
func (cm *ChannelMap) JoinKey(ircChannel string) string {
	return cm.ircKeys[strings.ToLower(ircChannel)]
}
