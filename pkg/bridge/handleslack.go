// Copyright 2024-2026 Aiku AI

package bridge

// handleSlackMessage relays a Slack message event into the mapped IRC
// channel. The structured subtype picks the rendering: plain text gets the
// configured username prefix, me_message becomes a CTCP ACTION, file_share
// becomes an upload notice, and command-prefixed text is announced and then
// sent raw.
func (b *Bridge) handleSlackMessage(ev SlackMessage) {
	// Echo prevention: never relay the bridge's own posts or other bots.
	if ev.SubType == "bot_message" || (ev.UserID != "" && ev.UserID == b.dir.SelfID()) {
		return
	}

	switch ev.SubType {
	case "", "message", "me_message", "file_share":
	default:
		// channel_join, channel_topic and friends are Slack bookkeeping.
		b.log.Debug().Str("subtype", ev.SubType).Msg("Ignoring Slack message subtype")
		return
	}

	channelName, ok := b.dir.ChannelName(ev.ChannelID)
	if !ok {
		b.log.Warn().Str("channel_id", ev.ChannelID).Msg("Unknown Slack channel, dropping")
		return
	}
	ircChannel, ok := b.channels.IRCFor(channelName)
	if !ok {
		b.log.Debug().Str("slack_channel", channelName).Msg("Slack channel not mapped, dropping")
		return
	}

	author := ev.Username
	if author == "" {
		author, _ = b.dir.UserName(ev.UserID)
	}
	if author == "" {
		b.log.Warn().Str("user_id", ev.UserID).Msg("Unknown Slack author, dropping")
		return
	}

	if b.mute.IsMuted(FromSlack, author, ev.Text) {
		b.log.Debug().Str("author", author).Str("channel", channelName).Msg("Muted Slack message, dropping")
		return
	}

	text := b.fmt.Render(ev.Text)

	switch {
	case ev.SubType == "me_message":
		b.irc.Action(ircChannel, text)
	case ev.SubType == "file_share":
		b.relayFileShare(ircChannel, author, text, ev.Files)
	case b.cfg.IsCommand(text):
		b.irc.Notice(ircChannel, "Command sent from Slack by "+author+":")
		b.irc.Privmsg(ircChannel, text)
	default:
		if text == "" {
			return
		}
		b.irc.Privmsg(ircChannel, b.cfg.FormatIRCPrefix(author)+text)
	}
}

// relayFileShare announces each uploaded file with its permalink, then any
// accompanying comment as a normal message.
func (b *Bridge) relayFileShare(ircChannel, author, comment string, files []SlackFile) {
	prefix := b.cfg.FormatIRCPrefix(author)
	for _, file := range files {
		line := "uploaded a file: " + file.Permalink
		if file.Title != "" {
			line += " (" + file.Title + ")"
		}
		b.irc.Privmsg(ircChannel, prefix+line)
	}
	if comment != "" {
		b.irc.Privmsg(ircChannel, prefix+comment)
	}
}
