// Copyright 2024-2026 Aiku AI

package bridge

import (
	"strings"

	"github.com/aiku/slack-irc/pkg/bridge/slackfmt"
)

// handleIRCRegistered joins all mapped IRC channels and sends the
// configured one-shot commands.
func (b *Bridge) handleIRCRegistered() {
	b.log.Info().Msg("Registered with IRC server")
	for _, cmd := range b.cfg.AutoSendCommands {
		b.irc.SendRaw(cmd[0], cmd[1:]...)
	}
	for _, channel := range b.channels.IRCChannels() {
		b.irc.Join(channel, b.channels.JoinKey(channel))
	}
}

// handleIRCMessage relays an IRC channel message to Slack. Order matters:
// mapping, Slack presence, mute, quiet queue, then delivery.
func (b *Bridge) handleIRCMessage(channel, nick, text string) {
	slackName, ok := b.channels.SlackFor(channel)
	if !ok {
		b.log.Debug().Str("channel", channel).Msg("IRC channel not mapped, dropping")
		return
	}
	ch, ok := b.dir.ChannelByName(slackName)
	if !ok {
		b.log.Warn().Str("slack_channel", slackName).Msg("Mapped Slack channel not found, dropping")
		return
	}
	if !ch.IsMember {
		b.log.Warn().Str("slack_channel", slackName).Msg("Bridge is not a member of the Slack channel, dropping")
		return
	}
	if b.mute.IsMuted(FromIRC, nick, text) {
		b.log.Debug().Str("nick", nick).Str("channel", channel).Msg("Muted IRC message, dropping")
		return
	}
	if b.queue.Enqueue(channel, nick, text) {
		b.log.Debug().
			Str("nick", nick).
			Str("channel", channel).
			Int("pending", b.queue.PendingCount(channel, nick)).
			Msg("Holding message during quiet period")
		return
	}
	b.deliverToSlack(channel, nick, text)
}

// deliverToSlack posts one IRC message into the mapped Slack channel,
// highlighting current member names so mentions fire. Both the live path
// and quiet-queue flushes end up here.
func (b *Bridge) deliverToSlack(channel, nick, text string) {
	slackName, ok := b.channels.SlackFor(channel)
	if !ok {
		return
	}
	ch, ok := b.dir.ChannelByName(slackName)
	if !ok {
		b.log.Warn().Str("slack_channel", slackName).Msg("Mapped Slack channel not found, dropping")
		return
	}
	text = slackfmt.Highlight(text, b.dir.ChannelMembers(ch.ID))
	err := b.slack.PostMessage(ch.ID, text, PostOptions{
		Username:  b.cfg.FormatSlackUsername(nick),
		IconURL:   b.cfg.AvatarFor(nick),
		ParseFull: true,
	})
	if err != nil {
		b.log.Error().Err(err).Str("slack_channel", slackName).Msg("Failed to post to Slack")
	}
}

// handleIRCNotice relays a channel notice to Slack in italics. Notices
// addressed to the bridge itself are not channel traffic and are only
// logged.
func (b *Bridge) handleIRCNotice(ev IRCNotice) {
	if !strings.HasPrefix(ev.Target, "#") && !strings.HasPrefix(ev.Target, "&") {
		b.log.Debug().Str("nick", ev.Nick).Msg("Ignoring private notice")
		return
	}
	b.handleIRCMessage(ev.Target, ev.Nick, "*"+ev.Text+"*")
}

func (b *Bridge) handleIRCJoin(ev IRCJoin) {
	if ev.Nick == b.cfg.Nickname {
		b.log.Info().Str("channel", ev.Channel).Msg("Joined IRC channel")
		return
	}
	b.queue.MarkJoin(ev.Channel, ev.Nick)
	b.log.Debug().Str("nick", ev.Nick).Str("channel", ev.Channel).Msg("Quiet period started")
	if b.cfg.IRCStatusNotices.Join {
		b.postStatusNotice(ev.Channel, "*"+ev.Nick+"* has joined the IRC channel")
	}
}

func (b *Bridge) handleIRCPart(ev IRCPart) {
	if ev.Nick == b.cfg.Nickname {
		return
	}
	b.queue.Remove(ev.Channel, ev.Nick)
	if b.cfg.IRCStatusNotices.Leave {
		b.postStatusNotice(ev.Channel, "*"+ev.Nick+"* has left the IRC channel")
	}
}

func (b *Bridge) handleIRCQuit(ev IRCQuit) {
	if ev.Nick == b.cfg.Nickname {
		return
	}
	for _, channel := range ev.Channels {
		b.queue.Remove(channel, ev.Nick)
		if b.cfg.IRCStatusNotices.Leave {
			b.postStatusNotice(channel, "*"+ev.Nick+"* has left the IRC channel")
		}
	}
}

// handleIRCInvite joins the invited channel only when it is mapped.
func (b *Bridge) handleIRCInvite(ev IRCInvite) {
	if _, ok := b.channels.SlackFor(ev.Channel); !ok {
		b.log.Debug().Str("channel", ev.Channel).Str("from", ev.From).Msg("Ignoring invite to unmapped channel")
		return
	}
	b.log.Info().Str("channel", ev.Channel).Str("from", ev.From).Msg("Accepting invite")
	b.irc.Join(ev.Channel, b.channels.JoinKey(ev.Channel))
}

// handleQueueTimerFired flushes a quiet-period buffer whose window elapsed
// without the user leaving. Stale timer generations return nothing.
func (b *Bridge) handleQueueTimerFired(ev queueTimerFired) {
	msgs := b.queue.TimerFired(ev.Channel, ev.Nick, ev.Gen)
	if len(msgs) == 0 {
		return
	}
	b.log.Debug().
		Str("nick", ev.Nick).
		Str("channel", ev.Channel).
		Int("count", len(msgs)).
		Msg("Quiet period elapsed, flushing held messages")
	for _, text := range msgs {
		b.deliverToSlack(ev.Channel, ev.Nick, text)
	}
}

// postStatusNotice posts a synthetic membership notice to the Slack channel
// mapped to an IRC channel, as the bridge itself.
func (b *Bridge) postStatusNotice(ircChannel, text string) {
	slackName, ok := b.channels.SlackFor(ircChannel)
	if !ok {
		return
	}
	ch, ok := b.dir.ChannelByName(slackName)
	if !ok {
		return
	}
	if err := b.slack.PostMessage(ch.ID, text, PostOptions{}); err != nil {
		b.log.Error().Err(err).Str("slack_channel", slackName).Msg("Failed to post status notice")
	}
}
