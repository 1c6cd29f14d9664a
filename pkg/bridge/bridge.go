// Copyright 2024-2026 Aiku AI

// Package bridge relays messages between a set of mapped IRC channels and
// Slack channels. The relay core is single-threaded: both network clients
// translate their wire callbacks into the event types in events.go and hand
// them to Dispatch, and one loop goroutine applies channel mapping, mute
// filtering, the join quiet-period queue and text transformation before
// invoking the destination network's send primitive.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/slack-irc/pkg/bridge/slackfmt"
)

// IRCSender is the outbound surface of the IRC client used by the bridge.
type IRCSender interface {
	Privmsg(target, text string)
	Notice(target, text string)
	Action(target, text string)
	Join(channel, key string)
	SendRaw(command string, params ...string)
}

// PostOptions carries the identity overrides for a Slack post.
type PostOptions struct {
	Username  string
	IconURL   string
	ParseFull bool
}

// SlackSender is the outbound surface of the Slack client.
type SlackSender interface {
	PostMessage(channelID, text string, opts PostOptions) error
}

// SlackChannel is the directory's view of a Slack channel.
type SlackChannel struct {
	ID       string
	Name     string
	IsMember bool
}

// SlackDirectory is the Slack-side lookup surface: channels and users by
// ID, channels by name, channel membership, and the bridge's own user ID
// for echo prevention.
type SlackDirectory interface {
	slackfmt.Directory
	ChannelByName(name string) (SlackChannel, bool)
	ChannelMembers(id string) []string
	SelfID() string
}

// Bridge is the relay router. It exclusively owns the quiet queue; all
// queue mutation happens on the loop goroutine inside Run.
type Bridge struct {
	cfg      *Config
	log      zerolog.Logger
	channels *ChannelMap
	mute     *MuteFilter
	queue    *QuietQueue
	fmt      *slackfmt.Formatter

	irc   IRCSender
	slack SlackSender
	dir   SlackDirectory

	events chan any
}

// New builds a Bridge from a validated config and the two network clients.
func New(cfg *Config, irc IRCSender, slack SlackSender, dir SlackDirectory, log zerolog.Logger) (*Bridge, error) {
	channels, err := NewChannelMap(cfg.ChannelMapping)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		cfg:      cfg,
		log:      log.With().Str("component", "bridge").Logger(),
		channels: channels,
		mute:     NewMuteFilter(cfg.MuteUsers, cfg.MuteWords),
		fmt:      &slackfmt.Formatter{Directory: dir},
		irc:      irc,
		slack:    slack,
		dir:      dir,
		events:   make(chan any, 256),
	}
	b.queue = newQuietQueue(time.Duration(cfg.QueueFor), func(channel, nick string, gen uint64) {
		b.Dispatch(queueTimerFired{Channel: channel, Nick: nick, Gen: gen})
	})
	return b, nil
}

// Dispatch hands an event to the bridge loop. Safe to call from any
// goroutine; the network adapters and queue timers use it.
func (b *Bridge) Dispatch(ev any) {
	b.events <- ev
}

// Run drains the event loop until the context is cancelled or a fatal
// event arrives. All handler logic executes on this goroutine.
func (b *Bridge) Run(ctx context.Context) error {
	b.log.Info().
		Str("server", b.cfg.Server).
		Str("nickname", b.cfg.Nickname).
		Int("channels", len(b.channels.IRCChannels())).
		Msg("Bridge running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-b.events:
			if err := b.handleEvent(ev); err != nil {
				return err
			}
		}
	}
}

// handleEvent dispatches one event to its handler. A non-nil return is
// fatal and stops the loop.
func (b *Bridge) handleEvent(ev any) error {
	switch ev := ev.(type) {
	case IRCRegistered:
		b.handleIRCRegistered()
	case IRCMessage:
		b.handleIRCMessage(ev.Channel, ev.Nick, ev.Text)
	case IRCNotice:
		b.handleIRCNotice(ev)
	case IRCAction:
		b.handleIRCMessage(ev.Channel, ev.Nick, "_"+ev.Text+"_")
	case IRCJoin:
		b.handleIRCJoin(ev)
	case IRCPart:
		b.handleIRCPart(ev)
	case IRCQuit:
		b.handleIRCQuit(ev)
	case IRCInvite:
		b.handleIRCInvite(ev)
	case IRCError:
		b.log.Warn().Str("message", ev.Message).Msg("IRC error event")
	case IRCAbort:
		b.log.Error().Str("message", ev.Message).Msg("IRC connection lost for good")
		return errors.New("irc connection aborted: " + ev.Message)
	case SlackMessage:
		b.handleSlackMessage(ev)
	case SlackError:
		b.log.Warn().Str("message", ev.Message).Msg("Slack error event")
	case queueTimerFired:
		b.handleQueueTimerFired(ev)
	default:
		b.log.Trace().Type("event_type", ev).Msg("Unhandled event type")
	}
	return nil
}
