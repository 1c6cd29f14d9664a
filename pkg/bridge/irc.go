// Copyright 2024-2026 Aiku AI

package bridge

import (
	"crypto/tls"
	"net"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	irc "github.com/thoj/go-ircevent"
)

// IRCConn owns the IRC connection and translates go-ircevent callbacks
// into bridge events. It also tracks channel membership: the raw QUIT line
// carries no channel list, so the adapter remembers which channels each
// nick shares with the bridge. The membership table is only touched from
// the client's callback goroutine.
type IRCConn struct {
	cfg      *Config
	conn     *irc.Connection
	dispatch func(any)
	log      zerolog.Logger

	members map[string]map[string]struct{}
}

var _ IRCSender = (*IRCConn)(nil)

// NewIRCConn builds the IRC client from the configuration. It does not
// connect; call Start.
func NewIRCConn(cfg *Config, log zerolog.Logger) *IRCConn {
	conn := irc.IRC(cfg.Nickname, cfg.Nickname)
	conn.Debug = cfg.IRCOptions.Debug
	conn.Password = cfg.IRCOptions.Password
	if cfg.IRCOptions.UseTLS {
		conn.UseTLS = true
		conn.TLSConfig = &tls.Config{ServerName: cfg.Server}
	}
	if cfg.IRCOptions.SASLLogin != "" {
		conn.UseSASL = true
		conn.SASLLogin = cfg.IRCOptions.SASLLogin
		conn.SASLPassword = cfg.IRCOptions.SASLPassword
	}
	return &IRCConn{
		cfg:     cfg,
		conn:    conn,
		log:     log.With().Str("component", "irc_client").Logger(),
		members: make(map[string]map[string]struct{}),
	}
}

// Start registers the event callbacks, connects, and runs the client loop
// in the background. When the loop exits the adapter dispatches IRCAbort,
// which the bridge treats as fatal.
func (c *IRCConn) Start(dispatch func(any)) error {
	c.dispatch = dispatch
	c.addCallbacks()

	addr := net.JoinHostPort(c.cfg.Server, strconv.Itoa(c.cfg.IRCOptions.Port))
	c.log.Info().Str("addr", addr).Bool("tls", c.cfg.IRCOptions.UseTLS).Msg("Connecting to IRC")
	if err := c.conn.Connect(addr); err != nil {
		return err
	}
	go func() {
		c.conn.Loop()
		c.dispatch(IRCAbort{Message: "client loop exited"})
	}()
	return nil
}

// Quit disconnects from IRC cleanly.
func (c *IRCConn) Quit() {
	c.conn.Quit()
}

func (c *IRCConn) addCallbacks() {
	c.conn.AddCallback("001", func(e *irc.Event) {
		c.dispatch(IRCRegistered{})
	})
	c.conn.AddCallback("PRIVMSG", func(e *irc.Event) {
		target := e.Arguments[0]
		if !isChannel(target) {
			return
		}
		c.dispatch(IRCMessage{Channel: target, Nick: e.Nick, Text: e.Message()})
	})
	c.conn.AddCallback("CTCP_ACTION", func(e *irc.Event) {
		target := e.Arguments[0]
		if !isChannel(target) {
			return
		}
		c.dispatch(IRCAction{Channel: target, Nick: e.Nick, Text: e.Message()})
	})
	c.conn.AddCallback("NOTICE", func(e *irc.Event) {
		c.dispatch(IRCNotice{Target: e.Arguments[0], Nick: e.Nick, Text: e.Message()})
	})
	c.conn.AddCallback("353", c.handleNames)
	c.conn.AddCallback("JOIN", func(e *irc.Event) {
		channel := e.Arguments[0]
		c.trackJoin(channel, e.Nick)
		c.dispatch(IRCJoin{Channel: channel, Nick: e.Nick})
	})
	c.conn.AddCallback("PART", func(e *irc.Event) {
		channel := e.Arguments[0]
		c.trackPart(channel, e.Nick)
		c.dispatch(IRCPart{Channel: channel, Nick: e.Nick})
	})
	c.conn.AddCallback("KICK", func(e *irc.Event) {
		// A kick is a forced part of the kicked nick.
		channel, kicked := e.Arguments[0], e.Arguments[1]
		c.trackPart(channel, kicked)
		c.dispatch(IRCPart{Channel: channel, Nick: kicked})
	})
	c.conn.AddCallback("QUIT", func(e *irc.Event) {
		channels := c.trackQuit(e.Nick)
		c.dispatch(IRCQuit{Nick: e.Nick, Reason: e.Message(), Channels: channels})
	})
	c.conn.AddCallback("NICK", func(e *irc.Event) {
		c.trackRename(e.Nick, e.Message())
	})
	c.conn.AddCallback("INVITE", func(e *irc.Event) {
		c.dispatch(IRCInvite{Channel: e.Arguments[len(e.Arguments)-1], From: e.Nick})
	})
	c.conn.AddCallback("ERROR", func(e *irc.Event) {
		c.dispatch(IRCError{Message: e.Message()})
	})
}

// handleNames seeds the membership table from RPL_NAMREPLY. Arguments are
// [self, visibility, channel, "nick1 nick2 ..."].
func (c *IRCConn) handleNames(e *irc.Event) {
	if len(e.Arguments) < 4 {
		return
	}
	channel := strings.ToLower(e.Arguments[2])
	for _, name := range strings.Fields(e.Arguments[3]) {
		c.trackJoin(channel, strings.TrimLeft(name, "@+%&~"))
	}
}

func (c *IRCConn) trackJoin(channel, nick string) {
	channel = strings.ToLower(channel)
	nicks := c.members[channel]
	if nicks == nil {
		nicks = make(map[string]struct{})
		c.members[channel] = nicks
	}
	nicks[nick] = struct{}{}
}

func (c *IRCConn) trackPart(channel, nick string) {
	channel = strings.ToLower(channel)
	if nick == c.cfg.Nickname {
		delete(c.members, channel)
		return
	}
	delete(c.members[channel], nick)
}

func (c *IRCConn) trackQuit(nick string) []string {
	var channels []string
	for channel, nicks := range c.members {
		if _, ok := nicks[nick]; ok {
			delete(nicks, nick)
			channels = append(channels, channel)
		}
	}
	return channels
}

func (c *IRCConn) trackRename(oldNick, newNick string) {
	for _, nicks := range c.members {
		if _, ok := nicks[oldNick]; ok {
			delete(nicks, oldNick)
			nicks[newNick] = struct{}{}
		}
	}
}

// Privmsg implements IRCSender.
func (c *IRCConn) Privmsg(target, text string) {
	c.conn.Privmsg(target, text)
}

// Notice implements IRCSender.
func (c *IRCConn) Notice(target, text string) {
	c.conn.Notice(target, text)
}

// Action implements IRCSender.
func (c *IRCConn) Action(target, text string) {
	c.conn.Action(target, text)
}

// Join implements IRCSender. A non-empty key is sent with the JOIN.
func (c *IRCConn) Join(channel, key string) {
	if key != "" {
		c.conn.SendRawf("JOIN %s %s", channel, key)
		return
	}
	c.conn.Join(channel)
}

// SendRaw implements IRCSender, assembling a raw command line. The last
// parameter becomes the trailing argument when it needs one.
func (c *IRCConn) SendRaw(command string, params ...string) {
	line := command
	if len(params) > 0 {
		last := params[len(params)-1]
		if strings.Contains(last, " ") || strings.HasPrefix(last, ":") || last == "" {
			last = ":" + last
		}
		line += " " + strings.Join(append(append([]string{}, params[:len(params)-1]...), last), " ")
	}
	c.conn.SendRaw(line)
}

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}
