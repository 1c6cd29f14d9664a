// Copyright 2024-2026 Aiku AI

package bridge

// Events delivered to the bridge loop. Each network client translates its
// wire callbacks into one of these types and hands it to Bridge.Dispatch;
// the loop dispatches on the concrete type.

// IRCRegistered fires once the IRC connection has completed registration
// (RPL_WELCOME). Channels are joined and auto-send commands run from here.
type IRCRegistered struct{}

// IRCMessage is a PRIVMSG to a channel.
type IRCMessage struct {
	Channel string
	Nick    string
	Text    string
}

// IRCNotice is a NOTICE. Target may be a channel or the bridge's own nick.
type IRCNotice struct {
	Target string
	Nick   string
	Text   string
}

// IRCAction is a CTCP ACTION (/me) in a channel.
type IRCAction struct {
	Channel string
	Nick    string
	Text    string
}

// IRCJoin reports a user joining a channel the bridge is in.
type IRCJoin struct {
	Channel string
	Nick    string
}

// IRCPart reports a user leaving a channel.
type IRCPart struct {
	Channel string
	Nick    string
}

// IRCQuit reports a user disconnecting from the IRC network. Channels lists
// the channels the user shared with the bridge at the time of the quit; the
// raw QUIT line does not carry it, so the IRC adapter tracks membership.
type IRCQuit struct {
	Nick     string
	Reason   string
	Channels []string
}

// IRCInvite reports an invitation for the bridge to join a channel.
type IRCInvite struct {
	Channel string
	From    string
}

// IRCError is a non-fatal error from the IRC side. Relay continues.
type IRCError struct {
	Message string
}

// IRCAbort means the IRC client loop has exited and will not reconnect.
// The bridge treats this as fatal and shuts down.
type IRCAbort struct {
	Message string
}

// SlackMessage is a message event from the Slack RTM stream. SubType
// distinguishes plain messages from me_message, file_share, bot_message
// and the various system subtypes.
type SlackMessage struct {
	ChannelID string
	UserID    string
	Username  string
	Text      string
	SubType   string
	Files     []SlackFile
}

// SlackFile is an attachment on a file_share message.
type SlackFile struct {
	Title     string
	Permalink string
}

// SlackError is a non-fatal error from the Slack side. Relay continues.
type SlackError struct {
	Message string
}

// queueTimerFired is posted into the loop by a quiet-queue timer callback.
// Gen guards against timers that fired after being superseded.
type queueTimerFired struct {
	Channel string
	Nick    string
	Gen     uint64
}
