// Copyright 2024-2026 Aiku AI

package bridge

import (
	"bytes"
	_ "embed"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// ConfigurationError reports an invalid or incomplete configuration. It is
// raised synchronously during construction, before any network connection
// is attempted, and the process must not start.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Duration decodes either a YAML duration string ("30s", "2m") or a bare
// integer, which is taken as milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var ms int64
	if err := node.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return &ConfigurationError{Reason: "invalid duration " + s}
	}
	*d = Duration(v)
	return nil
}

// IRCOptions tunes the IRC client connection.
type IRCOptions struct {
	Port         int    `yaml:"port"`
	UseTLS       bool   `yaml:"use_tls"`
	Password     string `yaml:"password"`
	SASLLogin    string `yaml:"sasl_login"`
	SASLPassword string `yaml:"sasl_password"`
	Debug        bool   `yaml:"debug"`
}

// StatusNotices selects which IRC membership events are announced in Slack.
type StatusNotices struct {
	Join  bool `yaml:"join"`
	Leave bool `yaml:"leave"`
}

// MuteUsers lists blocked authors per network.
type MuteUsers struct {
	IRC   []string `yaml:"irc"`
	Slack []string `yaml:"slack"`
}

// AvatarOff disables avatar URLs on relayed Slack messages when set as
// avatar_url.
const AvatarOff = "off"

// Config is the bridge configuration, loaded from YAML.
type Config struct {
	Server   string `yaml:"server"`
	Nickname string `yaml:"nickname"`
	Token    string `yaml:"token"`

	// ChannelMapping maps a Slack channel name to an IRC channel. The IRC
	// value may carry a join key after a space: "#private secretkey".
	ChannelMapping map[string]string `yaml:"channel_mapping"`

	IRCOptions        IRCOptions    `yaml:"irc_options"`
	IRCStatusNotices  StatusNotices `yaml:"irc_status_notices"`
	CommandCharacters []string      `yaml:"command_characters"`
	MuteUsers         MuteUsers     `yaml:"mute_users"`
	MuteWords         []string      `yaml:"mute_words"`

	// QueueFor is the quiet-period window applied to a user's messages
	// after that user joins an IRC channel.
	QueueFor Duration `yaml:"queue_for"`

	// AvatarURL is a $username-templated icon URL for relayed Slack
	// messages. Empty selects the default; AvatarOff disables avatars.
	AvatarURL string `yaml:"avatar_url"`

	// SlackUsernameFormat and IRCUsernameFormat are $username-templated
	// display forms: the former is the username relayed messages are
	// posted under in Slack, the latter the prefix prepended to messages
	// relayed into IRC.
	SlackUsernameFormat string `yaml:"slack_username_format"`
	IRCUsernameFormat   string `yaml:"irc_username_format"`

	// AutoSendCommands are raw IRC command lines, as argument lists, sent
	// once after registration. Example: [["PRIVMSG", "NickServ", "IDENTIFY hunter2"]].
	AutoSendCommands [][]string `yaml:"auto_send_commands"`
}

const (
	defaultQueueFor            = Duration(30 * time.Second)
	defaultAvatarURL           = "https://robohash.org/$username.png?size=48"
	defaultSlackUsernameFormat = "$username"
	defaultIRCUsernameFormat   = "<$username> "
	defaultIRCPort             = 6667
	defaultIRCTLSPort          = 6697
)

// LoadConfig reads, decodes, validates and defaults a YAML config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(raw)
}

// ParseConfig decodes a YAML config document. Unknown keys are rejected.
func ParseConfig(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks the required fields. The channel mapping itself is
// validated in depth by NewChannelMap.
func (c *Config) Validate() error {
	switch {
	case c.Server == "":
		return &ConfigurationError{Reason: "server is required"}
	case c.Nickname == "":
		return &ConfigurationError{Reason: "nickname is required"}
	case c.Token == "":
		return &ConfigurationError{Reason: "token is required"}
	case len(c.ChannelMapping) == 0:
		return &ConfigurationError{Reason: "channel_mapping must not be empty"}
	}
	for _, cmd := range c.AutoSendCommands {
		if len(cmd) == 0 {
			return &ConfigurationError{Reason: "auto_send_commands entries must not be empty"}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.QueueFor <= 0 {
		c.QueueFor = defaultQueueFor
	}
	if c.AvatarURL == "" {
		c.AvatarURL = defaultAvatarURL
	}
	if c.SlackUsernameFormat == "" {
		c.SlackUsernameFormat = defaultSlackUsernameFormat
	}
	if c.IRCUsernameFormat == "" {
		c.IRCUsernameFormat = defaultIRCUsernameFormat
	}
	if c.IRCOptions.Port == 0 {
		if c.IRCOptions.UseTLS {
			c.IRCOptions.Port = defaultIRCTLSPort
		} else {
			c.IRCOptions.Port = defaultIRCPort
		}
	}
}

// FormatSlackUsername renders the Slack-side display name for an IRC nick.
func (c *Config) FormatSlackUsername(nick string) string {
	return strings.ReplaceAll(c.SlackUsernameFormat, "$username", nick)
}

// FormatIRCPrefix renders the IRC-side prefix for a Slack author.
func (c *Config) FormatIRCPrefix(username string) string {
	return strings.ReplaceAll(c.IRCUsernameFormat, "$username", username)
}

// AvatarFor renders the icon URL for an IRC nick, or "" when disabled.
func (c *Config) AvatarFor(nick string) string {
	if c.AvatarURL == AvatarOff {
		return ""
	}
	return strings.ReplaceAll(c.AvatarURL, "$username", nick)
}

// IsCommand reports whether text starts with a configured command prefix.
func (c *Config) IsCommand(text string) bool {
	for _, prefix := range c.CommandCharacters {
		if prefix != "" && strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}
