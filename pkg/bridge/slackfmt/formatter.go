// Copyright 2024-2026 Aiku AI

// Package slackfmt converts Slack message markup into plain text suitable
// for IRC, and highlights channel members in text headed the other way.
package slackfmt

import (
	"regexp"
	"strings"
)

// Directory resolves Slack channel and user IDs to display names. The
// bridge's Slack client implements it; tests inject a fake.
type Directory interface {
	ChannelName(id string) (string, bool)
	UserName(id string) (string, bool)
}

// Formatter renders Slack markup as display text. The zero value with a
// Directory is usable; Emoji defaults to DefaultEmoji when nil.
type Formatter struct {
	Directory Directory
	Emoji     map[string]string
}

var (
	newlineRe   = regexp.MustCompile(`\r\n|\r|\n`)
	broadcastRe = regexp.MustCompile(`<!(channel|group|everyone|here)(?:\|([^>]*))?>`)
	channelRe   = regexp.MustCompile(`<#([A-Z0-9]+)(?:\|([^>]*))?>`)
	userRe      = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|([^>]*))?>`)
	bareLinkRe  = regexp.MustCompile(`<(https?://[^>|]+)>`)
	commandRe   = regexp.MustCompile(`<!(\w+)(?:\|([^>]*))?>`)
	emojiRe     = regexp.MustCompile(`:([a-z0-9_+-]+):`)
	labelLinkRe = regexp.MustCompile(`<[^<>|]+\|([^<>]*)>`)
)

// Render applies the transformation pipeline. The stage order matters:
// later stages consume the output of earlier ones, and entity decoding runs
// last so that literal angle brackets produced by the command stage are not
// mistaken for markup. Render is idempotent on text containing no
// recognized tokens.
func (f *Formatter) Render(text string) string {
	// 1. All line-break variants become a single space.
	text = newlineRe.ReplaceAllString(text, " ")

	// 2. Broadcast tokens: <!channel>, <!here|@here>, ...
	text = broadcastRe.ReplaceAllStringFunc(text, func(match string) string {
		m := broadcastRe.FindStringSubmatch(match)
		if m[2] != "" {
			return m[2]
		}
		return "@" + m[1]
	})

	// 3. Channel references: <#C123|label> or <#C123>.
	text = channelRe.ReplaceAllStringFunc(text, func(match string) string {
		m := channelRe.FindStringSubmatch(match)
		if m[2] != "" {
			return "#" + m[2]
		}
		if f.Directory != nil {
			if name, ok := f.Directory.ChannelName(m[1]); ok {
				return "#" + name
			}
		}
		return "#" + m[1]
	})

	// 4. User references: <@U123|label> or <@U123>.
	text = userRe.ReplaceAllStringFunc(text, func(match string) string {
		m := userRe.FindStringSubmatch(match)
		if m[2] != "" {
			return "@" + m[2]
		}
		if f.Directory != nil {
			if name, ok := f.Directory.UserName(m[1]); ok {
				return "@" + name
			}
		}
		return "@" + m[1]
	})

	// 5. Unlabeled links keep just the URL.
	text = bareLinkRe.ReplaceAllString(text, "$1")

	// 6. Special commands: <!cmd|label> -> <label>, <!cmd> -> <cmd>.
	text = commandRe.ReplaceAllStringFunc(text, func(match string) string {
		m := commandRe.FindStringSubmatch(match)
		if m[2] != "" {
			return "<" + m[2] + ">"
		}
		return "<" + m[1] + ">"
	})

	// 7. Emoji shortcodes with a known mapping; unknown ones stay verbatim.
	emoji := f.Emoji
	if emoji == nil {
		emoji = DefaultEmoji
	}
	text = emojiRe.ReplaceAllStringFunc(text, func(match string) string {
		m := emojiRe.FindStringSubmatch(match)
		if glyph, ok := emoji[m[1]]; ok {
			return glyph
		}
		return match
	})

	// 8. Remaining labeled links collapse to their label.
	text = labelLinkRe.ReplaceAllString(text, "$1")

	// 9. HTML entities last.
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")

	return text
}

// Highlight rewrites any word-boundary occurrence of a member name to
// @name, so relayed IRC text triggers Slack mention notifications. Matching
// is case-insensitive; the replacement uses the member's canonical name.
// Names already preceded by @ are left alone.
func Highlight(text string, members []string) string {
	for _, name := range members {
		if name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)(^|[^@\w])` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		text = re.ReplaceAllString(text, "$1@"+name)
	}
	return text
}
