// Copyright 2024-2026 Aiku AI

package slackfmt

// DefaultEmoji maps common Slack emoji shortcodes to their glyphs.
// Shortcodes without a mapping pass through verbatim.
var DefaultEmoji = map[string]string{
	"+1":            "👍",
	"-1":            "👎",
	"100":           "💯",
	"clap":          "👏",
	"cry":           "😢",
	"eyes":          "👀",
	"facepalm":      "🤦",
	"fire":          "🔥",
	"grin":          "😁",
	"heart":         "❤️",
	"joy":           "😂",
	"laughing":      "😆",
	"muscle":        "💪",
	"ok_hand":       "👌",
	"pray":          "🙏",
	"rocket":        "🚀",
	"shrug":         "🤷",
	"simple_smile":  "🙂",
	"smile":         "😄",
	"smiley":        "😃",
	"sob":           "😭",
	"sunglasses":    "😎",
	"tada":          "🎉",
	"thinking_face": "🤔",
	"thumbsdown":    "👎",
	"thumbsup":      "👍",
	"wave":          "👋",
	"wink":          "😉",
}
