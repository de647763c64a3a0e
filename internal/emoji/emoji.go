package emoji

import (
	"sync/atomic"

	"github.com/yildizm/nexus/internal/common"
)

// emojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":      {"❌", "[ERR]"},
	"warning":    {"⚠️", "[WRN]"},
	"success":    {"✅", "[OK]"},
	"pending":    {"⏳", "[..]"},
	"rocket":     {"🚀", "[RUN]"},
	"file":       {"📎", "[FILE]"},
	"key":        {"🔑", "[KEY]"},
	"thesis":     {"💡", "[THS]"},
	"bear":       {"🐻", "[BEAR]"},
	"founder":    {"🧠", "[FDR]"},
	"market":     {"🌊", "[MKT]"},
	"financials": {"📊", "[FIN]"},
	"simulation": {"🎲", "[SIM]"},
	"tornado":    {"🌪️", "[RSK]"},
	"question":   {"❓", "[?]"},
	"confidence": {"🎯", "[CI]"},
	"help":       {"❔", "[HLP]"},
	"door":       {"🚪", "[EXIT]"},

	// agents
	"agent_alpha": {"🛰️", "[A]"},
	"agent_beta":  {"🧬", "[B]"},
	"agent_gamma": {"🎲", "[G]"},
	"agent_delta": {"📜", "[D]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// ForStatus returns the marker of a feed line
func ForStatus(status common.Status) string {
	switch status {
	case common.StatusComplete:
		return GetEmoji("success")
	case common.StatusError:
		return GetEmoji("error")
	default:
		return GetEmoji("pending")
	}
}

// ForAgent returns the marker of an agent
func ForAgent(agent common.Agent) string {
	switch agent {
	case common.AgentAlpha:
		return GetEmoji("agent_alpha")
	case common.AgentBeta:
		return GetEmoji("agent_beta")
	case common.AgentGamma:
		return GetEmoji("agent_gamma")
	case common.AgentDelta:
		return GetEmoji("agent_delta")
	default:
		return GetEmoji("unknown")
	}
}
