package assistant

import (
	"fmt"
	"strings"

	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/ledger"
)

const baseInstruction = `You are StreamOS, a productivity coach for someone who works a day job and streams at night.
Be concise and motivational. Favor small, low-energy actions on weekdays.
When the user asks you to change their schedule or tasks, reply with only a JSON object of the form
{"commands":[...]} using these command types:
  {"type":"grant_xp","amount":<int>,"reason":"..."}
  {"type":"replace_agenda","items":[{"title":"...","type":"work|creative|transit|base|learning|sleep","startTime":"HH:MM","endTime":"HH:MM"}]}
  {"type":"replace_tasks","items":[{"title":"...","category":"home|health|admin"}]}
  {"type":"add_task","title":"...","xp":<int>,"category":"home|health|admin"}
  {"type":"complete_task","query":"<part of the task title>"}
Otherwise reply in plain text.`

type messages struct {
	noResponse string
	failure    string
}

var localized = map[chat.Language]messages{
	chat.LanguageEnglish: {
		noResponse: "System Offline. No response received.",
		failure:    "Critical Failure: Unable to connect to Neural Network (API Error).",
	},
	chat.LanguageSpanish: {
		noResponse: "Sistema Offline. Sin respuesta.",
		failure:    "Fallo Crítico: No se puede conectar a la Red Neuronal (Error de API).",
	},
}

func messagesFor(lang chat.Language) messages {
	return localized[chat.ParseLanguage(string(lang))]
}

// SystemInstruction builds the instruction sent with every turn.
func SystemInstruction(stats *ledger.Stats, lang chat.Language) string {
	var b strings.Builder
	b.WriteString(baseInstruction)
	b.WriteString("\n\n")
	if chat.ParseLanguage(string(lang)) == chat.LanguageSpanish {
		b.WriteString("IMPORTANT: RESPOND ONLY IN SPANISH.")
	} else {
		b.WriteString("IMPORTANT: RESPOND ONLY IN ENGLISH.")
	}
	if stats != nil {
		fmt.Fprintf(&b, "\nCURRENT USER STATS: Level %d, XP %d/%d, Streak %d days. Use this data to motivate them.",
			stats.Level, stats.CurrentXP, stats.NextLevelXP, stats.Streak)
	}
	return b.String()
}
