package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/project"
)

const scriptInstruction = `You are a scriptwriter for short stream clips and videos.
Write a script the creator can read while recording: a hook for the first three seconds,
the beats of the clip, and a call to action that serves the stated goal.
Keep it tight enough for the platform. Reply with the script only, no JSON.`

// ScriptDraft is the model's answer to a script request. Failed drafts carry
// the localized failure message instead of a script.
type ScriptDraft struct {
	Text   string `json:"text"`
	Failed bool   `json:"failed,omitempty"`
}

// DraftScript asks the model for a script built from the project's brief.
// It never touches state; the caller decides whether to keep the draft.
func (c *Coach) DraftScript(ctx context.Context, proj *project.Project, lang chat.Language) (*ScriptDraft, error) {
	if proj.Script == nil || strings.TrimSpace(proj.Script.Context) == "" {
		return nil, fmt.Errorf("%w: describe the clip in the script context first", project.ErrInvalidInput)
	}
	msgs := messagesFor(lang)

	text, err := c.generate(ctx, scriptSystem(lang), nil, scriptPrompt(proj))
	if err != nil {
		c.logger.Error("script request failed", "project_id", proj.ID, "error", err)
		return &ScriptDraft{Text: msgs.failure, Failed: true}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &ScriptDraft{Text: msgs.noResponse, Failed: true}, nil
	}
	return &ScriptDraft{Text: text}, nil
}

func scriptSystem(lang chat.Language) string {
	if chat.ParseLanguage(string(lang)) == chat.LanguageSpanish {
		return scriptInstruction + "\n\nIMPORTANT: WRITE THE SCRIPT IN SPANISH."
	}
	return scriptInstruction + "\n\nIMPORTANT: WRITE THE SCRIPT IN ENGLISH."
}

func scriptPrompt(proj *project.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", proj.Title)
	fmt.Fprintf(&b, "Platform: %s\n", proj.Platform)
	fmt.Fprintf(&b, "Category: %s\n", proj.Category)
	if proj.Script.Vibe != "" {
		fmt.Fprintf(&b, "Vibe: %s\n", proj.Script.Vibe)
	}
	if proj.Script.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", proj.Script.Goal)
	}
	fmt.Fprintf(&b, "What happens: %s\n", proj.Script.Context)
	return b.String()
}
