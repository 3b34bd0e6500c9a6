package app

import (
	"context"

	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/project"
)

// ScriptView is a project after a script request. A failed request leaves
// the project as it was and carries the localized failure text.
type ScriptView struct {
	Project *project.Project `json:"project"`
	Text    string           `json:"text"`
	Failed  bool             `json:"failed,omitempty"`
}

// GenerateScript drafts a script from the project's brief and stores it as
// the project's generated content. An empty lang uses the stored UI language.
// The model call holds no lock.
func (a *App) GenerateScript(ctx context.Context, id string, lang chat.Language) (*ScriptView, error) {
	proj, err := a.Projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		if lang, err = a.Language(ctx); err != nil {
			return nil, err
		}
	}

	draft, err := a.Coach.DraftScript(ctx, proj, lang)
	if err != nil {
		return nil, err
	}
	if draft.Failed {
		return &ScriptView{Project: proj, Text: draft.Text, Failed: true}, nil
	}

	proj, err = a.Projects.SetGeneratedContent(ctx, id, draft.Text)
	if err != nil {
		return nil, err
	}
	return &ScriptView{Project: proj, Text: draft.Text}, nil
}
