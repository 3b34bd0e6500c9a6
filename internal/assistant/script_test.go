package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/project"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func briefedProject() *project.Project {
	return &project.Project{
		ID:       "p1",
		Title:    "Clutch 1v4",
		Category: "Valorant",
		Platform: project.PlatformTikTok,
		Status:   project.StatusIdea,
		Script:   &project.Script{Vibe: "Epic", Context: "Last round, one hp, four enemies", Goal: "Go viral"},
	}
}

func TestCoach_DraftScript(t *testing.T) {
	model := &mockModel{}
	model.On("Generate", mock.Anything, mock.MatchedBy(func(system string) bool {
		return containsAll(system, "scriptwriter", "IN SPANISH")
	}), []chat.Message(nil), mock.MatchedBy(func(prompt string) bool {
		return containsAll(prompt, "Clutch 1v4", "tiktok", "Vibe: Epic", "Goal: Go viral", "four enemies")
	})).Return("  GANCHO: un hp...\n", nil)
	coach := NewCoach(newMemChat(), fixedStats{stats}, &mockCommands{}, model, Options{}, nil)

	draft, err := coach.DraftScript(context.Background(), briefedProject(), chat.LanguageSpanish)
	require.NoError(t, err)
	require.False(t, draft.Failed)
	require.Equal(t, "GANCHO: un hp...", draft.Text)
	model.AssertExpectations(t)
}

func TestCoach_DraftScriptNeedsContext(t *testing.T) {
	model := &mockModel{}
	coach := NewCoach(newMemChat(), fixedStats{stats}, &mockCommands{}, model, Options{}, nil)

	proj := briefedProject()
	proj.Script.Context = "  "
	_, err := coach.DraftScript(context.Background(), proj, chat.LanguageEnglish)
	require.ErrorIs(t, err, project.ErrInvalidInput)

	proj.Script = nil
	_, err = coach.DraftScript(context.Background(), proj, chat.LanguageEnglish)
	require.ErrorIs(t, err, project.ErrInvalidInput)
	model.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCoach_DraftScriptFailureIsLocalized(t *testing.T) {
	model := &mockModel{}
	model.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("503")).Once()
	model.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(" ", nil).Once()
	coach := NewCoach(newMemChat(), fixedStats{stats}, &mockCommands{}, model, Options{}, nil)
	ctx := context.Background()

	draft, err := coach.DraftScript(ctx, briefedProject(), chat.LanguageEnglish)
	require.NoError(t, err)
	require.True(t, draft.Failed)
	require.Equal(t, localized[chat.LanguageEnglish].failure, draft.Text)

	draft, err = coach.DraftScript(ctx, briefedProject(), chat.LanguageSpanish)
	require.NoError(t, err)
	require.True(t, draft.Failed)
	require.Equal(t, localized[chat.LanguageSpanish].noResponse, draft.Text)
}

func TestCoach_DraftScriptSharesRateLimit(t *testing.T) {
	model := &mockModel{}
	model.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("ok", nil).Once()
	coach := NewCoach(newMemChat(), fixedStats{stats}, &mockCommands{}, model, Options{Interval: time.Hour}, nil)

	reply, err := coach.Send(context.Background(), SendRequest{Message: "one"})
	require.NoError(t, err)
	require.False(t, reply.Failed)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	draft, err := coach.DraftScript(ctx, briefedProject(), chat.LanguageEnglish)
	require.NoError(t, err)
	require.True(t, draft.Failed)
	model.AssertNumberOfCalls(t, "Generate", 1)
}
