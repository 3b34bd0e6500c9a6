package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/badge"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/domain/project"
	"github.com/rpggio/streamos/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type dayClock struct{ day calendar.Day }

func (c *dayClock) Today() calendar.Day { return c.day }

func newTestApp(t *testing.T, clock calendar.Clock) (*App, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, Config{Clock: clock}), db
}

func TestBoot_FirstRunSeedsDefaults(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()

	report, err := a.Boot(ctx)
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultStats("2024-05-10"), report.Stats)
	require.Equal(t, item.Lists, report.Reset)

	again, err := a.Boot(ctx)
	require.NoError(t, err)
	require.Empty(t, again.Reset)
	require.Equal(t, 1, again.Stats.Streak)
}

func TestBoot_NextDayResetsListsAndKeepsXP(t *testing.T) {
	clock := &dayClock{day: "2024-05-10"}
	a, _ := newTestApp(t, clock)
	ctx := context.Background()

	_, err := a.Boot(ctx)
	require.NoError(t, err)
	_, err = a.Items.Toggle(ctx, item.ListTasks, "t1")
	require.NoError(t, err)

	clock.day = "2024-05-11"
	report, err := a.Boot(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.Stats.Streak)
	require.Equal(t, item.XPTask, report.Stats.CurrentXP)
	require.Contains(t, report.Reset, item.ListTasks)

	tasks, err := a.Items.List(ctx, item.ListTasks)
	require.NoError(t, err)
	for _, task := range tasks {
		require.False(t, task.Completed)
	}

	clock.day = "2024-05-14"
	report, err = a.Boot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Stats.Streak)
}

func TestToggleRoundTrip(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	_, err := a.Boot(ctx)
	require.NoError(t, err)

	before, err := a.Stats(ctx)
	require.NoError(t, err)

	_, err = a.Items.Toggle(ctx, item.ListAgenda, item.KindCreative)
	require.NoError(t, err)
	_, err = a.Items.Toggle(ctx, item.ListAgenda, item.KindCreative)
	require.NoError(t, err)

	after, err := a.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, before.Stats, after.Stats)
}

func TestToggleAcrossLevelNeverDelevels(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	_, err := a.Boot(ctx)
	require.NoError(t, err)

	_, err = a.ApplyXP(ctx, 490, "test")
	require.NoError(t, err)

	out, err := a.Items.Toggle(ctx, item.ListTasks, "t1")
	require.NoError(t, err)
	require.True(t, out.XP.LeveledUp)
	require.Equal(t, 2, out.XP.Stats.Level)
	require.Equal(t, 5, out.XP.Stats.CurrentXP)

	out, err = a.Items.Toggle(ctx, item.ListTasks, "t1")
	require.NoError(t, err)
	require.Equal(t, 2, out.XP.Stats.Level)
	require.Equal(t, 0, out.XP.Stats.CurrentXP)
	require.Equal(t, 750, out.XP.Stats.NextLevelXP)
}

func TestDeleteCompletedRevokesOnce(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	_, err := a.Boot(ctx)
	require.NoError(t, err)

	_, err = a.ApplyXP(ctx, 100, "test")
	require.NoError(t, err)
	_, err = a.Items.Toggle(ctx, item.ListTasks, "t2")
	require.NoError(t, err)

	_, err = a.Items.Delete(ctx, item.ListTasks, "t2")
	require.NoError(t, err)
	_, err = a.Items.Delete(ctx, item.ListTasks, "t2")
	require.ErrorIs(t, err, item.ErrItemNotFound)

	view, err := a.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 100, view.Stats.CurrentXP)
}

func TestStudioDeleteRevokesEarned(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	_, err := a.Boot(ctx)
	require.NoError(t, err)

	created, err := a.Projects.Create(ctx, project.CreateRequest{Title: "Clutch moment"})
	require.NoError(t, err)
	for range 3 {
		_, err = a.Projects.Advance(ctx, created.Project.ID)
		require.NoError(t, err)
	}

	view, err := a.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 80, view.Stats.CurrentXP)

	out, err := a.Projects.Delete(ctx, created.Project.ID)
	require.NoError(t, err)
	require.Equal(t, -80, out.XP.Delta)
	require.Equal(t, 0, out.XP.Stats.CurrentXP)
}

func TestApplyXP_EvaluatesBadges(t *testing.T) {
	a, db := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	_, err := a.Boot(ctx)
	require.NoError(t, err)

	// 500 + 750 + 1125 + 1687 reaches level 5
	view, err := a.ApplyXP(ctx, 4062, "test")
	require.NoError(t, err)
	require.Equal(t, 5, view.Stats.Level)
	require.Contains(t, unlockedIDs(view.Badges), "level5")
	require.Contains(t, unlockedIDs(a.Badges.Latest()), "level5")

	raw, err := sqlite.NewDocumentStore(db).Get(ctx, sqlite.KeyBadges)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"level5"`)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	_, err := src.Boot(ctx)
	require.NoError(t, err)
	_, err = src.ApplyXP(ctx, 120, "test")
	require.NoError(t, err)
	_, err = src.Projects.Create(ctx, project.CreateRequest{Title: "Montage", Platform: project.PlatformYouTube})
	require.NoError(t, err)

	snapshot, err := src.Export(ctx)
	require.NoError(t, err)

	dst, _ := newTestApp(t, calendar.Fixed("2024-05-11"))
	_, err = dst.Import(ctx, snapshot)
	require.NoError(t, err)

	view, err := dst.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 130, view.Stats.CurrentXP)
	require.Equal(t, 2, view.Stats.Streak)

	projects, err := dst.Projects.List(ctx, project.ListOptions{})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Montage", projects[0].Title)
}

func TestImportRejectsForeignKeys(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()

	_, err := a.Import(ctx, map[string]json.RawMessage{"other_app": json.RawMessage(`{}`)})
	require.ErrorIs(t, err, ErrInvalidBackup)

	report, err := a.Boot(ctx)
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultStats("2024-05-10"), report.Stats)
}

func TestResetXPKeepsLists(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	_, err := a.Boot(ctx)
	require.NoError(t, err)
	_, err = a.Items.Create(ctx, item.CreateRequest{List: item.ListTasks, Draft: item.Draft{Title: "Edit VOD"}})
	require.NoError(t, err)
	_, err = a.ApplyXP(ctx, 300, "test")
	require.NoError(t, err)

	view, err := a.ResetXP(ctx)
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultStats("2024-05-10"), view.Stats)

	tasks, err := a.Items.List(ctx, item.ListTasks)
	require.NoError(t, err)
	require.Len(t, tasks, 6)
}

func TestFactoryReset(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	_, err := a.Boot(ctx)
	require.NoError(t, err)
	_, err = a.Projects.Create(ctx, project.CreateRequest{Title: "Clip"})
	require.NoError(t, err)
	_, err = a.SetLanguage(ctx, "en")
	require.NoError(t, err)

	report, err := a.FactoryReset(ctx)
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultStats("2024-05-10"), report.Stats)

	projects, err := a.Projects.List(ctx, project.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, projects)

	lang, err := a.Language(ctx)
	require.NoError(t, err)
	require.Equal(t, chat.LanguageSpanish, lang)
}

func TestLanguage(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()

	lang, err := a.Language(ctx)
	require.NoError(t, err)
	require.Equal(t, chat.LanguageSpanish, lang)

	_, err = a.SetLanguage(ctx, "en")
	require.NoError(t, err)
	lang, err = a.Language(ctx)
	require.NoError(t, err)
	require.Equal(t, chat.LanguageEnglish, lang)

	_, err = a.SetLanguage(ctx, "fr")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func unlockedIDs(badges []badge.Badge) []string {
	var ids []string
	for _, b := range badge.Unlocked(badges) {
		ids = append(ids, b.ID)
	}
	return ids
}

type scriptedModel struct{ reply string }

func (m scriptedModel) Generate(context.Context, string, []chat.Message, string) (string, error) {
	return m.reply, nil
}

func TestCoachCommandsMutateState(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	model := scriptedModel{reply: "Nice work!\n```json\n" +
		`{"commands":[{"type":"grant_xp","amount":50},{"type":"complete_task","query":"water"}]}` +
		"\n```"}
	a := New(db, Config{Clock: calendar.Fixed("2024-05-10"), Model: model})
	ctx := context.Background()
	_, err = a.Boot(ctx)
	require.NoError(t, err)

	reply, err := a.Coach.Send(ctx, assistant.SendRequest{Message: "I drank water and streamed"})
	require.NoError(t, err)
	require.NotNil(t, reply.Commands)
	require.Equal(t, 2, reply.Commands.Applied)

	view, err := a.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 50+item.XPTask, view.Stats.CurrentXP)

	applied := activity.TypeCommandApplied
	entries, err := a.Activity.GetRecentActivity(ctx, activity.ListActivityOptions{ActivityType: &applied})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestEnsureDay_OnlyRunsOnNewDay(t *testing.T) {
	clock := &dayClock{day: "2024-05-10"}
	a, _ := newTestApp(t, clock)
	ctx := context.Background()

	_, err := a.Boot(ctx)
	require.NoError(t, err)
	_, err = a.Items.Toggle(ctx, item.ListChecklist, "mic")
	require.NoError(t, err)

	report, err := a.EnsureDay(ctx)
	require.NoError(t, err)
	require.Nil(t, report)

	clock.day = "2024-05-11"
	report, err = a.EnsureDay(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Equal(t, 2, report.Stats.Streak)
	require.Contains(t, report.Reset, item.ListChecklist)

	report, err = a.EnsureDay(ctx)
	require.NoError(t, err)
	require.Nil(t, report)
}

func TestGenerateScript(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := New(db, Config{Clock: calendar.Fixed("2024-05-10"), Model: scriptedModel{reply: "HOOK: one hp left..."}})
	ctx := context.Background()
	out, err := a.Projects.Create(ctx, project.CreateRequest{Title: "Clutch", Platform: project.PlatformTikTok})
	require.NoError(t, err)
	id := out.Project.ID

	_, err = a.GenerateScript(ctx, id, "")
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = a.Projects.Update(ctx, project.UpdateRequest{ID: id, Script: &project.Script{Vibe: "Epic", Context: "1v4 last round", Goal: "Viral"}})
	require.NoError(t, err)

	view, err := a.GenerateScript(ctx, id, "")
	require.NoError(t, err)
	require.False(t, view.Failed)
	require.Equal(t, "HOOK: one hp left...", view.Project.Script.GeneratedContent)

	stored, err := a.Projects.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, &project.Script{Vibe: "Epic", Context: "1v4 last round", Goal: "Viral", GeneratedContent: "HOOK: one hp left..."}, stored.Script)

	stats, err := a.Ledger.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, project.XPCreate, stats.CurrentXP)
}

func TestGenerateScriptFailureKeepsProject(t *testing.T) {
	a, _ := newTestApp(t, calendar.Fixed("2024-05-10"))
	ctx := context.Background()
	out, err := a.Projects.Create(ctx, project.CreateRequest{Title: "Clutch"})
	require.NoError(t, err)
	id := out.Project.ID
	_, err = a.Projects.Update(ctx, project.UpdateRequest{ID: id, Script: &project.Script{Context: "1v4 last round", GeneratedContent: "old draft"}})
	require.NoError(t, err)

	view, err := a.GenerateScript(ctx, id, "")
	require.NoError(t, err)
	require.True(t, view.Failed)
	require.Equal(t, "Fallo Crítico: No se puede conectar a la Red Neuronal (Error de API).", view.Text)

	stored, err := a.Projects.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "old draft", stored.Script.GeneratedContent)

	_, err = a.GenerateScript(ctx, "missing", chat.LanguageEnglish)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}
