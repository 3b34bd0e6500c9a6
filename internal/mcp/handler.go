package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/project"
)

// dashboardSource tags ledger and command activity caused over /rpc.
const dashboardSource = "dashboard"

// Handler implements the dashboard JSON-RPC methods.
type Handler struct {
	svc Services
}

// NewHandler creates a new Handler.
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// Handle dispatches one JSON-RPC method.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	if _, err := h.svc.Progress.EnsureDay(ctx); err != nil {
		return nil, mapError(err)
	}

	switch method {
	case "stats.get":
		return wrap(h.svc.Progress.Stats(ctx))
	case "xp.apply":
		var req ApplyXPParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		source := req.Source
		if source == "" {
			source = dashboardSource
		}
		return wrap(h.svc.Progress.ApplyXP(ctx, req.Delta, source))

	case "items.list":
		var req ListItemsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		list, err := item.ParseList(req.List)
		if err != nil {
			return nil, mapError(err)
		}
		items, err := h.svc.Items.List(ctx, list)
		if err != nil {
			return nil, mapError(err)
		}
		return ListItemsResponse{List: list, Items: items}, nil
	case "items.create":
		var req CreateItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Items.Create(ctx, item.CreateRequest{List: item.List(req.List), Draft: req.Item}))
	case "items.toggle":
		var req ItemRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Items.Toggle(ctx, item.List(req.List), req.ID))
	case "items.focus_complete":
		var req FocusCompleteParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Items.CompleteFocus(ctx, req.ID))
	case "items.complete":
		var req ItemRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Items.Complete(ctx, item.List(req.List), req.ID))
	case "items.delete":
		var req ItemRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Items.Delete(ctx, item.List(req.List), req.ID))
	case "items.move":
		var req MoveItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		items, err := h.svc.Items.Move(ctx, item.List(req.List), req.ID, req.Direction)
		if err != nil {
			return nil, mapError(err)
		}
		return ListItemsResponse{List: item.List(req.List), Items: items}, nil
	case "items.replace":
		var req ReplaceItemsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Items.Replace(ctx, item.List(req.List), req.Items))

	case "projects.create":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Create(ctx, project.CreateRequest{
			Title:    req.Title,
			Category: req.Category,
			Platform: req.Platform,
		}))
	case "projects.get":
		var req ProjectRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Get(ctx, req.ID))
	case "projects.list":
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projects, err := h.svc.Projects.List(ctx, project.ListOptions{Status: req.Status, Limit: req.Limit, Offset: req.Offset})
		if err != nil {
			return nil, mapError(err)
		}
		if projects == nil {
			projects = []project.Project{}
		}
		return projects, nil
	case "projects.update":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Update(ctx, project.UpdateRequest{
			ID:       req.ID,
			Title:    req.Title,
			Category: req.Category,
			Platform: req.Platform,
			Script:   req.Script,
		}))
	case "projects.generate_script":
		var req GenerateScriptParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var lang chat.Language
		if req.Language != "" {
			lang = chat.ParseLanguage(req.Language)
		}
		return wrap(h.svc.Scripts.GenerateScript(ctx, req.ID, lang))
	case "projects.advance":
		var req ProjectRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Advance(ctx, req.ID))
	case "projects.move_back":
		var req ProjectRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.MoveBack(ctx, req.ID))
	case "projects.delete":
		var req ProjectRefParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Delete(ctx, req.ID))

	case "activity.list":
		var req ListActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.svc.Activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			ActivityType: req.Type,
			Source:       req.Source,
			Limit:        req.Limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		if entries == nil {
			entries = []activity.ActivityEntry{}
		}
		return entries, nil

	case "coach.send":
		var req CoachSendParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		// An existing session keeps its language unless one is given.
		var lang chat.Language
		switch {
		case req.Language != "":
			lang = chat.ParseLanguage(req.Language)
		case req.SessionID == "":
			stored, err := h.svc.Progress.Language(ctx)
			if err != nil {
				return nil, mapError(err)
			}
			lang = stored
		}
		return wrap(h.svc.Coach.Send(ctx, assistant.SendRequest{
			SessionID: req.SessionID,
			Message:   req.Message,
			Language:  lang,
		}))
	case "chat.sessions":
		var req ListChatSessionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sessions, err := h.svc.Chat.List(ctx, req.Status)
		if err != nil {
			return nil, mapError(err)
		}
		if sessions == nil {
			sessions = []chat.Session{}
		}
		return sessions, nil
	case "chat.history":
		var req ChatHistoryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		msgs, err := h.svc.Chat.History(ctx, req.SessionID, req.Limit)
		if err != nil {
			return nil, mapError(err)
		}
		if msgs == nil {
			msgs = []chat.Message{}
		}
		return msgs, nil
	case "chat.close":
		var req ChatSessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Chat.Close(ctx, req.SessionID))
	case "commands.apply":
		var req ApplyCommandsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Commands.ApplyRaw(ctx, req.Payload, dashboardSource))

	case "backup.export":
		snapshot, err := h.svc.Progress.Export(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return snapshot, nil
	case "backup.import":
		var req ImportParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		n, err := h.svc.Progress.Import(ctx, req.Snapshot)
		if err != nil {
			return nil, mapError(err)
		}
		return ImportResponse{Restored: n}, nil
	case "reset.xp":
		return wrap(h.svc.Progress.ResetXP(ctx))
	case "reset.factory":
		return wrap(h.svc.Progress.FactoryReset(ctx))

	case "settings.language.get":
		lang, err := h.svc.Progress.Language(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return LanguageResponse{Language: lang}, nil
	case "settings.language.set":
		var req LanguageParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		lang, err := h.svc.Progress.SetLanguage(ctx, req.Language)
		if err != nil {
			return nil, mapError(err)
		}
		return LanguageResponse{Language: lang}, nil
	default:
		return nil, &APIError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", method)}
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return invalidParams(err)
	}
	return nil
}

// wrap adapts a service call returning a pointer result.
func wrap[T any](v *T, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}
