package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/streamos/internal/app"
	"github.com/rpggio/streamos/internal/command"
	"github.com/rpggio/streamos/internal/domain/item"
)

// toolSource tags activity caused by tool calls.
const toolSource = "mcp"

type GetStatsInput struct{}

type ListItemsInput struct {
	List string `json:"list" jsonschema:"agenda, tasks or checklist"`
}

type ListItemsOutput struct {
	List  item.List   `json:"list"`
	Items []item.Item `json:"items"`
}

type GrantXPInput struct {
	Amount int    `json:"amount" jsonschema:"XP to grant; negative revokes"`
	Reason string `json:"reason,omitempty" jsonschema:"short reason shown in the activity log"`
}

type ReplaceAgendaInput struct {
	Items []item.Draft `json:"items" jsonschema:"the new schedule blocks in order"`
}

type ReplaceTasksInput struct {
	Items []item.Draft `json:"items" jsonschema:"the new daily tasks in order"`
}

type AddTaskInput struct {
	Title    string `json:"title" jsonschema:"task title"`
	XP       *int   `json:"xp,omitempty" jsonschema:"reward, defaults to 15"`
	Category string `json:"category,omitempty" jsonschema:"home, health or admin"`
}

type CompleteTaskInput struct {
	Query string `json:"query" jsonschema:"words from the task title; the closest open task is completed"`
}

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Get level, XP, streak and badges",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ GetStatsInput) (*sdkmcp.CallToolResult, app.StatsView, error) {
		view, err := svc.Progress.Stats(ctx)
		if err != nil {
			return nil, app.StatsView{}, mapError(err)
		}
		return nil, *view, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_items",
		Description: "List today's agenda, tasks or stream checklist",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListItemsInput) (*sdkmcp.CallToolResult, ListItemsOutput, error) {
		list, err := item.ParseList(in.List)
		if err != nil {
			return nil, ListItemsOutput{}, mapError(err)
		}
		items, err := svc.Items.List(ctx, list)
		if err != nil {
			return nil, ListItemsOutput{}, mapError(err)
		}
		return nil, ListItemsOutput{List: list, Items: items}, nil
	})

	apply := func(ctx context.Context, cmd command.Command) (*sdkmcp.CallToolResult, command.Report, error) {
		raw, err := command.Marshal([]command.Command{cmd})
		if err != nil {
			return nil, command.Report{}, err
		}
		logger.Debug("tool command", "kind", cmd.Kind(), "session_id", getSessionID(ctx))
		report, err := svc.Commands.ApplyRaw(ctx, raw, toolSource)
		if err != nil {
			return nil, command.Report{}, mapError(err)
		}
		return nil, *report, nil
	}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "grant_xp",
		Description: "Grant or revoke XP",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GrantXPInput) (*sdkmcp.CallToolResult, command.Report, error) {
		return apply(ctx, command.GrantXP{Amount: in.Amount, Reason: in.Reason})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "replace_agenda",
		Description: "Overwrite today's schedule. Every block starts incomplete, and XP earned from completed blocks that are dropped is revoked.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ReplaceAgendaInput) (*sdkmcp.CallToolResult, command.Report, error) {
		return apply(ctx, command.ReplaceAgenda{Items: in.Items})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "replace_tasks",
		Description: "Overwrite the daily task list. Every task starts incomplete, and XP earned from completed tasks that are dropped is revoked.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ReplaceTasksInput) (*sdkmcp.CallToolResult, command.Report, error) {
		return apply(ctx, command.ReplaceTasks{Items: in.Items})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_task",
		Description: "Append one daily task",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddTaskInput) (*sdkmcp.CallToolResult, command.Report, error) {
		return apply(ctx, command.AddTask{Title: in.Title, XP: in.XP, Category: in.Category})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "complete_task",
		Description: fmt.Sprintf("Complete the open task that best matches a query and grant its reward (%d XP by default)", item.XPTask),
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CompleteTaskInput) (*sdkmcp.CallToolResult, command.Report, error) {
		return apply(ctx, command.CompleteTask{Query: in.Query})
	})
}
