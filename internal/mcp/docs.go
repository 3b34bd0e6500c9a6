package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `streamos tracks a streamer's daily routine as a small RPG: XP, levels, a login streak and badges.

Core concepts:
- Ledger: level, current XP, XP needed for the next level, streak. Levels never go down; revoking XP clamps at zero.
- Lists: the day's agenda (time blocks), daily tasks and the pre-stream checklist. They reset to incomplete at the first load of each day.
- Completing an item grants its reward; un-completing or deleting a completed item revokes it exactly once.

Workflow:
1) Orient: call get_stats and list_items(list="tasks") or list_items(list="agenda").
2) Change things with grant_xp, add_task, complete_task, replace_agenda or replace_tasks.
3) complete_task matches words against open task titles; it fails when nothing matches.
4) replace_* overwrites the whole list. Every new entry starts incomplete.

Read streamos://docs/progression for reward values.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "streamos://docs/progression",
		Name:        "progression",
		Title:       "Rewards and levels",
		Description: "XP values per action, the level curve, streaks and badges.",
		Content: `# Rewards and levels

## Level curve

- Start: level 1, 0 XP, 500 XP to level 2.
- Each level-up carries the overflow and raises the threshold by 1.5x (floored): 500, 750, 1125, ...
- A single large grant can gain several levels at once.
- Revocations never remove a level; XP clamps at 0.

## Rewards

| Action | XP |
|---|---|
| Agenda block, creative | 100 |
| Agenda block, work | 50 |
| Agenda block, learning | 30 |
| Agenda block, other | 10 |
| Daily task | 15 (or its own reward) |
| Focus timer finished | +25 bonus |
| Studio project created | 10 |
| Project reaches editing | 20 |
| Project reaches ready | 50 |

## Streak

The streak counts consecutive days with at least one load. Missing a day resets it to 1.

## Badges

- streak3: 3-day streak
- streak7: 7-day streak
- level5: level 5
- xp1000: 1000 XP held at once
`,
	},
	{
		URI:         "streamos://docs/commands",
		Name:        "commands",
		Title:       "Command payloads",
		Description: "The JSON command envelope accepted by commands.apply and produced by the coach.",
		Content: `# Command payloads

A batch is ` + "`{\"commands\": [...]}`" + `, a bare array, or one command object. Every command has a ` + "`type`" + `:

- ` + "`grant_xp`" + `: ` + "`amount`" + ` (-10000..10000), optional ` + "`reason`" + `.
- ` + "`replace_agenda`" + ` / ` + "`replace_tasks`" + `: ` + "`items`" + ` (title, desc, type, category, startTime, endTime as HH:MM, xpReward). Completed items that the overwrite drops lose the XP they earned.
- ` + "`add_task`" + `: ` + "`title`" + `, optional ` + "`xp`" + ` and ` + "`category`" + `.
- ` + "`complete_task`" + `: ` + "`query`" + `.

A batch is all-or-nothing: one invalid command, an unmatched ` + "`complete_task`" + `, or ` + "`add_task`" + ` past the 200 task cap rejects the whole batch and nothing changes.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
