package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/streamos/internal/app"
	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/command"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/project"
)

// ProgressService covers the ledger views and whole-store operations.
type ProgressService interface {
	EnsureDay(ctx context.Context) (*app.BootReport, error)
	Stats(ctx context.Context) (*app.StatsView, error)
	ApplyXP(ctx context.Context, delta int, source string) (*app.XPView, error)
	Export(ctx context.Context) (map[string]json.RawMessage, error)
	Import(ctx context.Context, snapshot map[string]json.RawMessage) (int, error)
	ResetXP(ctx context.Context) (*app.StatsView, error)
	FactoryReset(ctx context.Context) (*app.BootReport, error)
	Language(ctx context.Context) (chat.Language, error)
	SetLanguage(ctx context.Context, lang string) (chat.Language, error)
}

// ItemService defines recurring list operations.
type ItemService interface {
	List(ctx context.Context, list item.List) ([]item.Item, error)
	Create(ctx context.Context, req item.CreateRequest) (*item.Item, error)
	Toggle(ctx context.Context, list item.List, id string) (*item.Outcome, error)
	CompleteFocus(ctx context.Context, id string) (*item.Outcome, error)
	Complete(ctx context.Context, list item.List, id string) (*item.Outcome, error)
	Delete(ctx context.Context, list item.List, id string) (*item.Outcome, error)
	Move(ctx context.Context, list item.List, id string, dir item.Direction) ([]item.Item, error)
	Replace(ctx context.Context, list item.List, drafts []item.Draft) (*item.ReplaceOutcome, error)
}

// ProjectService defines studio pipeline operations.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Outcome, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
	Update(ctx context.Context, req project.UpdateRequest) (*project.Project, error)
	Advance(ctx context.Context, id string) (*project.Outcome, error)
	MoveBack(ctx context.Context, id string) (*project.Outcome, error)
	Delete(ctx context.Context, id string) (*project.Outcome, error)
}

// ScriptService drafts project scripts through the assistant.
type ScriptService interface {
	GenerateScript(ctx context.Context, id string, lang chat.Language) (*app.ScriptView, error)
}

// ActivityService defines activity operations.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// ChatService defines assistant session bookkeeping.
type ChatService interface {
	List(ctx context.Context, status *chat.SessionStatus) ([]chat.Session, error)
	History(ctx context.Context, id string, limit int) ([]chat.Message, error)
	Close(ctx context.Context, id string) (*chat.Session, error)
}

// CoachService relays a turn to the assistant.
type CoachService interface {
	Send(ctx context.Context, req assistant.SendRequest) (*assistant.Reply, error)
}

// CommandService applies command payloads.
type CommandService interface {
	ApplyRaw(ctx context.Context, raw []byte, source string) (*command.Report, error)
}

// Services contains all domain services needed by the RPC handler and the
// tool server.
type Services struct {
	Progress ProgressService
	Items    ItemService
	Projects ProjectService
	Scripts  ScriptService
	Activity ActivityService
	Chat     ChatService
	Coach    CoachService
	Commands CommandService
}

// NewServices exposes an App's services.
func NewServices(a *app.App) Services {
	return Services{
		Progress: a,
		Items:    a.Items,
		Projects: a.Projects,
		Scripts:  a,
		Activity: a.Activity,
		Chat:     a.Chat,
		Coach:    a.Coach,
		Commands: a.Commands,
	}
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates the MCP tool server.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "streamos",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(dayMiddleware(cfg.Services.Progress))
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, logger)

	return server
}
