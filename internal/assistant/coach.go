package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/streamos/internal/command"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"golang.org/x/time/rate"
)

// Chat stores sessions and their messages.
type Chat interface {
	Start(ctx context.Context, lang chat.Language) (*chat.Session, error)
	Get(ctx context.Context, id string) (*chat.Session, error)
	History(ctx context.Context, id string, limit int) ([]chat.Message, error)
	Append(ctx context.Context, id string, role chat.Role, text string) (*chat.Message, error)
}

// Stats reads the progression ledger.
type Stats interface {
	Get(ctx context.Context) (*ledger.Stats, error)
}

// Commands applies command payloads found in model replies.
type Commands interface {
	ApplyRaw(ctx context.Context, raw []byte, source string) (*command.Report, error)
}

// Options tunes a Coach.
type Options struct {
	// History is how many prior messages are sent with each turn.
	History int
	// Interval is the minimum spacing between model calls. Zero disables limiting.
	Interval time.Duration
	Burst    int
	Timeout  time.Duration
}

// SendRequest is one user turn.
type SendRequest struct {
	SessionID string        `json:"session_id,omitempty"`
	Message   string        `json:"message"`
	Language  chat.Language `json:"language,omitempty"`
}

// Reply is the coach's answer to one turn. Failed replies carry a localized
// message and leave all state untouched.
type Reply struct {
	SessionID     string          `json:"session_id"`
	Text          string          `json:"text"`
	Failed        bool            `json:"failed,omitempty"`
	Commands      *command.Report `json:"commands,omitempty"`
	CommandsError string          `json:"commands_error,omitempty"`
}

// Coach relays chat turns to the model.
type Coach struct {
	chat     Chat
	stats    Stats
	commands Commands
	model    Model
	limiter  *rate.Limiter
	opts     Options
	logger   *slog.Logger
}

// NewCoach creates a Coach. A nil model makes every turn fail with the
// localized failure message.
func NewCoach(chatSvc Chat, stats Stats, commands Commands, model Model, opts Options, logger *slog.Logger) *Coach {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.History <= 0 {
		opts.History = chat.DefaultHistory
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Coach{
		chat:     chatSvc,
		stats:    stats,
		commands: commands,
		model:    model,
		limiter:  rate.NewLimiter(limit, opts.Burst),
		opts:     opts,
		logger:   logger,
	}
}

// Send records the user's message, asks the model, applies any command
// payload in the reply and records the reply.
func (c *Coach) Send(ctx context.Context, req SendRequest) (*Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, chat.ErrInvalidInput
	}

	sess, err := c.session(ctx, req)
	if err != nil {
		return nil, err
	}
	lang := req.Language
	if lang == "" {
		lang = sess.Language
	}
	msgs := messagesFor(lang)

	history, err := c.chat.History(ctx, sess.ID, c.opts.History)
	if err != nil {
		return nil, err
	}
	if _, err := c.chat.Append(ctx, sess.ID, chat.RoleUser, req.Message); err != nil {
		return nil, err
	}

	stats, err := c.stats.Get(ctx)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, SystemInstruction(stats, lang), history, req.Message)
	if err != nil {
		c.logger.Error("assistant request failed", "session_id", sess.ID, "error", err)
		return &Reply{SessionID: sess.ID, Text: msgs.failure, Failed: true}, nil
	}
	if strings.TrimSpace(text) == "" {
		return &Reply{SessionID: sess.ID, Text: msgs.noResponse, Failed: true}, nil
	}

	reply := &Reply{SessionID: sess.ID, Text: text}
	if raw, ok := command.Extract(text); ok {
		report, err := c.commands.ApplyRaw(ctx, raw, "assistant")
		if err != nil {
			reply.CommandsError = err.Error()
		} else {
			reply.Commands = report
		}
	}

	if _, err := c.chat.Append(ctx, sess.ID, chat.RoleModel, text); err != nil {
		c.logger.Warn("failed to record assistant reply", "session_id", sess.ID, "error", err)
	}
	return reply, nil
}

func (c *Coach) session(ctx context.Context, req SendRequest) (*chat.Session, error) {
	if req.SessionID == "" {
		return c.chat.Start(ctx, req.Language)
	}
	return c.chat.Get(ctx, req.SessionID)
}

// generate runs outside every domain lock; only the resulting commands are
// applied under them.
func (c *Coach) generate(ctx context.Context, system string, history []chat.Message, prompt string) (string, error) {
	if c.model == nil {
		return "", ErrNoAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	text, err := c.model.Generate(ctx, system, history, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("assistant request timed out", "timeout", c.opts.Timeout)
		}
		return "", err
	}
	return text, nil
}
