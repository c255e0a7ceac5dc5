package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mindline/internal/observability"
	"mindline/pkg/directory"
	"mindline/pkg/session"
)

// DefaultRequestTimeout bounds each external collaborator call.
const DefaultRequestTimeout = 30 * time.Second

// Retriever finds service records relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]directory.Document, error)
}

// Config holds orchestrator tuning.
type Config struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	RequestTimeout time.Duration
}

// Orchestrator handles one chat turn end to end against a shared session
// store and the external retrieval/completion collaborators.
type Orchestrator struct {
	store     *session.Store
	retriever Retriever
	provider  CompletionProvider
	cfg       Config
}

// NewOrchestrator wires the orchestrator, filling zero config fields with
// the defaults from the original deployment (gpt-4o, temperature 0, 1000
// max tokens).
func NewOrchestrator(store *session.Store, retriever Retriever, provider CompletionProvider, cfg Config) *Orchestrator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Orchestrator{
		store:     store,
		retriever: retriever,
		provider:  provider,
		cfg:       cfg,
	}
}

// Chat processes one user message. An empty sessionID creates a new
// session; a supplied but unknown id fails with session.ErrSessionNotFound
// rather than silently creating one. On collaborator failure the user
// message stays appended and no reply is recorded.
func (o *Orchestrator) Chat(ctx context.Context, text, sessionID string) (reply, id string, err error) {
	start := time.Now()
	status := "error"
	defer func() {
		observability.RecordChatRequest(time.Since(start), status)
	}()

	if sessionID == "" {
		sess := o.store.Create()
		sessionID = sess.ID
	} else if _, err := o.store.Get(sessionID); err != nil {
		return "", "", err
	}

	logger := log.With().Str("session_id", sessionID).Logger()
	logger.Info().Str("message", truncate(text, 100)).Msg("Processing chat request")

	sess, err := o.store.TouchAndAppend(sessionID, session.Message{
		Role:    session.RoleUser,
		Content: text,
	})
	if err != nil {
		return "", "", err
	}

	// History prior to this turn's exchange.
	history := sess.Messages[:len(sess.Messages)-1]

	docs, err := o.retrieve(ctx, text)
	if err != nil {
		return "", sessionID, err
	}

	reply, err = o.complete(ctx, BuildMessages(history, text, docs))
	if err != nil {
		return "", sessionID, err
	}

	if _, err := o.store.TouchAndAppend(sessionID, session.Message{
		Role:    session.RoleAssistant,
		Content: reply,
	}); err != nil {
		return "", sessionID, err
	}

	status = "ok"
	logger.Info().Msg("Successfully processed chat request")
	return reply, sessionID, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, query string) ([]directory.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	docs, err := o.retriever.Retrieve(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrRetrievalTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	return docs, nil
}

func (o *Orchestrator) complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	reply, err := o.provider.Complete(ctx, CompletionRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	observability.RecordCompletion(time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrCompletionTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
