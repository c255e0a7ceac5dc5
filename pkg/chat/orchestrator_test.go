package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindline/pkg/directory"
	"mindline/pkg/session"
)

type stubRetriever struct {
	docs []directory.Document
	err  error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]directory.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

type stubProvider struct {
	reply    string
	err      error
	lastReq  CompletionRequest
	numCalls int
}

func (s *stubProvider) Provider() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, request CompletionRequest) (string, error) {
	s.lastReq = request
	s.numCalls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestOrchestrator(retriever Retriever, provider CompletionProvider) (*Orchestrator, *session.Store) {
	store := session.NewStore()
	return NewOrchestrator(store, retriever, provider, Config{}), store
}

func TestChat_CreatesSessionWhenIDEmpty(t *testing.T) {
	provider := &stubProvider{reply: "Hi there"}
	orch, store := newTestOrchestrator(&stubRetriever{}, provider)

	reply, id, err := orch.Chat(context.Background(), "Hello", "")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, store.Len())
}

func TestChat_UnknownSessionIDFails(t *testing.T) {
	orch, store := newTestOrchestrator(&stubRetriever{}, &stubProvider{reply: "x"})

	_, _, err := orch.Chat(context.Background(), "Hello", "does-not-exist")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// No session was silently created.
	assert.Equal(t, 0, store.Len())
}

func TestChat_HistoryRoundTrip(t *testing.T) {
	provider := &stubProvider{reply: "Hi there"}
	orch, store := newTestOrchestrator(&stubRetriever{}, provider)

	sess := store.Create()
	_, id, err := orch.Chat(context.Background(), "Hello", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, id)

	final, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.Len(t, final.Messages, 2)
	assert.Equal(t, session.RoleUser, final.Messages[0].Role)
	assert.Equal(t, "Hello", final.Messages[0].Content)
	assert.Equal(t, session.RoleAssistant, final.Messages[1].Role)
	assert.Equal(t, "Hi there", final.Messages[1].Content)
}

func TestChat_UserMessageSurvivesCompletionFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream exploded")}
	orch, store := newTestOrchestrator(&stubRetriever{}, provider)

	sess := store.Create()
	_, _, err := orch.Chat(context.Background(), "Hello", sess.ID)
	assert.ErrorIs(t, err, ErrCompletion)

	// At-least-once user append, at-most-once reply append.
	final, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.Len(t, final.Messages, 1)
	assert.Equal(t, session.RoleUser, final.Messages[0].Role)
}

func TestChat_RetrievalFailureClassified(t *testing.T) {
	orch, _ := newTestOrchestrator(&stubRetriever{err: errors.New("index offline")}, &stubProvider{})

	_, _, err := orch.Chat(context.Background(), "Hello", "")
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.NotErrorIs(t, err, ErrRetrievalTimeout)
}

func TestChat_TimeoutsClassified(t *testing.T) {
	orch, _ := newTestOrchestrator(
		&stubRetriever{err: context.DeadlineExceeded},
		&stubProvider{},
	)
	_, _, err := orch.Chat(context.Background(), "Hello", "")
	assert.ErrorIs(t, err, ErrRetrievalTimeout)

	orch, _ = newTestOrchestrator(
		&stubRetriever{},
		&stubProvider{err: context.DeadlineExceeded},
	)
	_, _, err = orch.Chat(context.Background(), "Hello", "")
	assert.ErrorIs(t, err, ErrCompletionTimeout)
}

func TestChat_PassesHistoryPriorToThisTurn(t *testing.T) {
	provider := &stubProvider{reply: "second reply"}
	orch, store := newTestOrchestrator(&stubRetriever{}, provider)

	sess := store.Create()
	_, _, err := orch.Chat(context.Background(), "first", sess.ID)
	require.NoError(t, err)
	_, _, err = orch.Chat(context.Background(), "second", sess.ID)
	require.NoError(t, err)

	// Last call saw the first exchange as history plus the fenced second
	// input; the second user message itself is not duplicated in history.
	req := provider.lastReq
	var historyContents []string
	for _, msg := range req.Messages[1 : len(req.Messages)-2] {
		historyContents = append(historyContents, msg.Content)
	}
	assert.Equal(t, []string{"first", "second reply"}, historyContents)
	assert.Equal(t, "```second```", req.Messages[len(req.Messages)-2].Content)
}

func TestChat_DefaultsApplied(t *testing.T) {
	orch, _ := newTestOrchestrator(&stubRetriever{}, &stubProvider{reply: "x"})

	assert.Equal(t, "gpt-4o", orch.cfg.Model)
	assert.Equal(t, 1000, orch.cfg.MaxTokens)
	assert.Equal(t, DefaultRequestTimeout, orch.cfg.RequestTimeout)
	assert.Equal(t, float64(0), orch.cfg.Temperature)
}
