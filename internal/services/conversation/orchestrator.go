package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "budget-assistant/internal/common/errors"
	"budget-assistant/internal/common/logger"
	"budget-assistant/internal/common/metrics"
	"budget-assistant/internal/models"
	"budget-assistant/internal/services/contextbuild"
	"budget-assistant/internal/services/facts"
	"budget-assistant/internal/services/intent"
)

const (
	// titleBudget is the prompt prefix length used for session title backfill.
	titleBudget = 50

	sessionLockPrefix = "turn-lock:"
	sessionLockTTL    = 30 * time.Second
	lockRetryInterval = 100 * time.Millisecond
	lockWait          = 5 * time.Second
)

// Generator is the model-invocation collaborator: text in, text out, may fail.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FactAggregator supplies domain summaries for flagged intents.
type FactAggregator interface {
	Aggregate(ctx context.Context, userID string, it intent.Intent) facts.Summaries
}

type StartRequest struct {
	UserID string
	Prompt string
}

type ContinueRequest struct {
	SessionID string
	Prompt    string
}

type TurnResult struct {
	SessionID string `json:"sessionId"`
	TurnID    string `json:"turnId"`
	Title     string `json:"title,omitempty"`
	Response  string `json:"response"`
}

// Orchestrator drives one turn end to end: validate, build context, generate,
// persist atomically. It holds no cross-request state; everything a turn
// needs arrives in the request or lives in the store.
type Orchestrator struct {
	store  *Store
	agg    FactAggregator
	gen    Generator
	locks  *redis.Client
	logger logger.Logger
}

// NewOrchestrator wires the pipeline. locks may be nil for single-instance
// deployments; the store's row lock still serializes the title backfill.
func NewOrchestrator(store *Store, agg FactAggregator, gen Generator, locks *redis.Client, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		agg:    agg,
		gen:    gen,
		locks:  locks,
		logger: log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// StartSession creates a new session from an opening prompt. The model call
// happens before any write: if generation fails, nothing is persisted.
func (o *Orchestrator) StartSession(ctx context.Context, req StartRequest) (*TurnResult, error) {
	metrics.TurnsStarted.WithLabelValues("start").Inc()

	if strings.TrimSpace(req.UserID) == "" {
		return nil, o.fail("start", apperrors.NewValidationError("user_id is required"))
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, o.fail("start", apperrors.NewValidationError("prompt is required"))
	}

	composed := o.buildContext(ctx, req.UserID, req.Prompt, nil)

	response, err := o.gen.Generate(ctx, composed)
	if err != nil {
		return nil, o.fail("start", err)
	}

	now := time.Now().UTC()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		CreatedAt: now,
	}
	turn := &models.Turn{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		UserID:    req.UserID,
		Prompt:    req.Prompt,
		Response:  response,
		CreatedAt: now,
	}

	// The atomic unit runs to completion or rolls back; caller cancellation
	// no longer interrupts it once generation has succeeded.
	if err := o.store.CreateSessionWithTurn(context.WithoutCancel(ctx), sess, turn); err != nil {
		return nil, o.fail("start", err)
	}

	metrics.TurnsCompleted.WithLabelValues("start").Inc()
	o.logger.Info("session started", map[string]interface{}{
		"sessionId": sess.ID,
		"userId":    req.UserID,
	})

	return &TurnResult{SessionID: sess.ID, TurnID: turn.ID, Response: response}, nil
}

// ContinueSession appends a turn to an existing session, enriching the
// context with up to the last five turns and backfilling an empty title from
// the prompt.
func (o *Orchestrator) ContinueSession(ctx context.Context, req ContinueRequest) (*TurnResult, error) {
	metrics.TurnsStarted.WithLabelValues("continue").Inc()

	if strings.TrimSpace(req.SessionID) == "" {
		return nil, o.fail("continue", apperrors.NewValidationError("session_id is required"))
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, o.fail("continue", apperrors.NewValidationError("prompt is required"))
	}

	sess, err := o.store.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, o.fail("continue", err)
	}

	release := o.acquireSessionLock(ctx, sess.ID)
	defer release()

	recent, err := o.store.RecentTurns(ctx, sess.ID, contextbuild.HistoryLimit())
	if err != nil {
		return nil, o.fail("continue", err)
	}
	history := reverseChronological(recent)

	composed := o.buildContext(ctx, sess.UserID, req.Prompt, history)

	response, err := o.gen.Generate(ctx, composed)
	if err != nil {
		return nil, o.fail("continue", err)
	}

	turn := &models.Turn{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Prompt:    req.Prompt,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}

	titleCandidate := deriveTitle(req.Prompt)
	if err := o.store.AppendTurn(context.WithoutCancel(ctx), turn, titleCandidate); err != nil {
		return nil, o.fail("continue", err)
	}

	title := sess.Title
	if title == "" {
		title = titleCandidate
	}

	metrics.TurnsCompleted.WithLabelValues("continue").Inc()
	o.logger.Info("turn appended", map[string]interface{}{
		"sessionId": sess.ID,
		"turnId":    turn.ID,
	})

	return &TurnResult{SessionID: sess.ID, TurnID: turn.ID, Title: title, Response: response}, nil
}

// buildContext classifies the prompt and composes the model context. When no
// domain flag is set the aggregator is never invoked.
func (o *Orchestrator) buildContext(ctx context.Context, userID, prompt string, history []models.Turn) string {
	it := intent.Classify(prompt)

	var summaries facts.Summaries
	if it.NeedsData() {
		summaries = o.agg.Aggregate(ctx, userID, it)
	}

	return contextbuild.Compose(prompt, it, summaries, history)
}

// acquireSessionLock serializes concurrent continue-turns on one session
// across instances. Lock acquisition is best effort: on Redis failure or
// contention timeout the turn proceeds, relying on the store's row lock for
// correctness of the title backfill.
func (o *Orchestrator) acquireSessionLock(ctx context.Context, sessionID string) func() {
	if o.locks == nil {
		return func() {}
	}

	key := sessionLockPrefix + sessionID
	deadline := time.Now().Add(lockWait)

	for {
		ok, err := o.locks.SetNX(ctx, key, "1", sessionLockTTL).Result()
		if err != nil {
			o.logger.Warn("session lock unavailable", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
			return func() {}
		}
		if ok {
			return func() {
				if err := o.locks.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
					o.logger.Warn("session lock release failed", map[string]interface{}{
						"sessionId": sessionID,
						"error":     err.Error(),
					})
				}
			}
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			o.logger.Warn("session lock contention timeout", map[string]interface{}{
				"sessionId": sessionID,
			})
			return func() {}
		}
		select {
		case <-time.After(lockRetryInterval):
		case <-ctx.Done():
			return func() {}
		}
	}
}

func (o *Orchestrator) fail(path string, err error) error {
	code := string(apperrors.Code(err))
	if code == "" {
		code = "UNKNOWN"
	}
	metrics.TurnsFailed.WithLabelValues(path, code).Inc()
	o.logger.Error("turn failed", map[string]interface{}{
		"path":      path,
		"errorCode": code,
		"error":     err.Error(),
	})
	return err
}

// deriveTitle takes the first titleBudget characters of the prompt, appending
// an ellipsis marker when truncated.
func deriveTitle(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	runes := []rune(trimmed)
	if len(runes) <= titleBudget {
		return trimmed
	}
	return string(runes[:titleBudget]) + "..."
}

// reverseChronological flips a newest-first batch into oldest-first order for
// the history block.
func reverseChronological(turns []models.Turn) []models.Turn {
	if len(turns) < 2 {
		return turns
	}
	out := make([]models.Turn, len(turns))
	for i, t := range turns {
		out[len(turns)-1-i] = t
	}
	return out
}
