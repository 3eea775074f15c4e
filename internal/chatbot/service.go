package chatbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FoodAdvisor_V0.1/internal/classifier"
	"FoodAdvisor_V0.1/internal/metrics"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingSession     = errors.New("session id is required")
	ErrGatewayUnavailable = errors.New("classifier gateway unavailable")
)

// Gateway classifies a completed food/condition pair.
type Gateway interface {
	Classify(ctx context.Context, food, condition string) (classifier.Result, error)
}

// Reply is what the chat answers to one message.
type Reply struct {
	SessionID string
	Response  string
	State     State

	// Pair and Result are set only when the turn completed and the hand-off succeeded.
	Pair   *Pair
	Result *classifier.Result
}

// Service runs conversations keyed by session id. Sessions never share memory; turns of
// one session are processed one at a time.
type Service struct {
	vocab   *Vocabulary
	store   MemoryStore
	gateway Gateway
	locks   *sessionLocks
}

func NewService(vocab *Vocabulary, store MemoryStore, gateway Gateway) *Service {
	return &Service{
		vocab:   vocab,
		store:   store,
		gateway: gateway,
		locks:   newSessionLocks(),
	}
}

// Vocabulary returns the shared vocabulary the service extracts against.
func (s *Service) Vocabulary() *Vocabulary {
	return s.vocab
}

// Chat processes one utterance of the session.
//
// A turn that completes the pair is handed to the gateway before the memory is cleared.
// If the gateway fails the error wraps ErrGatewayUnavailable and both slots stay stored,
// so a later message naming either slot retries the hand-off without restating the other.
func (s *Service) Chat(ctx context.Context, sessionID, utterance string) (*Reply, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	logger := log.Ctx(ctx).With().Str("session_id", sessionID).Logger()

	mem, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		logger.Debug().Msg("Starting new conversation")
	}

	turn := ProcessTurn(&mem, utterance, s.vocab)
	metrics.ChatTurns.WithLabelValues(turn.State.String()).Inc()
	logger.Debug().Str("state", turn.State.String()).Str("food", mem.Food).Str("condition", mem.Condition).Msg("Processed turn")

	reply := &Reply{
		SessionID: sessionID,
		Response:  turn.Response,
		State:     turn.State,
	}

	if turn.Completed == nil {
		if err := s.store.Save(ctx, sessionID, mem); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return reply, nil
	}

	result, err := s.handOff(ctx, *turn.Completed)
	if err != nil {
		metrics.ChatHandoffs.WithLabelValues("failed").Inc()
		if saveErr := s.store.Save(ctx, sessionID, mem); saveErr != nil {
			logger.Error().Err(saveErr).Msg("Failed to keep completed pair after hand-off failure")
		}
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	metrics.ChatHandoffs.WithLabelValues("succeeded").Inc()

	// Reset failures are logged only; the verdict is still returned.
	if err := s.store.Delete(ctx, sessionID); err != nil {
		logger.Error().Err(err).Msg("Failed to reset session after hand-off")
	}
	logger.Info().Str("food", turn.Completed.Food).Str("condition", turn.Completed.Condition).
		Str("label", result.Label).Msg("Completed recommendation")

	reply.Pair = turn.Completed
	reply.Result = &result
	return reply, nil
}

func (s *Service) handOff(ctx context.Context, pair Pair) (classifier.Result, error) {
	if s.gateway == nil {
		return classifier.Result{}, classifier.ErrModelNotLoaded
	}

	start := time.Now()
	defer func() {
		metrics.ClassifyDuration.Observe(time.Since(start).Seconds())
	}()
	return s.gateway.Classify(ctx, pair.Food, pair.Condition)
}

// Reset forgets the session so its next turn starts from StateEmpty.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Peek returns the stored memory of a session without processing a turn.
func (s *Service) Peek(ctx context.Context, sessionID string) (Memory, error) {
	if sessionID == "" {
		return Memory{}, ErrMissingSession
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	mem, _, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Memory{}, fmt.Errorf("load session: %w", err)
	}
	return mem, nil
}
