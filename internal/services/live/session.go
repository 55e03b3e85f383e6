package live

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
	"github.com/erickalfaro/my-dashboard/internal/services/dispatch"
	"github.com/erickalfaro/my-dashboard/internal/services/tape"
)

const sendBuffer = 64

// Deps are the services a session drives.
type Deps struct {
	Quota          interfaces.QuotaService
	Aggregate      interfaces.AggregateService
	Summary        interfaces.SummaryService
	Tape           interfaces.TapeService
	DebounceWindow time.Duration
	Scheduler      dispatch.Scheduler
}

// Session is one user's live connection state, independent of the transport.
// Outbound frames are queued on Send.
type Session struct {
	user       *models.User
	deps       Deps
	tracker    interfaces.QuotaTracker
	dispatcher *dispatch.Dispatcher
	logger     *common.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	send   chan []byte
	wg     sync.WaitGroup
}

// NewSession creates a session for user. Call Start before Handle.
func NewSession(ctx context.Context, user *models.User, deps Deps, logger *common.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		user:    user,
		deps:    deps,
		tracker: deps.Quota.NewTracker(user.ID),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan []byte, sendBuffer),
	}
	var opts []dispatch.Option
	if deps.Scheduler != nil {
		opts = append(opts, dispatch.WithScheduler(deps.Scheduler))
	}
	s.dispatcher = dispatch.New(deps.DebounceWindow, s.dispatch, opts...)
	return s
}

// Send is the outbound frame queue. It is closed by Close.
func (s *Session) Send() <-chan []byte {
	return s.send
}

// Start loads the quota and pushes the initial state and tape.
func (s *Session) Start() {
	if err := s.tracker.Load(s.ctx); err != nil {
		s.logger.Error().Str("user_id", s.user.ID).Err(err).Msg("Failed to load quota")
		s.push(ServerMessage{Type: TypeError, Error: "Failed to load subscription status"})
	} else {
		st := s.tracker.State()
		s.push(ServerMessage{Type: TypeState, Subscription: &st})
	}
	s.pushTape(interfaces.TapeSort{})
}

// Handle processes one inbound frame.
func (s *Session) Handle(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.push(ServerMessage{Type: TypeError, Error: "Invalid message"})
		return
	}

	switch msg.Type {
	case TypeSelect:
		if models.NormalizeTicker(msg.Ticker) == "" {
			s.push(ServerMessage{Type: TypeError, Error: "Invalid ticker"})
			return
		}
		s.dispatcher.Trigger(msg.Ticker)
	case TypeRefresh:
		s.pushTape(interfaces.TapeSort{Key: msg.Sort, Direction: msg.Direction})
	default:
		s.push(ServerMessage{Type: TypeError, Error: "Unknown message type"})
	}
}

// dispatch runs for the ticker that survived the debounce window.
func (s *Session) dispatch(ticker string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ticker = models.NormalizeTicker(ticker)
	decision := s.tracker.Authorize(s.ctx, ticker)
	st := s.tracker.State()
	if !decision.Allowed {
		s.push(ServerMessage{Type: TypeDenied, Ticker: ticker, Reason: decision.Reason, Subscription: &st})
		return
	}

	s.push(ServerMessage{Type: TypeLoading, Ticker: ticker, Subscription: &st})
	result := s.deps.Aggregate.Fetch(s.ctx, ticker)
	if s.ctx.Err() != nil {
		return
	}
	s.push(ServerMessage{Type: TypeAggregate, Ticker: ticker, Result: result, Subscription: &st})

	if s.deps.Summary == nil || !s.deps.Summary.Ready() {
		return
	}
	summary := s.deps.Summary.Summarize(s.ctx, result.Posts, ticker)
	if s.ctx.Err() != nil {
		return
	}
	s.push(ServerMessage{Type: TypeSummary, Ticker: ticker, Summary: summary})
}

func (s *Session) pushTape(ts interfaces.TapeSort) {
	items, err := s.deps.Tape.List(s.ctx, ts)
	if err != nil {
		msg := "Failed to load ticker tape"
		if errors.Is(err, tape.ErrInvalidSortKey) || errors.Is(err, tape.ErrInvalidSortDirection) {
			msg = err.Error()
		}
		s.push(ServerMessage{Type: TypeError, Error: msg})
		return
	}
	s.push(ServerMessage{Type: TypeTape, Tape: items})
}

// push queues msg, dropping it when the client is not keeping up.
func (s *Session) push(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn().Err(err).Str("type", msg.Type).Msg("Failed to marshal live message")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn().Str("user_id", s.user.ID).Str("type", msg.Type).Msg("Live send buffer full, dropping message")
	}
}

// Close stops the dispatcher, cancels in-flight work and closes Send.
func (s *Session) Close() {
	s.dispatcher.Stop()
	s.cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	close(s.send)
}
