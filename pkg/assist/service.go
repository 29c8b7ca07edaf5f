package assist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/diarydepresiku/moodlog/pkg/debug"
	"github.com/diarydepresiku/moodlog/pkg/provider"
	"github.com/diarydepresiku/moodlog/pkg/provider/openaicompat"
)

// Built-in model identifiers. Operators can alias them through the
// provider's model mapping.
const (
	ModelGeneral   = "deepseek/deepseek-chat-v3-0324:free"
	ModelSentiment = "google/gemini-2.0-flash-exp:free"
)

// Completer performs one chat completion and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req *openaicompat.ChatCompletionRequest) (string, error)
}

// ClientFactory hands out a Completer for one call. It fails with
// provider.ErrMissingCredential when no credential is configured.
type ClientFactory interface {
	Client() (Completer, error)
}

// FactoryFunc adapts a function to ClientFactory.
type FactoryFunc func() (Completer, error)

// Client calls f.
func (f FactoryFunc) Client() (Completer, error) { return f() }

// FromProvider adapts a *provider.Factory to ClientFactory.
func FromProvider(f *provider.Factory) ClientFactory {
	return FactoryFunc(func() (Completer, error) {
		c, err := f.Client()
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// Observer is notified once per task call. outcome is "ok" or the failure
// kind name.
type Observer func(task, model, outcome string, elapsed time.Duration)

// Service runs the assistant tasks. It holds no per-call state and is safe
// for concurrent use.
type Service struct {
	factory  ClientFactory
	observer Observer
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithObserver registers a callback for per-call metrics.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service that obtains provider clients from factory.
func New(factory ClientFactory, opts ...Option) *Service {
	s := &Service{
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// call describes one provider round trip of a task.
type call[T any] struct {
	task     string
	model    string
	messages []openaicompat.ChatMessage

	// failKind classifies a failed round trip.
	failKind Kind

	// parse turns the reply into the task result. A parse error is always
	// reported as KindMalformedResponse with the reply kept as Raw.
	parse func(raw string) (T, error)
}

// run executes c on a freshly acquired client.
func run[T any](ctx context.Context, s *Service, c call[T]) (T, error) {
	client, err := s.acquire(c.task, c.model)
	if err != nil {
		var zero T
		return zero, err
	}
	return runWith(ctx, s, client, c)
}

// acquire obtains one client from the factory. A missing credential is
// reported as KindMissingCredential, any other failure as KindProviderCall.
func (s *Service) acquire(task, model string) (Completer, error) {
	start := time.Now()
	client, err := s.factory.Client()
	if err != nil {
		kind := KindProviderCall
		if errors.Is(err, provider.ErrMissingCredential) {
			kind = KindMissingCredential
		}
		s.logger.Error("provider client unavailable", "task", task, "error", err)
		s.observe(task, model, kind.String(), start)
		return nil, &Error{Kind: kind, Task: task, Cause: err}
	}
	return client, nil
}

// runWith executes c on client: call once, parse, classify.
func runWith[T any](ctx context.Context, s *Service, client Completer, c call[T]) (T, error) {
	var zero T
	start := time.Now()

	debug.Log("assist", "calling provider", "task", c.task, "model", c.model)

	raw, err := client.Complete(ctx, &openaicompat.ChatCompletionRequest{
		Model:    c.model,
		Messages: c.messages,
	})
	if err != nil {
		s.logger.Warn("provider call failed", "task", c.task, "model", c.model, "error", err)
		s.observe(c.task, c.model, c.failKind.String(), start)
		return zero, &Error{Kind: c.failKind, Task: c.task, Cause: err}
	}

	debug.Trace("assist", "provider reply", "task", c.task, "raw", raw)

	v, err := c.parse(raw)
	if err != nil {
		s.logger.Warn("malformed provider response",
			"task", c.task,
			"model", c.model,
			"error", err,
			"raw", debug.Truncate(raw, 2000),
		)
		s.observe(c.task, c.model, KindMalformedResponse.String(), start)
		return zero, &Error{Kind: KindMalformedResponse, Task: c.task, Cause: err, Raw: raw}
	}

	s.observe(c.task, c.model, "ok", start)
	return v, nil
}

func (s *Service) observe(task, model, outcome string, start time.Time) {
	if s.observer != nil {
		s.observer(task, model, outcome, time.Since(start))
	}
}

// passthrough returns the reply unmodified.
func passthrough(raw string) (string, error) { return raw, nil }
