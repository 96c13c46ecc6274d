// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/metrics"
	"github.com/danielhkuo/votematch/models"
)

// DefaultTimeout bounds a single oracle call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Transport sends one prompt to the scoring service and returns its raw reply.
type Transport interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// Scorer turns proposal text into a score vector. It makes exactly one
// transport call per Score and never retries.
type Scorer struct {
	transport Transport
	timeout   time.Duration
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
}

type Option func(*Scorer)

// WithTimeout bounds each oracle call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRateLimit caps outgoing calls per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(s *Scorer) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scorer) { s.metrics = m }
}

func NewScorer(t Transport, opts ...Option) *Scorer {
	s := &Scorer{transport: t, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score asks the oracle to rate a proposal against the category's questions.
// Errors wrap models.ErrOracleUnavailable or models.ErrMalformedOracleResponse.
func (s *Scorer) Score(ctx context.Context, cat catalog.Category, title, description string) (models.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.metrics.OracleRequest(metrics.OutcomeUnavailable, 0)
			return models.Vector{}, fmt.Errorf("%w: rate limiter: %w", models.ErrOracleUnavailable, err)
		}
	}

	prompt := BuildPrompt(cat, title, description)

	start := time.Now()
	reply, err := s.transport.Send(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.OracleRequest(metrics.OutcomeUnavailable, elapsed)
		slog.Error("scoring oracle call failed", "category", cat.Name, "error", err, "duration_ms", elapsed.Milliseconds())
		return models.Vector{}, fmt.Errorf("%w: %w", models.ErrOracleUnavailable, err)
	}

	scores, err := ParseScores(reply)
	if err != nil {
		s.metrics.OracleRequest(metrics.OutcomeMalformed, elapsed)
		slog.Warn("scoring oracle returned malformed reply", "category", cat.Name, "reply", reply)
		return models.Vector{}, err
	}

	s.metrics.OracleRequest(metrics.OutcomeOK, elapsed)
	slog.Info("proposal scored", "category", cat.Name, "scores", scores.String(), "duration_ms", elapsed.Milliseconds())
	return scores, nil
}

// BuildPrompt renders the oracle prompt. Output depends only on its inputs.
func BuildPrompt(cat catalog.Category, title, description string) string {
	var b strings.Builder
	b.WriteString("Evalúa la siguiente propuesta política y responde solo con los números ")
	b.WriteString("(separados por comas) de las calificaciones del 1 al 5, según corresponda a cada pregunta. ")
	b.WriteString("No agregues texto adicional, solo los números en el orden de las preguntas.\n\n")

	b.WriteString("Categoría de la propuesta:\n")
	b.WriteString(cat.Name)
	b.WriteString("\n\nTítulo:\n")
	b.WriteString(title)
	b.WriteString("\n\nPropuesta:\n")
	b.WriteString(description)
	b.WriteString("\n\nPreguntas:\n")
	for i, q := range cat.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\nDevuelve la respuesta en el formato:\n")
	b.WriteString("número,número,número (por ejemplo: 5,4,3)\n")
	return b.String()
}

// ParseScores parses an oracle reply of the form "n,n,n".
func ParseScores(reply string) (models.Vector, error) {
	text := strings.TrimSpace(reply)
	tokens := strings.Split(text, ",")
	if len(tokens) != models.VectorLen {
		return models.Vector{}, fmt.Errorf("%w: want %d values, got %d in %q",
			models.ErrMalformedOracleResponse, models.VectorLen, len(tokens), reply)
	}

	values := make([]int, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return models.Vector{}, fmt.Errorf("%w: token %q is not an integer", models.ErrMalformedOracleResponse, tok)
		}
		values[i] = n
	}

	v, err := models.NewVector(values)
	if err != nil {
		return models.Vector{}, fmt.Errorf("%w: %w", models.ErrMalformedOracleResponse, err)
	}
	return v, nil
}
