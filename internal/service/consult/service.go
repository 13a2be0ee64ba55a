package consult

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
)

const (
	MsgMissingKey = "Configuração de API Key ausente. Por favor, configure a chave para usar a IA."
	MsgFailed     = "Houve um erro ao consultar o estilista virtual. Tente novamente mais tarde."
	MsgEmpty      = "Desculpe, não consegui gerar uma recomendação no momento."
)

const maxDescription = 1000

const promptTemplate = `Você é um barbeiro especialista e consultor de estilo de classe mundial.
Um cliente descreveu suas características e desejos assim: %q.

Com base nisso, sugira o melhor corte de cabelo e estilo de barba para ele.
Seja conciso (máximo 3 frases). Recomende um dos seguintes serviços se aplicável: Corte de Cabelo, Barba Completa, Corte + Barba.
Mantenha um tom profissional e encorajador.`

var ErrEmptyDescription = errors.New("description is required")

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

// Generator produces text for a prompt. *gemini.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen     Generator
	limiter *redisrepo.SlidingWindowLimiter
	logger  *slog.Logger
	timeout time.Duration
}

// New accepts a nil gen when no API key is configured; every consultation
// then answers MsgMissingKey.
func New(gen Generator, limiter *redisrepo.SlidingWindowLimiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		gen:     gen,
		limiter: limiter,
		logger:  logger,
		timeout: 20 * time.Second,
	}
}

// Recommend answers with a short style suggestion. Generation failures are
// logged and replaced by a fixed message; only an empty description or the
// rate limit produce an error.
func (s *Service) Recommend(ctx context.Context, description, clientKey string) (string, error) {
	const op = "service.consult.Recommend"

	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyDescription)
	}

	if r := []rune(description); len(r) > maxDescription {
		description = string(r[:maxDescription])
	}

	if s.limiter != nil && clientKey != "" {
		d, err := s.limiter.Allow(ctx, clientKey)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !d.Allowed {
			return "", fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: d.RetryAfter})
		}
	}

	if s.gen == nil {
		return MsgMissingKey, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, fmt.Sprintf(promptTemplate, description))
	if err != nil {
		s.logger.Error("style consultation failed", slog.Any("error", err))
		return MsgFailed, nil
	}

	if strings.TrimSpace(text) == "" {
		return MsgEmpty, nil
	}

	return text, nil
}
