// Package qualify asks an AI model with web-search grounding whether a lead
// is a genuine professional, and parses its structured verdict.
package qualify

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/config"
	"github.com/sells-group/lead-qualifier/internal/model"
	"github.com/sells-group/lead-qualifier/internal/resilience"
	"github.com/sells-group/lead-qualifier/internal/scoring"
	"github.com/sells-group/lead-qualifier/pkg/anthropic"
)

// Qualifier runs qualification calls against the AI model. Transient
// upstream failures are retried with backoff; a run of hard failures opens
// the circuit breaker and sheds load until the upstream recovers.
type Qualifier struct {
	ai       anthropic.Client
	cfg      config.AnthropicConfig
	criteria scoring.Criteria
	breaker  *resilience.Breaker
}

// New creates a Qualifier.
func New(ai anthropic.Client, cfg config.AnthropicConfig, criteria scoring.Criteria) *Qualifier {
	return &Qualifier{
		ai:       ai,
		cfg:      cfg,
		criteria: criteria,
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			Name:             "anthropic",
			FailureThreshold: cfg.BreakerThreshold,
			ResetTimeout:     time.Duration(cfg.BreakerResetSecs) * time.Second,
		}),
	}
}

// Qualify sends the lead to the model and returns its parsed verdict.
// The call is bounded by the configured timeout (web search is slow) and
// retried only on transient errors; malformed output and auth failures are
// returned immediately as hard failures.
func (q *Qualifier) Qualify(ctx context.Context, lead model.Lead) (model.Verdict, error) {
	if err := q.breaker.Allow(); err != nil {
		return model.Verdict{}, eris.Wrap(err, "qualify: upstream circuit open")
	}

	retryCfg := resilience.RetryConfig{
		MaxAttempts: q.cfg.MaxRetries + 1,
		OnRetry:     resilience.RetryLogger("anthropic", "qualify"),
	}

	temp := 0.0
	verdict, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (model.Verdict, error) {
		callCtx, cancel := context.WithTimeout(ctx, q.cfg.Timeout())
		defer cancel()

		start := time.Now()
		resp, callErr := q.ai.CreateMessage(callCtx, anthropic.MessageRequest{
			Model:       q.cfg.Model,
			MaxTokens:   q.cfg.MaxTokens,
			System:      systemPrompt,
			Temperature: &temp,
			Messages: []anthropic.Message{
				{Role: "user", Content: buildPrompt(lead, q.criteria)},
			},
			Tools: []anthropic.Tool{
				{Type: anthropic.ToolWebSearch, MaxUses: q.cfg.WebSearchMaxUses},
			},
		})
		if callErr != nil {
			return model.Verdict{}, callErr
		}

		v, parseErr := parseVerdict(resp.Text())
		if parseErr != nil {
			return model.Verdict{}, parseErr
		}
		v.Sources = resp.CitedURLs()

		zap.L().Debug("qualify: verdict received",
			zap.String("lead", lead.Identity()),
			zap.String("profile_type", string(v.ProfileType)),
			zap.Int("model_score", v.ModelScore),
			zap.Int64("input_tokens", resp.Usage.InputTokens),
			zap.Int64("output_tokens", resp.Usage.OutputTokens),
			zap.Duration("elapsed", time.Since(start)),
		)
		return v, nil
	})

	q.breaker.Record(err)
	if err != nil {
		return model.Verdict{}, eris.Wrap(err, "qualify: model call failed")
	}
	return verdict, nil
}
