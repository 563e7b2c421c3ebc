package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/classifier"
	"github.com/sandevgo/buddybot/pkg/conv"
	"github.com/sandevgo/buddybot/pkg/log"
)

const (
	// Confidence is reported for every answer, generated or not.
	Confidence = 0.8

	contextPreviews     = 3
	previewLength       = 50
	descriptionLimit    = 100
	defaultTimeout      = 20 * time.Second
	defaultMaxTokens    = 300
	defaultPromptBudget = 3000
)

var ErrEmptyCompletion = errors.New("empty completion")

// completion is the outcome of one generator call. A non-nil err routes the answer to the fallback.
type completion struct {
	text string
	err  error
}

// Agent answers questions about a channel. It never fails outward: any generator problem
// (missing, slow, erroring, panicking or empty) produces the deterministic fallback answer.
type Agent struct {
	gen        core.TextGenerator
	timeout    time.Duration
	maxTokens  int
	budget     int
	classifier *classifier.Classifier

	countTokens func(string) int
}

var _ core.Answerer = (*Agent)(nil)

// NewAgent builds an answerer. gen may be nil, then every answer comes from the fallback.
func NewAgent(cfg core.AnswerConfig, gen core.TextGenerator) *Agent {
	a := &Agent{
		gen:         gen,
		timeout:     defaultTimeout,
		maxTokens:   defaultMaxTokens,
		budget:      defaultPromptBudget,
		classifier:  classifier.New(),
		countTokens: CountTokens,
	}
	if cfg != nil {
		if v := cfg.GetLLMTimeout(); v > 0 {
			a.timeout = v
		}
		if v := cfg.GetMaxOutputTokens(); v > 0 {
			a.maxTokens = v
		}
		if v := cfg.GetPromptTokenBudget(); v > 0 {
			a.budget = v
		}
	}
	return a
}

func (a *Agent) Answer(ctx context.Context, question string, cc core.ConversationContext) core.AnswerResult {
	logger := log.FromCtx(ctx)

	res := core.AnswerResult{
		ContextUsed: previews(cc.Messages),
		Confidence:  Confidence,
	}

	prompt := buildPrompt(question, cc.Messages, a.budget, a.countTokens)
	c := a.complete(ctx, prompt)
	if c.err == nil {
		res.Answer = c.text
		return res
	}

	if !errors.Is(c.err, core.ErrGeneratorUnavailable) {
		logger.Warn().Err(c.err).Str("channel", cc.ChannelID).Msg("text generation failed, using fallback answer")
	}
	res.Answer = fallbackAnswer(question, cc, a.classifier, descriptionLimit)
	res.Fallback = true
	return res
}

// complete calls the generator bounded by the configured timeout. The call runs in its own
// goroutine so a generator that ignores ctx cannot hold the caller past the deadline.
func (a *Agent) complete(ctx context.Context, prompt string) completion {
	if a.gen == nil {
		return completion{err: core.ErrGeneratorUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: fmt.Errorf("text generator panic: %v", r)}
			}
		}()
		text, err := a.gen.Complete(ctx, prompt, a.maxTokens)
		done <- completion{text: text, err: err}
	}()

	select {
	case c := <-done:
		if c.err != nil {
			return c
		}
		if c.text = strings.TrimSpace(c.text); c.text == "" {
			return completion{err: ErrEmptyCompletion}
		}
		return c
	case <-ctx.Done():
		return completion{err: fmt.Errorf("text generation: %w", ctx.Err())}
	}
}

func previews(messages []core.Message) []string {
	if len(messages) > contextPreviews {
		messages = messages[len(messages)-contextPreviews:]
	}
	res := make([]string, 0, len(messages))
	for _, m := range messages {
		res = append(res, conv.Truncate(m.Content, previewLength))
	}
	return res
}
