package gate

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/conv"
	"github.com/sandevgo/buddybot/pkg/log"
)

const (
	minLength        = 3
	longMessage      = 100
	maxSmallTalkWord = 3
)

// Rule names the gate rule that decided.
type Rule string

const (
	RuleMentioned  Rule = "mentioned"
	RuleTooShort   Rule = "too_short"
	RuleQuestion   Rule = "question"
	RuleHelp       Rule = "help"
	RuleStatus     Rule = "status"
	RuleTask       Rule = "task"
	RuleSmallTalk  Rule = "small_talk"
	RuleTechnical  Rule = "technical"
	RuleNoCriteria Rule = "default"
)

var (
	questionWords = []string{"what", "how", "why", "when", "where", "who", "which"}

	helpMarkers = []string{
		"help", "stuck", "problem", "issue", "error", "broken", "not working", "failing", "bug", "debug",
	}

	statusMarkers = []string{
		"status", "progress", "update", "where are we", "current state",
	}

	taskMarkers = []string{
		"todo", "task", "action", "need to", "should we", "deadline", "priority", "urgent", "asap",
	}

	technicalMarkers = []string{
		"code", "api", "database", "server", "deploy", "bug", "feature", "pull request",
		"commit", "branch", "merge", "test", "production", "staging", "exception",
	}

	smallTalk = map[string]struct{}{
		"hi": {}, "hello": {}, "hey": {}, "yo": {}, "morning": {}, "afternoon": {}, "evening": {},
		"night": {}, "gm": {}, "thanks": {}, "thank": {}, "you": {}, "thx": {}, "ty": {},
		"ok": {}, "okay": {}, "k": {}, "yes": {}, "yep": {}, "yeah": {}, "no": {}, "nope": {},
		"sure": {}, "lol": {}, "haha": {}, "cool": {}, "nice": {}, "good": {}, "great": {},
		"bye": {}, "cheers": {}, "np": {},
	}
)

type Decision struct {
	Respond bool
	Rule    Rule
}

// Gate decides whether a message deserves an unsolicited reply. It is pure and safe for concurrent use.
type Gate struct{}

func New() *Gate {
	return &Gate{}
}

// ShouldRespond evaluates msg and logs the rule that fired at debug level.
func (g *Gate) ShouldRespond(ctx context.Context, msg core.Message, mentioned bool) bool {
	d := Evaluate(msg.Content, mentioned)
	log.FromCtx(ctx).Debug().
		Str("channel", msg.ChannelID).
		Str("rule", string(d.Rule)).
		Bool("respond", d.Respond).
		Str("preview", conv.Truncate(msg.Content, 50)).
		Msg("response gate")
	return d.Respond
}

// Evaluate applies the rules in order, the first match wins.
func Evaluate(content string, mentioned bool) Decision {
	if mentioned {
		return Decision{Respond: true, Rule: RuleMentioned}
	}

	text := strings.ToLower(strings.TrimSpace(content))
	length := utf8.RuneCountInString(text)
	if length < minLength {
		return Decision{Respond: false, Rule: RuleTooShort}
	}

	words := strings.Fields(text)

	switch {
	case strings.Contains(text, "?") || containsAny(text, questionWords):
		return Decision{Respond: true, Rule: RuleQuestion}
	case containsAny(text, helpMarkers):
		return Decision{Respond: true, Rule: RuleHelp}
	case containsAny(text, statusMarkers):
		return Decision{Respond: true, Rule: RuleStatus}
	case containsAny(text, taskMarkers):
		return Decision{Respond: true, Rule: RuleTask}
	case isSmallTalk(words):
		return Decision{Respond: false, Rule: RuleSmallTalk}
	case length > longMessage && containsAny(text, technicalMarkers):
		return Decision{Respond: true, Rule: RuleTechnical}
	}
	return Decision{Respond: false, Rule: RuleNoCriteria}
}

func isSmallTalk(words []string) bool {
	if len(words) == 0 || len(words) > maxSmallTalkWord {
		return false
	}
	for _, w := range words {
		if _, ok := smallTalk[trimPunct(w)]; !ok {
			return false
		}
	}
	return true
}

func trimPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
