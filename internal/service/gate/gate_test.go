package gate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/buddybot/internal/core"
)

func TestEvaluate(t *testing.T) {
	longTechnical := "yesterday we spent the entire afternoon pairing on the new deploy pipeline and it finally went through to production"
	longChatter := "yesterday we spent the entire afternoon walking around the old town and then had a lovely dinner by the river together"

	tests := []struct {
		name      string
		content   string
		mentioned bool
		want      Decision
	}{
		{name: "mention beats everything", content: "ok", mentioned: true, want: Decision{true, RuleMentioned}},
		{name: "too short", content: "  k ", want: Decision{false, RuleTooShort}},
		{name: "too short question mark", content: "?", want: Decision{false, RuleTooShort}},
		{name: "question mark", content: "ready?", want: Decision{true, RuleQuestion}},
		{name: "question word", content: "what is the plan", want: Decision{true, RuleQuestion}},
		{name: "question word with punctuation", content: "Where, exactly", want: Decision{true, RuleQuestion}},
		{name: "question word inside another word", content: "show me the logs", want: Decision{true, RuleQuestion}},
		{name: "whatever counts", content: "whatever works", want: Decision{true, RuleQuestion}},
		{name: "somewhat counts", content: "somewhat later then", want: Decision{true, RuleQuestion}},
		{name: "help marker", content: "I'm stuck on the migration", want: Decision{true, RuleHelp}},
		{name: "not working", content: "login not working", want: Decision{true, RuleHelp}},
		{name: "status marker", content: "quick update from the team", want: Decision{true, RuleStatus}},
		{name: "task marker", content: "deadline is friday", want: Decision{true, RuleTask}},
		{name: "question wins over task", content: "what is the deadline", want: Decision{true, RuleQuestion}},
		{name: "greeting", content: "hey", want: Decision{false, RuleSmallTalk}},
		{name: "thanks", content: "Thank you!", want: Decision{false, RuleSmallTalk}},
		{name: "mixed short message", content: "hey folks", want: Decision{false, RuleNoCriteria}},
		{name: "long technical", content: longTechnical, want: Decision{true, RuleTechnical}},
		{name: "long chatter", content: longChatter, want: Decision{false, RuleNoCriteria}},
		{name: "short technical", content: "merged the branch", want: Decision{false, RuleNoCriteria}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.content, tt.mentioned))
		})
	}

	assert.Greater(t, len(longTechnical), 100)
	assert.Greater(t, len(longChatter), 100)
}

func TestEvaluate_Deterministic(t *testing.T) {
	content := strings.Repeat("status ", 5)
	first := Evaluate(content, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(content, false))
	}
}

func TestGate_ShouldRespond(t *testing.T) {
	g := New()
	msg := core.Message{Content: "how do I run the tests", ChannelID: "c1", MessageID: "1", Timestamp: time.Now()}

	assert.True(t, g.ShouldRespond(context.Background(), msg, false))

	msg.Content = "lol"
	assert.False(t, g.ShouldRespond(context.Background(), msg, false))
	assert.True(t, g.ShouldRespond(context.Background(), msg, true))
}
