package classifier

import (
	"regexp"
	"strings"

	"github.com/sandevgo/buddybot/internal/core"
)

// actionLexicon marks a message as carrying an action item. Plain substring match on lower-cased text.
var actionLexicon = []string{
	"need to",
	"should",
	"must",
	"todo",
	"task",
	"action",
	"fix",
	"implement",
	"review",
	"deadline",
	"by tomorrow",
	"by friday",
	"urgent",
	"asap",
	"please",
	"can you",
	"could you",
	"remember to",
}

var urgencyMarkers = []string{"urgent", "asap", "immediately"}

// mentionRe matches @handles unless they follow a word character or an address character,
// so "(@alice)" and "cc:@bob" count while e-mail addresses are skipped.
var mentionRe = regexp.MustCompile(`(?:^|[^\w.+-])@(\w+)`)

// Classifier is stateless and safe for concurrent use.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Classify never fails. Empty text yields the zero classification with normal urgency.
func (c *Classifier) Classify(text string) core.Classification {
	lower := strings.ToLower(text)

	return core.Classification{
		HasActionItem: containsAny(lower, actionLexicon),
		Urgency:       urgencyOf(lower),
		Mentions:      Mentions(text),
	}
}

// Mentions returns every @handle in order of appearance without the leading @.
// Repeated handles are kept as found.
func Mentions(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	res := make([]string, 0, len(matches))
	for _, m := range matches {
		res = append(res, m[1])
	}
	return res
}

func urgencyOf(lower string) core.Urgency {
	if containsAny(lower, urgencyMarkers) {
		return core.UrgencyHigh
	}
	return core.UrgencyNormal
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
