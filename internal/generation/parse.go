package generation

import (
	"encoding/json"
	"strings"

	"github.com/Ketaiwk/10xcards/internal/domain"
)

// ParseCard decodes a provider reply into a validated card. Markdown code
// fences around the JSON are tolerated. Failures are ProviderValidation
// errors attributed to provider.
func ParseCard(provider, raw string) (domain.GeneratedCard, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return domain.GeneratedCard{}, NewProviderError(provider, domain.KindProviderValidation, "empty response", nil)
	}

	var card domain.GeneratedCard
	if err := json.Unmarshal([]byte(text), &card); err != nil {
		return domain.GeneratedCard{}, NewProviderError(provider, domain.KindProviderValidation,
			"response is not a flashcard JSON object", err)
	}
	card.Front = strings.TrimSpace(card.Front)
	card.Back = strings.TrimSpace(card.Back)

	if err := card.Validate(); err != nil {
		return domain.GeneratedCard{}, NewProviderError(provider, domain.KindProviderValidation,
			"invalid flashcard", err)
	}
	return card, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the info string, e.g. ```json
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
