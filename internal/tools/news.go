package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/resilience"
	"github.com/clearleaf/greenwash-cli/pkg/newsfeed"
	"github.com/clearleaf/greenwash-cli/pkg/oracle"
)

const newsValidationPrompt = `You are validating environmental claims made by %s against recent news coverage.

Recent articles:
%s

Claims to validate:
%s

For each numbered claim, give a verdict in one short paragraph starting with one of:
- Supported: the coverage corroborates the claim
- Contradicted: the coverage disputes the claim
- Mentioned: the topic appears but the coverage neither confirms nor disputes it
- Not Mentioned: the coverage does not address the claim

Keep the claims in order. Separate verdicts with a blank line.`

// NewsTool validates claims against recent news coverage of the subject.
type NewsTool struct {
	feed        newsfeed.Client
	oracle      oracle.Client
	maxArticles int
}

// NewNewsTool creates the news validation tool.
func NewNewsTool(feed newsfeed.Client, o oracle.Client, maxArticles int) *NewsTool {
	if maxArticles <= 0 {
		maxArticles = 5
	}
	return &NewsTool{feed: feed, oracle: o, maxArticles: maxArticles}
}

// Name returns the tool identifier used in tool plans.
func (t *NewsTool) Name() model.Tool {
	return model.ToolNews
}

// Validate fetches coverage for the subject and asks the oracle for
// per-claim verdicts. No coverage at all is a real verdict, not an error.
func (t *NewsTool) Validate(ctx context.Context, subject, claimBatch string) (string, error) {
	articles, err := t.feed.Search(ctx, subject, t.maxArticles)
	if err != nil {
		return "", resilience.WithKind(resilience.KindToolUnavailable,
			eris.Wrap(err, "news validation"))
	}
	if len(articles) == 0 {
		zap.L().Info("no news coverage found", zap.String("subject", subject))
		return fmt.Sprintf("No relevant news articles found for %s. Manual verification recommended.", subject), nil
	}

	prompt := fmt.Sprintf(newsValidationPrompt, subject, formatArticles(articles), claimBatch)
	verdict, err := t.oracle.Complete(ctx, prompt)
	if err != nil {
		return "", eris.Wrap(err, "news validation")
	}
	return verdict, nil
}

func formatArticles(articles []newsfeed.Article) string {
	var b strings.Builder
	for i, a := range articles {
		text := a.Text
		if len(text) > 1500 {
			text = text[:1500]
		}
		fmt.Fprintf(&b, "Article %d: %s (%s)\n%s\n\n", i+1, a.Title, a.URL, text)
	}
	return strings.TrimSpace(b.String())
}
