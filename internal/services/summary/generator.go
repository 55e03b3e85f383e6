// Package summary turns a ticker's posts into markdown bullet points via an LLM.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// Prompt is the system instruction template; {ticker} is substituted.
const Prompt = `- Provide a summary of the input text in bullet point format.
- Keep each bullet point SHORT.
- Focus your summary on this ticker {ticker}.
- Format with simple Markdown.
- The summary should be in the order of the input text.

Example Response:
➤ TSLA reported strong revenue growth in Q4.
➤ Margins improved due to cost-cutting measures.
➤ New product launch expected to drive demand.
➤ Stock reacted positively, up 3% post-earnings.
➤ Analysts remain bullish with raised price targets.`

// Placeholder texts returned instead of errors.
const (
	errorText  = "Error generating summary."
	failedText = "Failed to generate summary."
)

// Generator implements interfaces.SummaryService.
type Generator struct {
	completion interfaces.CompletionClient
	logger     *common.Logger
}

var _ interfaces.SummaryService = (*Generator)(nil)

// NewGenerator creates a generator. completion may be nil when no LLM key is configured.
func NewGenerator(completion interfaces.CompletionClient, logger *common.Logger) *Generator {
	return &Generator{completion: completion, logger: logger}
}

// Ready reports whether a completion provider is configured.
func (g *Generator) Ready() bool {
	return g.completion != nil
}

// NoPostsText is the placeholder for a ticker with nothing to summarize.
func NoPostsText(ticker string) string {
	return fmt.Sprintf("No posts available to summarize for %s.", ticker)
}

// SystemInstruction renders Prompt for ticker.
func SystemInstruction(ticker string) string {
	return strings.ReplaceAll(Prompt, "{ticker}", ticker)
}

// Summarize never fails: every error path yields a placeholder string.
func (g *Generator) Summarize(ctx context.Context, posts []models.PostRecord, ticker string) string {
	texts := make([]string, 0, len(posts))
	for _, p := range posts {
		if t := strings.TrimSpace(p.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return NoPostsText(ticker)
	}
	if g.completion == nil {
		g.logger.Warn().Str("ticker", ticker).Msg("Summary requested without a completion provider")
		return errorText
	}

	out, err := g.completion.Complete(ctx, SystemInstruction(ticker), strings.Join(texts, " "))
	if err != nil {
		g.logger.Error().Str("ticker", ticker).Err(err).Msg("Summary generation failed")
		return errorText
	}
	if strings.TrimSpace(out) == "" {
		return failedText
	}

	g.logger.Debug().Str("ticker", ticker).Int("posts", len(texts)).Msg("Summary generated")
	return out
}
