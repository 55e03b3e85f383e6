package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

type mockCompletion struct {
	out    string
	err    error
	calls  int
	system string
	input  string
}

func (m *mockCompletion) Complete(_ context.Context, system, input string) (string, error) {
	m.calls++
	m.system, m.input = system, input
	return m.out, m.err
}

func TestSummarize_EmptyPostsSkipsProvider(t *testing.T) {
	mc := &mockCompletion{out: "unused"}
	g := NewGenerator(mc, common.NewSilentLogger())

	got := g.Summarize(context.Background(), nil, "TSLA")
	assert.Equal(t, "No posts available to summarize for TSLA.", got)
	assert.Zero(t, mc.calls)

	got = g.Summarize(context.Background(), []models.PostRecord{{Text: "  "}}, "TSLA")
	assert.Equal(t, NoPostsText("TSLA"), got)
	assert.Zero(t, mc.calls)
}

func TestSummarize_JoinsInOrderWithTickerPrompt(t *testing.T) {
	mc := &mockCompletion{out: "➤ bullish"}
	g := NewGenerator(mc, common.NewSilentLogger())

	posts := []models.PostRecord{{Hours: 5, Text: "first"}, {Hours: 1, Text: "second"}}
	got := g.Summarize(context.Background(), posts, "NVDA")

	require.Equal(t, 1, mc.calls)
	assert.Equal(t, "➤ bullish", got)
	assert.Equal(t, "first second", mc.input)
	assert.Contains(t, mc.system, "Focus your summary on this ticker NVDA.")
	assert.NotContains(t, mc.system, "{ticker}")
}

func TestSummarize_ProviderErrorPlaceholder(t *testing.T) {
	g := NewGenerator(&mockCompletion{err: errors.New("quota")}, common.NewSilentLogger())

	got := g.Summarize(context.Background(), []models.PostRecord{{Text: "x"}}, "TSLA")
	assert.Equal(t, "Error generating summary.", got)
}

func TestSummarize_EmptyCompletionPlaceholder(t *testing.T) {
	g := NewGenerator(&mockCompletion{out: " \n"}, common.NewSilentLogger())

	got := g.Summarize(context.Background(), []models.PostRecord{{Text: "x"}}, "TSLA")
	assert.Equal(t, "Failed to generate summary.", got)
}

func TestReady(t *testing.T) {
	assert.False(t, NewGenerator(nil, common.NewSilentLogger()).Ready())
	assert.True(t, NewGenerator(&mockCompletion{}, common.NewSilentLogger()).Ready())

	got := NewGenerator(nil, common.NewSilentLogger()).Summarize(context.Background(), []models.PostRecord{{Text: "x"}}, "TSLA")
	assert.Equal(t, "Error generating summary.", got)
}
