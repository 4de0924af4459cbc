package chats

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavkapoor/campuschat/internal/api"
)

type fakeFetcher struct {
	messages map[int][]api.ChatMessage
	failing  map[int]bool
	calls    atomic.Int32
	delay    map[int]time.Duration
}

func (f *fakeFetcher) ChatMessages(_ context.Context, chatID int) ([]api.ChatMessage, error) {
	f.calls.Add(1)
	if d, ok := f.delay[chatID]; ok {
		time.Sleep(d)
	}
	if f.failing[chatID] {
		return nil, fmt.Errorf("backend error 500: boom")
	}
	return f.messages[chatID], nil
}

func strPtr(s string) *string { return &s }

func userMsg(text string) api.ChatMessage {
	return api.ChatMessage{Sender: api.SenderUser, Message: text}
}

func botMsg(text string) api.ChatMessage {
	return api.ChatMessage{Sender: api.SenderBot, Message: text}
}

func TestSummarizeBuildsPreviewsInInputOrder(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: map[int][]api.ChatMessage{
			1: {userMsg("What is a B-tree?"), botMsg("A balanced tree."), userMsg("And a B+ tree?")},
			2: {userMsg("Define entropy")},
		},
		// Chat 1 finishes last; output order must still follow input.
		delay: map[int]time.Duration{1: 30 * time.Millisecond},
	}

	agg := NewAggregator(fetcher, nil, 4)
	summary := agg.Summarize(context.Background(), []api.Chat{{ID: 1}, {ID: 2}})

	require.Len(t, summary.Previews, 2)
	assert.Equal(t, 1, summary.Previews[0].Chat.ID)
	assert.Equal(t, "What is a B-tree?", summary.Previews[0].Question)
	assert.Equal(t, "A balanced tree.", summary.Previews[0].Answer)
	assert.Equal(t, 2, summary.Previews[0].QuestionCount)

	assert.Equal(t, 2, summary.Previews[1].Chat.ID)
	assert.Equal(t, "Define entropy", summary.Previews[1].Question)
	assert.Equal(t, PlaceholderAnswer, summary.Previews[1].Answer)

	assert.Equal(t, 3, summary.TotalQuestions)
}

func TestSummarizeDegradesFailedChatWithoutAborting(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: map[int][]api.ChatMessage{
			2: {userMsg("q1"), botMsg("a1"), userMsg("q2")},
			3: {userMsg("q3")},
		},
		failing: map[int]bool{1: true},
	}

	agg := NewAggregator(fetcher, nil, 2)
	chatA := api.Chat{ID: 1, Title: strPtr("Thermodynamics intro")}
	summary := agg.Summarize(context.Background(), []api.Chat{chatA, {ID: 2}, {ID: 3}})

	require.Len(t, summary.Previews, 3)
	assert.True(t, summary.Previews[0].FetchFailed)
	assert.Equal(t, "Thermodynamics intro", summary.Previews[0].Question)
	assert.Equal(t, PlaceholderAnswer, summary.Previews[0].Answer)
	assert.Equal(t, 0, summary.Previews[0].QuestionCount)

	assert.False(t, summary.Previews[1].FetchFailed)
	assert.False(t, summary.Previews[2].FetchFailed)
	assert.Equal(t, 3, summary.TotalQuestions)
}

func TestSummarizeFallbacks(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: map[int][]api.ChatMessage{
			1: {},                      // no messages, no title
			2: {},                      // no messages, stored title
			3: {botMsg("stray reply")}, // bot only
		},
	}

	agg := NewAggregator(fetcher, nil, 4)
	summary := agg.Summarize(context.Background(), []api.Chat{
		{ID: 1},
		{ID: 2, Title: strPtr("Signals revision")},
		{ID: 3},
	})

	assert.Equal(t, PlaceholderQuestion, summary.Previews[0].Question)
	assert.Equal(t, PlaceholderAnswer, summary.Previews[0].Answer)
	assert.Equal(t, "Signals revision", summary.Previews[1].Question)
	assert.Equal(t, PlaceholderQuestion, summary.Previews[2].Question)
	assert.Equal(t, "stray reply", summary.Previews[2].Answer)
	assert.Equal(t, 0, summary.TotalQuestions)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: map[int][]api.ChatMessage{
			1: {userMsg("a"), botMsg("b")},
			2: {userMsg("c"), userMsg("d")},
		},
	}

	agg := NewAggregator(fetcher, nil, 4)
	input := []api.Chat{{ID: 1}, {ID: 2}}

	first := agg.Summarize(context.Background(), input)
	second := agg.Summarize(context.Background(), input)
	assert.Equal(t, first, second)
}

func TestSummarizeEmptyInput(t *testing.T) {
	fetcher := &fakeFetcher{}
	agg := NewAggregator(fetcher, nil, 4)

	summary := agg.Summarize(context.Background(), nil)
	assert.Empty(t, summary.Previews)
	assert.Zero(t, summary.TotalQuestions)
	assert.Zero(t, fetcher.calls.Load())
}
