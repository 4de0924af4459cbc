// Package chats builds the chat-history view: per-chat question/answer
// previews and the total number of questions a student has asked.
package chats

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arnavkapoor/campuschat/internal/api"
)

// Placeholders used when a chat has no usable messages.
const (
	PlaceholderQuestion = "New chat"
	PlaceholderAnswer   = "No answer yet"
)

// Preview is one row of the chat history list.
type Preview struct {
	Chat api.Chat

	// Question is the first USER message, falling back to the stored
	// title and then to PlaceholderQuestion.
	Question string

	// Answer is the first BOT message, or PlaceholderAnswer.
	Answer string

	// QuestionCount is the number of USER messages in the chat.
	QuestionCount int

	// FetchFailed marks a chat whose messages could not be loaded. The
	// preview then carries placeholders and a zero count.
	FetchFailed bool
}

// Summary is the aggregate over all of a student's chats.
type Summary struct {
	// Previews holds one entry per input chat, in input order.
	Previews []Preview

	// TotalQuestions sums QuestionCount over every chat that loaded.
	TotalQuestions int
}

// MessageFetcher is the slice of the API client the aggregator needs.
type MessageFetcher interface {
	ChatMessages(ctx context.Context, chatID int) ([]api.ChatMessage, error)
}

// Aggregator fans out one message fetch per chat and merges the results
// deterministically.
type Aggregator struct {
	fetcher     MessageFetcher
	logger      *zap.Logger
	concurrency int
}

func NewAggregator(fetcher MessageFetcher, logger *zap.Logger, concurrency int) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Aggregator{fetcher: fetcher, logger: logger, concurrency: concurrency}
}

// Summarize fetches every chat's messages concurrently and reduces them
// in input order, so the output is the same regardless of completion
// order. A failed fetch degrades that one chat to placeholders and is
// logged; it never aborts the rest.
func (a *Aggregator) Summarize(ctx context.Context, chatList []api.Chat) Summary {
	previews := make([]Preview, len(chatList))

	g, fetchCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, chat := range chatList {
		g.Go(func() error {
			messages, err := a.fetcher.ChatMessages(fetchCtx, chat.ID)
			if err != nil {
				a.logger.Warn("loading chat messages for preview",
					zap.Int("chat_id", chat.ID),
					zap.Error(err),
				)
				previews[i] = degradedPreview(chat)
				return nil
			}
			previews[i] = buildPreview(chat, messages)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, p := range previews {
		total += p.QuestionCount
	}
	return Summary{Previews: previews, TotalQuestions: total}
}

func buildPreview(chat api.Chat, messages []api.ChatMessage) Preview {
	p := Preview{
		Chat:     chat,
		Question: fallbackTitle(chat),
		Answer:   PlaceholderAnswer,
	}

	firstQuestion := false
	firstAnswer := false
	for _, msg := range messages {
		switch msg.Sender {
		case api.SenderUser:
			if !firstQuestion {
				p.Question = msg.Message
				firstQuestion = true
			}
			p.QuestionCount++
		case api.SenderBot:
			if !firstAnswer {
				p.Answer = msg.Message
				firstAnswer = true
			}
		}
	}
	return p
}

func degradedPreview(chat api.Chat) Preview {
	return Preview{
		Chat:        chat,
		Question:    fallbackTitle(chat),
		Answer:      PlaceholderAnswer,
		FetchFailed: true,
	}
}

func fallbackTitle(chat api.Chat) string {
	if chat.Title != nil && *chat.Title != "" {
		return *chat.Title
	}
	return PlaceholderQuestion
}
