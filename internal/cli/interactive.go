package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/arnavkapoor/campuschat/internal/api"
	"github.com/arnavkapoor/campuschat/internal/chats"
	"github.com/arnavkapoor/campuschat/internal/transcript"
)

// ChatSession drives one interactive tutoring conversation
type ChatSession struct {
	app     *App
	chatID  int
	title   string
	reader  *bufio.Reader
	records *transcript.Store
}

// chatSummaries fans out over the chat list and builds previews. Fetch
// failures degrade individual rows, so the error is swallowed here.
func (a *App) chatSummaries(ctx context.Context, chatList []api.Chat) chats.Summary {
	agg := chats.NewAggregator(a.client, a.logger, a.cfg.FetchConcurrency)
	return agg.Summarize(ctx, chatList)
}

// runChatCommand starts or resumes an interactive chat. subjectID and
// resumeID come from flags; zero means "ask".
func runChatCommand(app *App, subjectID, resumeID int) error {
	if err := app.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	session := &ChatSession{
		app:    app,
		reader: bufio.NewReader(os.Stdin),
	}

	// Transcripts are best-effort; a broken local db never blocks a chat.
	if records, err := transcript.Open(app.cfg.TranscriptFile()); err != nil {
		app.logger.Warn("opening transcript store", zap.Error(err))
	} else {
		session.records = records
		defer records.Close()
	}

	switch {
	case resumeID != 0:
		if err := session.resume(ctx, resumeID); err != nil {
			return err
		}
	default:
		if err := session.begin(ctx, subjectID); err != nil {
			return err
		}
	}

	// Chats can run for a long time; pick up config.json edits (a new
	// backend URL, a changed timeout) without restarting the session.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	app.watchConfig(watchCtx)

	return session.runLoop()
}

// begin starts a fresh chat, prompting for a subject when none was given
func (s *ChatSession) begin(ctx context.Context, subjectID int) error {
	if subjectID == 0 {
		subject, err := PromptSelectSubject(ctx, s.app.client)
		if err != nil {
			return err
		}
		subjectID = subject.ID
		s.title = subject.Name
	}

	chat, err := s.app.client.StartChat(ctx, subjectID, nil)
	if err != nil {
		return err
	}

	s.chatID = chat.ID
	if chat.Title != nil {
		s.title = *chat.Title
	}
	return nil
}

// resume reopens an existing chat and replays its history
func (s *ChatSession) resume(ctx context.Context, resumeID int) error {
	chatList, err := s.app.client.Chats(ctx)
	if err != nil {
		return err
	}

	var chat *api.Chat
	if resumeID > 0 {
		for i := range chatList {
			if chatList[i].ID == resumeID {
				chat = &chatList[i]
				break
			}
		}
		if chat == nil {
			return fmt.Errorf("no chat with id %d", resumeID)
		}
	} else {
		// --resume without an id: let the user pick from previews.
		summary := s.app.chatSummaries(ctx, chatList)
		pickedID, err := PromptSelectChat(summary.Previews)
		if err != nil {
			return err
		}
		for i := range chatList {
			if chatList[i].ID == pickedID {
				chat = &chatList[i]
				break
			}
		}
		if chat == nil {
			return fmt.Errorf("no chat with id %d", pickedID)
		}
	}

	s.chatID = chat.ID
	if chat.Title != nil {
		s.title = *chat.Title
	}

	messages, err := s.app.client.ChatMessages(ctx, s.chatID)
	if err != nil {
		return err
	}
	DisplayChatHistory(messages)
	return nil
}

// runLoop is the question/answer REPL
func (s *ChatSession) runLoop() error {
	s.showWelcome()

	for {
		fmt.Print("You> ")

		input, err := s.reader.ReadString('\n')
		if err != nil {
			// Ctrl-D ends the chat like "exit" does.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Println("Happy studying!")
			return nil
		case "help", "?":
			s.showHelp()
			continue
		case "clear", "cls":
			fmt.Print("\033[2J\033[H")
			continue
		}

		if err := s.ask(input); err != nil {
			return err
		}
	}
}

// ask sends one question and renders the tutor's answer
func (s *ChatSession) ask(question string) error {
	ctx, cancel := s.app.requestContext()
	defer cancel()

	fmt.Println(mutedStyle.Render("thinking..."))

	reply, err := s.app.client.SendMessage(ctx, s.chatID, question)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			// A failed question should not kill the whole session.
			fmt.Println(errorStyle.Render(apiErr.Error()))
			return nil
		}
		return err
	}

	if reply.ChatTitle != nil && *reply.ChatTitle != s.title {
		s.title = *reply.ChatTitle
		s.app.logger.Debug("chat titled", zap.Int("chat_id", s.chatID), zap.String("title", s.title))
	}

	s.record(api.SenderUser, question)
	s.record(api.SenderBot, reply.Answer)

	DisplayAnswer(reply)
	return nil
}

func (s *ChatSession) record(sender, content string) {
	if s.records == nil {
		return
	}
	if err := s.records.Record(context.Background(), s.chatID, s.title, sender, content); err != nil {
		s.app.logger.Warn("recording transcript", zap.Error(err))
	}
}

func (s *ChatSession) showWelcome() {
	heading := "Tutoring chat"
	if s.title != "" {
		heading += ": " + s.title
	}
	fmt.Println(titleStyle.Render(heading))
	fmt.Println(mutedStyle.Render("Ask anything about the subject. Type 'exit' to leave, 'help' for commands."))
	fmt.Println()
}

func (s *ChatSession) showHelp() {
	fmt.Println("Commands:")
	fmt.Println("  help   - Show this help")
	fmt.Println("  clear  - Clear the screen")
	fmt.Println("  exit   - Leave the chat")
	fmt.Println("Anything else is sent to the tutor as a question.")
}
