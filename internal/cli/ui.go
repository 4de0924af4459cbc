package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/arnavkapoor/campuschat/internal/api"
	"github.com/arnavkapoor/campuschat/internal/chats"
	"github.com/arnavkapoor/campuschat/internal/profile"
	"github.com/arnavkapoor/campuschat/internal/session"
	"github.com/arnavkapoor/campuschat/internal/transcript"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1).
		MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2).
		Width(80)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	valueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E5E7EB")).
		Bold(true)

	questionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3B82F6")).
		Bold(true)

	answerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	sourceStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
)

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner() {
	banner := `
 ██████╗ █████╗ ███╗   ███╗██████╗ ██╗   ██╗███████╗
██╔════╝██╔══██╗████╗ ████║██╔══██╗██║   ██║██╔════╝
██║     ███████║██╔████╔██║██████╔╝██║   ██║███████╗
██║     ██╔══██║██║╚██╔╝██║██╔═══╝ ██║   ██║╚════██║
╚██████╗██║  ██║██║ ╚═╝ ██║██║     ╚██████╔╝███████║
 ╚═════╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝      ╚═════╝ ╚══════╝
                      c h a t
`

	welcomeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Align(lipgloss.Center).
		Width(80)

	taglineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3B82F6")).
		Italic(true).
		Align(lipgloss.Center).
		Width(80).
		MarginBottom(1)

	fmt.Print(welcomeStyle.Render(banner))
	fmt.Println()
	fmt.Print(taglineStyle.Render("Your university's AI tutor, in the terminal"))
	fmt.Println()
}

// DisplaySessionExpired prints the login-boundary notice. The API client
// fires this exactly once when the backend rejects the stored token.
func DisplaySessionExpired() {
	fmt.Println()
	fmt.Println(errorStyle.Render("Your session has expired and has been cleared."))
	fmt.Println("Run 'campuschat login' to sign in again.")
}

// DisplayLoginSuccess greets the freshly logged-in user
func DisplayLoginSuccess(user session.User) {
	fmt.Printf("Welcome back, %s!\n", valueStyle.Render(user.Name))
	fmt.Printf("Logged in as %s (%s)\n", user.Email, user.Role)
}

// DisplayProfile renders the profile view
func DisplayProfile(overview *profile.Overview) {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:      "), valueStyle.Render(overview.Profile.Name)))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Email:     "), valueStyle.Render(overview.Profile.Email)))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("University:"), valueStyle.Render(orUnknown(overview.UniversityName))))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Branch:    "), valueStyle.Render(orUnknown(overview.BranchName))))

	if overview.Profile.BatchYear != nil {
		content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Batch:     "), valueStyle.Render(fmt.Sprintf("%d", *overview.Profile.BatchYear))))
	}

	if overview.CurrentSemester != nil {
		content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Semester:  "), valueStyle.Render(overview.CurrentSemester.Name)))
	} else {
		content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Semester:  "), mutedStyle.Render("unknown")))
	}

	if len(overview.Subjects) > 0 {
		content.WriteString("\n")
		content.WriteString(labelStyle.Render("This semester's subjects:"))
		content.WriteString("\n")
		for _, subject := range overview.Subjects {
			content.WriteString(fmt.Sprintf("  • %s\n", subject.Name))
		}
	}

	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("%s %s chats, %s questions asked",
		labelStyle.Render("Activity:  "),
		valueStyle.Render(fmt.Sprintf("%d", overview.TotalChats)),
		valueStyle.Render(fmt.Sprintf("%d", overview.TotalQuestions)),
	))

	fmt.Println(titleStyle.Render("Student Profile"))
	fmt.Println(panelStyle.Render(content.String()))
}

// DisplayChatList renders the chat history view
func DisplayChatList(summary chats.Summary) {
	fmt.Println(titleStyle.Render("Chat History"))

	if len(summary.Previews) == 0 {
		fmt.Println(mutedStyle.Render("No chats yet. Start one with 'campuschat chat'."))
		return
	}

	for _, preview := range summary.Previews {
		header := fmt.Sprintf("#%d", preview.Chat.ID)
		if preview.Chat.SubjectName != nil {
			header += "  " + *preview.Chat.SubjectName
		}
		header += "  " + mutedStyle.Render(relativeTime(preview.Chat.CreatedAt, time.Now()))
		fmt.Println(valueStyle.Render(header))

		if preview.FetchFailed {
			fmt.Printf("   %s\n", mutedStyle.Render("(messages unavailable)"))
		}
		fmt.Printf("   %s %s\n", questionStyle.Render("Q:"), snippet(preview.Question, 70))
		fmt.Printf("   %s %s\n", answerStyle.Render("A:"), snippet(preview.Answer, 70))
		fmt.Println()
	}

	fmt.Printf("%s %d chats, %d questions asked\n",
		labelStyle.Render("Total:"), len(summary.Previews), summary.TotalQuestions)
}

// DisplayChatHistory replays a chat's messages before resuming it
func DisplayChatHistory(messages []api.ChatMessage) {
	for _, msg := range messages {
		switch msg.Sender {
		case api.SenderUser:
			fmt.Printf("%s %s\n", questionStyle.Render("You:"), msg.Message)
		case api.SenderBot:
			fmt.Printf("%s %s\n", answerStyle.Render("Tutor:"), msg.Message)
			displaySources(msg.Sources)
		}
	}
}

// DisplayTranscript replays a locally recorded conversation
func DisplayTranscript(entries []transcript.Entry) {
	for _, e := range entries {
		stamp := mutedStyle.Render(e.RecordedAt.Format("15:04"))
		switch e.Sender {
		case api.SenderUser:
			fmt.Printf("%s %s %s\n", stamp, questionStyle.Render("You:"), e.Content)
		case api.SenderBot:
			fmt.Printf("%s %s %s\n", stamp, answerStyle.Render("Tutor:"), e.Content)
		}
	}
}

// DisplayAnswer renders the tutor's reply with its material sources
func DisplayAnswer(reply *api.ChatReply) {
	fmt.Printf("\n%s %s\n", answerStyle.Render("Tutor:"), reply.Answer)
	displaySources(reply.Sources)
	fmt.Println()
}

func displaySources(sources []api.Source) {
	for _, source := range sources {
		ref := source.Title
		if source.Page != nil {
			ref = fmt.Sprintf("%s, p.%d", ref, *source.Page)
		}
		fmt.Printf("   %s\n", sourceStyle.Render("↳ "+ref))
	}
}

// DisplayBranchHeader prints a branch heading in the subjects view
func DisplayBranchHeader(branch api.Branch) {
	fmt.Println(titleStyle.Render(branch.Name))
}

// DisplaySemester prints one semester and its subjects
func DisplaySemester(semester api.Semester, subjects []api.Subject, failed bool) {
	fmt.Println(valueStyle.Render(semester.Name))
	if failed {
		fmt.Printf("  %s\n", mutedStyle.Render("(subjects unavailable)"))
		return
	}
	if len(subjects) == 0 {
		fmt.Printf("  %s\n", mutedStyle.Render("(no subjects)"))
		return
	}
	for _, subject := range subjects {
		fmt.Printf("  • %s\n", subject.Name)
	}
}

// DisplaySectionError prints a degraded-section notice
func DisplaySectionError(msg string) {
	fmt.Printf("  %s\n", mutedStyle.Render("("+msg+")"))
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// snippet trims text to a single display line
func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}

// relativeTime renders "3d ago" style timestamps for the history list
func relativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
