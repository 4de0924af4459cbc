package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavkapoor/campuschat/config"
	"github.com/arnavkapoor/campuschat/internal/api"
	"github.com/arnavkapoor/campuschat/internal/cache"
	"github.com/arnavkapoor/campuschat/internal/logger"
	"github.com/arnavkapoor/campuschat/internal/profile"
	"github.com/arnavkapoor/campuschat/internal/session"
	"github.com/arnavkapoor/campuschat/internal/transcript"
)

// App wires the pieces every command needs: configuration, the session
// store, the API client and the logger.
type App struct {
	cfg    *config.Config
	cfgMgr *config.Manager
	logger *zap.Logger
	store  *session.Store
	client *api.Client
}

func newApp(cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("prepare state directory: %w", err)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	store := session.NewStore(cfg.SessionFile())
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	app := &App{cfg: cfg, logger: log, store: store}
	app.client = api.New(api.Options{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          time.Duration(cfg.RequestTimeoutSec) * time.Second,
		Sessions:         store,
		Catalog:          cache.NewCatalog(cfg.CatalogCacheDir(), time.Duration(cfg.CatalogCacheMin)*time.Minute, cfg.CatalogCacheMin > 0),
		Logger:           log,
		OnSessionExpired: DisplaySessionExpired,
	})
	return app, nil
}

// watchConfig applies config.json edits to the running client until ctx
// ends. Environment overrides keep their precedence over the file. Only
// long-lived commands bother watching; one-shot commands reread the
// file on their next run anyway.
func (a *App) watchConfig(ctx context.Context) {
	if a.cfgMgr == nil {
		return
	}
	err := a.cfgMgr.Watch(ctx, func(cfg config.Config) {
		cfg.ApplyEnvOverrides()
		a.client.Reconfigure(cfg.APIBaseURL, time.Duration(cfg.RequestTimeoutSec)*time.Second)
		a.logger.Info("configuration reloaded",
			zap.String("api_base_url", cfg.APIBaseURL),
			zap.Int("request_timeout_sec", cfg.RequestTimeoutSec))
	})
	if err != nil {
		a.logger.Warn("watching configuration", zap.Error(err))
	}
}

func (a *App) requireLogin() error {
	if a.store.User() == nil {
		return fmt.Errorf("you are not logged in — run 'campuschat login' first")
	}
	return nil
}

func (a *App) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	var app *App

	rootCmd := &cobra.Command{
		Use:   "campuschat",
		Short: "campuschat - AI study tutor in your terminal",
		Long: `campuschat is the terminal client for your university's AI tutor.
Ask questions about your subjects, browse your chat history, and manage
your student profile without leaving the shell.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// config.json under the state dir is the base; environment
			// and flags override it.
			mgr, err := config.NewManager(
				config.WithConfigDir(cfg.StateDir),
				config.WithInitialConfig(cfg),
			)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			*cfg = mgr.Get()
			cfg.ApplyEnvOverrides()

			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if baseURL, _ := cmd.Flags().GetString("api-url"); baseURL != "" {
				cfg.APIBaseURL = baseURL
			}
			app, err = newApp(cfg)
			if err != nil {
				return err
			}
			app.cfgMgr = mgr
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: show the chat history, the product's
			// home view.
			if err := app.requireLogin(); err != nil {
				DisplayWelcomeBanner()
				fmt.Println("Run 'campuschat login' to get started.")
				return nil
			}
			return runChatsCommand(app)
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd(&app))
	rootCmd.AddCommand(newSignupCmd(&app))
	rootCmd.AddCommand(newLogoutCmd(&app))
	rootCmd.AddCommand(newProfileCmd(&app))
	rootCmd.AddCommand(newChatsCmd(&app))
	rootCmd.AddCommand(newChatCmd(&app))
	rootCmd.AddCommand(newTranscriptsCmd(&app))
	rootCmd.AddCommand(newSubjectsCmd(&app))
	rootCmd.AddCommand(newAdminCmd(&app))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL override")

	return rootCmd
}

// newLoginCmd creates the login command
func newLoginCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with your student account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			return runLoginCommand(*app, email)
		},
	}
	cmd.Flags().String("email", "", "Account email (prompted when omitted)")
	return cmd
}

// newSignupCmd creates the account-creation command. Signup is gated by
// the deployment's master admin key.
func newSignupCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account (requires the master admin key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			masterKey, _ := cmd.Flags().GetString("master-key")
			return runSignupCommand(*app, name, email, masterKey)
		},
	}
	cmd.Flags().String("name", "", "Display name (prompted when omitted)")
	cmd.Flags().String("email", "", "Account email (prompted when omitted)")
	cmd.Flags().String("master-key", "", "Deployment master admin key")
	return cmd
}

func newLogoutCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*app).client.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// newProfileCmd creates the profile command and its subcommands
func newProfileCmd(app **App) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your student profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileCommand(*app)
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update your name and/or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			return runProfileUpdateCommand(*app, name, email)
		},
	}
	updateCmd.Flags().String("name", "", "New display name")
	updateCmd.Flags().String("email", "", "New email address")

	passwdCmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswordChangeCommand(*app)
		},
	}

	profileCmd.AddCommand(updateCmd)
	profileCmd.AddCommand(passwdCmd)
	return profileCmd
}

func newChatsCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List your chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatsCommand(*app)
		},
	}
}

// newChatCmd creates the interactive chat command
func newChatCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start or resume a tutoring chat",
		Long: `Open an interactive chat with the AI tutor. Without flags you pick a
subject from your current semester; --resume continues an existing chat.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID, _ := cmd.Flags().GetInt("subject-id")
			resumeID, _ := cmd.Flags().GetInt("resume")
			return runChatCommand(*app, subjectID, resumeID)
		},
	}
	cmd.Flags().Int("subject-id", 0, "Subject to chat about (skips the picker)")
	cmd.Flags().Int("resume", 0, "Chat ID to resume (bare --resume opens a picker)")
	cmd.Flags().Lookup("resume").NoOptDefVal = "-1"
	return cmd
}

// newTranscriptsCmd creates the local transcript reader. Transcripts
// are recorded on this machine during interactive chats and work
// without the backend.
func newTranscriptsCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts [chat-id]",
		Short: "Read locally recorded chat transcripts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID := 0
			if len(args) == 1 {
				id, err := parseID(args[0], "chat")
				if err != nil {
					return err
				}
				chatID = id
			}
			return runTranscriptsCommand(*app, chatID)
		},
	}
	return cmd
}

func newSubjectsCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "Browse your branch's semesters and subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubjectsCommand(*app)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Inspect and validate campuschat configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and backend reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update a configuration value",
		Long:  "Keys: api_base_url, request_timeout_sec, fetch_concurrency, catalog_cache_min, debug",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cfg, args[0], args[1])
		},
	})

	return configCmd
}

// setConfigValue updates one key in the persisted config file.
func setConfigValue(cfg *config.Config, key, value string) error {
	mgr, err := config.NewManager(
		config.WithConfigDir(cfg.StateDir),
		config.WithInitialConfig(cfg),
	)
	if err != nil {
		return err
	}

	updated := mgr.Get()
	switch key {
	case "api_base_url":
		updated.APIBaseURL = value
	case "request_timeout_sec":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q", value)
		}
		updated.RequestTimeoutSec = v
	case "fetch_concurrency":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid concurrency %q", value)
		}
		updated.FetchConcurrency = v
	case "catalog_cache_min":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid cache TTL %q", value)
		}
		updated.CatalogCacheMin = v
	case "debug":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		updated.Debug = v
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}

	if err := mgr.Update(updated); err != nil {
		return err
	}
	fmt.Printf("Set %s to %s\n", key, value)
	return nil
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("campuschat v1.0.0")
			fmt.Println("Terminal client for the campus AI tutor")
		},
	}
}

// runLoginCommand signs the user in and stores the session
func runLoginCommand(app *App, email string) error {
	creds, err := PromptForCredentials(email)
	if err != nil {
		return err
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	resp, err := app.client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		// A 401 on login means wrong credentials, not an expired
		// session; say so instead of the generic expiry notice.
		if errors.Is(err, api.ErrSessionExpired) {
			return fmt.Errorf("incorrect email or password")
		}
		return err
	}

	DisplayLoginSuccess(resp.User)
	return nil
}

func runSignupCommand(app *App, name, email, masterKey string) error {
	details, err := PromptForSignup(name, email, masterKey)
	if err != nil {
		return err
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	resp, err := app.client.Signup(ctx, details.Name, details.Email, details.Password, details.MasterKey)
	if err != nil {
		return err
	}

	fmt.Println("Account created.")
	DisplayLoginSuccess(resp.User)
	return nil
}

// runProfileCommand renders the full profile view
func runProfileCommand(app *App) error {
	if err := app.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	agg := profile.NewAggregator(app.client, app.logger, app.cfg.FetchConcurrency)
	overview, err := agg.Build(ctx, time.Now())
	if err != nil {
		return err
	}

	DisplayProfile(overview)
	return nil
}

func runProfileUpdateCommand(app *App, name, email string) error {
	if err := app.requireLogin(); err != nil {
		return err
	}

	if name == "" && email == "" {
		return fmt.Errorf("nothing to update: pass --name and/or --email")
	}

	var namePtr, emailPtr *string
	if name != "" {
		namePtr = &name
	}
	if email != "" {
		emailPtr = &email
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	updated, err := app.client.UpdateProfile(ctx, namePtr, emailPtr)
	if err != nil {
		return err
	}

	fmt.Printf("Profile updated: %s <%s>\n", updated.Name, updated.Email)
	return nil
}

// runPasswordChangeCommand prompts for and applies a password change.
// Input policy violations are reported inline by the prompt layer and
// never reach the network.
func runPasswordChangeCommand(app *App) error {
	if err := app.requireLogin(); err != nil {
		return err
	}

	change, err := PromptForPasswordChange()
	if err != nil {
		return err
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	if err := app.client.ChangePassword(ctx, change.Current, change.New); err != nil {
		return err
	}

	fmt.Println("Password changed.")
	return nil
}

// runChatsCommand renders the chat history list
func runChatsCommand(app *App) error {
	if err := app.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	chatList, err := app.client.Chats(ctx)
	if err != nil {
		return err
	}

	summary := app.chatSummaries(ctx, chatList)
	DisplayChatList(summary)
	return nil
}

// runTranscriptsCommand lists recorded chats, or replays one.
func runTranscriptsCommand(app *App, chatID int) error {
	records, err := transcript.Open(app.cfg.TranscriptFile())
	if err != nil {
		return err
	}
	defer records.Close()

	ctx, cancel := app.requestContext()
	defer cancel()

	if chatID == 0 {
		logs, err := records.Chats(ctx)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			fmt.Println("No transcripts recorded yet.")
			return nil
		}
		for _, l := range logs {
			title := l.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("#%-4d %-40s %3d messages  %s\n", l.ChatID, title, l.Messages, l.LastAt.Format("2006-01-02 15:04"))
		}
		return nil
	}

	entries, err := records.Messages(ctx, chatID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no transcript recorded for chat %d", chatID)
	}
	DisplayTranscript(entries)
	return nil
}

// runSubjectsCommand walks branch -> semesters -> subjects and prints
// the hierarchy.
func runSubjectsCommand(app *App) error {
	if err := app.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	branches, err := app.client.Branches(ctx)
	if err != nil {
		return err
	}

	for _, branch := range branches {
		DisplayBranchHeader(branch)
		semesters, err := app.client.Semesters(ctx, branch.ID)
		if err != nil {
			app.logger.Warn("loading semesters", zap.Int("branch_id", branch.ID), zap.Error(err))
			DisplaySectionError("semesters unavailable")
			continue
		}
		for _, semester := range semesters {
			subjects, err := app.client.Subjects(ctx, semester.ID)
			if err != nil {
				// One broken semester should not hide its siblings.
				app.logger.Warn("loading subjects", zap.Int("semester_id", semester.ID), zap.Error(err))
				DisplaySemester(semester, nil, true)
				continue
			}
			DisplaySemester(semester, subjects, false)
		}
	}
	return nil
}

// showConfig displays the current configuration
func showConfig(cfg *config.Config) {
	fmt.Println("Current campuschat configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Backend URL:          %s\n", cfg.APIBaseURL)
	fmt.Printf("State Directory:      %s\n", cfg.StateDir)
	fmt.Printf("Request Timeout:      %ds\n", cfg.RequestTimeoutSec)
	fmt.Printf("Fetch Concurrency:    %d\n", cfg.FetchConcurrency)
	fmt.Printf("Catalog Cache TTL:    %dm\n", cfg.CatalogCacheMin)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
}

// validateConfig validates the configuration and backend reachability
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := session.NewStore(cfg.SessionFile())
	if err := store.Load(); err != nil {
		return err
	}

	client := api.New(api.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  time.Duration(cfg.RequestTimeoutSec) * time.Second,
		Sessions: store,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The universities listing is public; reaching it proves the
	// backend is up without needing a session.
	if _, err := client.Universities(ctx); err != nil {
		return fmt.Errorf("backend unreachable at %s: %w", cfg.APIBaseURL, err)
	}

	fmt.Println("Configuration OK, backend reachable.")
	if store.User() != nil {
		fmt.Printf("Logged in as %s.\n", store.User().Email)
	} else {
		fmt.Println("Not logged in.")
	}
	return nil
}
