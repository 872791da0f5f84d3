package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schedchat/schedchat/internal/assistant"
	"github.com/schedchat/schedchat/internal/auth"
	"github.com/schedchat/schedchat/internal/calendar"
	"github.com/schedchat/schedchat/internal/google"
	"github.com/schedchat/schedchat/internal/llm"
)

// defaultCompletionEndpoint is the Together AI chat completions API.
const defaultCompletionEndpoint = "https://api.together.xyz/v1/chat/completions"

// newCompleter builds the completion client from flags with environment
// fallbacks. Fails with a *llm.ConfigError when no usable key is set.
func newCompleter(endpoint, model string) (*llm.Client, error) {
	if endpoint == "" {
		endpoint = os.Getenv("TOGETHER_API_ENDPOINT")
	}
	if endpoint == "" {
		endpoint = defaultCompletionEndpoint
	}
	if model == "" {
		model = os.Getenv("SCHEDCHAT_MODEL")
	}
	return llm.NewClient(llm.Config{
		Endpoint: endpoint,
		APIKey:   os.Getenv("TOGETHER_API_KEY"),
		Model:    model,
	})
}

func newChatCmd() *cobra.Command {
	var (
		account  string
		endpoint string
		model    string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive scheduling conversation",
		Long: `Start an interactive scheduling conversation in the terminal.

Messages are enriched with upcoming Google Calendar events and sent to
the completion endpoint; calendar directives in the reply are executed
against your calendar.

Requires TOGETHER_API_KEY in the environment. Calendar access is
optional: without a stored token (see 'schedchat auth') the assistant
still chats, but cannot read or change your calendar.

Commands inside the conversation:
  /history   show the conversation so far
  /clear     forget the conversation
  /quit      exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(account, endpoint, model, debug)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Completion endpoint URL. Can also use TOGETHER_API_ENDPOINT env var.")
	cmd.Flags().StringVar(&model, "model", "", "Completion model name. Can also use SCHEDCHAT_MODEL env var.")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

func runChat(account, endpoint, model string, debug bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Keep the conversation readable: only warnings unless --debug.
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	completer, err := newCompleter(endpoint, model)
	if err != nil {
		return fmt.Errorf("completion endpoint is not configured (set TOGETHER_API_KEY): %w", err)
	}

	authState := auth.NewState(account, google.NewFileTokenProvider(), logger)

	var calClient *calendar.Client
	if calendar.HasTokenForAccount(account) {
		calClient, err = calendar.NewClientForAccount(ctx, account)
		if err != nil {
			logger.Warn("calendar client unavailable", "account", account, "error", err)
		}
	} else {
		fmt.Println("No Google Calendar token found. Run 'schedchat auth' to connect your calendar.")
	}

	pipeline, err := assistant.NewConversation(assistant.DefaultConfig(), completer, authState, calClient, logger)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	fmt.Printf("schedchat %s. Type a scheduling request, or /quit to exit.\n", version)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runChatCommand(pipeline, line); quit {
				return nil
			}
			continue
		}

		reply, err := pipeline.Process(ctx, line)
		if err != nil {
			var verr *assistant.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("(%s)\n", verr.Error())
				continue
			}
			if ctx.Err() != nil {
				fmt.Println()
				return nil
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("schedchat> %s\n", reply)
	}
}

// runChatCommand handles slash commands; returns true when the session
// should end.
func runChatCommand(pipeline *assistant.Pipeline, line string) bool {
	switch line {
	case "/quit", "/exit":
		return true
	case "/clear":
		pipeline.ClearHistory()
		fmt.Println("Conversation cleared.")
	case "/history":
		turns := pipeline.History()
		if len(turns) == 0 {
			fmt.Println("No conversation yet.")
			break
		}
		for _, turn := range turns {
			fmt.Printf("[%s] %s: %s\n", turn.Timestamp.Format("15:04:05"), turn.Role, turn.Content)
		}
	case "/help":
		fmt.Println("Commands: /history, /clear, /quit")
	default:
		fmt.Printf("Unknown command %q. Commands: /history, /clear, /quit\n", line)
	}
	return false
}
