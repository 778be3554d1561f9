package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cchalm/task-concierge/internal/ai"
	"github.com/cchalm/task-concierge/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat [first message]",
	Short: "Chat against a live generation backend",
	Long: `Starts a chat from a first message using the configured generation backend
(CONCIERGE_BACKEND=anthropic or openai), then reads further messages from stdin.
If a generation pass fails, the user message is kept and can be resent by typing
a new message.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := setupContext()

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	defer func() {
		if err := telemetryProvider.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to shut down telemetry provider")
		}
	}()

	generator, err := createGenerator()
	if err != nil {
		return err
	}

	store := chat.NewStore(logger)
	service := chat.NewService(store, generator, logger)

	c, err := service.CreateChat(ctx, localOwner, args[0])
	var genErr *ai.GenerationError
	if errors.As(err, &genErr) {
		fmt.Println("(the agent could not reply; your message was kept, try again)")
	} else if err != nil {
		return err
	}
	printLatest(c, 1)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			fmt.Print("> ")
			continue
		}

		before := len(c.Messages)
		c, err = service.PostMessage(ctx, c.ID, localOwner, text)
		if errors.As(err, &genErr) {
			fmt.Println("(the agent could not reply; your message was kept, try again)")
		} else if err != nil {
			return err
		}
		printLatest(c, before+1)
		fmt.Print("> ")
	}
	return scanner.Err()
}

// printLatest prints assistant messages from index from onward
func printLatest(c chat.Chat, from int) {
	for _, m := range c.Messages[min(from, len(c.Messages)):] {
		if m.Role == chat.RoleAssistant {
			fmt.Printf("agent: %s\n", m.Content)
		}
	}
}
