package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cchalm/task-concierge/internal/chat"
	"github.com/cchalm/task-concierge/internal/focus"
	"github.com/cchalm/task-concierge/internal/history"
	"github.com/cchalm/task-concierge/internal/script"
	"github.com/cchalm/task-concierge/internal/task"
)

const localOwner = "local"

var walkthroughCmd = &cobra.Command{
	Use:   "walkthrough [task title]",
	Short: "Run a scripted task walkthrough",
	Long: `Spawns a chat from a predefined task and replays its scripted walkthrough:
status steps, an initial agent message, then one scripted reply per input line.
Unknown task titles fall back to the default walkthrough.`,
	Args: cobra.ExactArgs(1),
	RunE: runWalkthrough,
}

func init() {
	rootCmd.AddCommand(walkthroughCmd)
}

func runWalkthrough(cmd *cobra.Command, args []string) error {
	title := args[0]

	lib, err := script.BuiltinLibrary()
	if err != nil {
		return fmt.Errorf("failed to load template library: %w", err)
	}

	store := chat.NewStore(logger)
	var archive history.Archive
	if cfg.ArchiveDir != "" {
		fsArchive := history.NewFilesystemArchive(cfg.ArchiveDir)
		archived, err := fsArchive.List(localOwner)
		if err != nil {
			return fmt.Errorf("failed to load archived chats: %w", err)
		}
		store.Restore(archived)
		archive = fsArchive
	}

	engine := script.NewEngine(store, lib, logger, script.WithTypingDelay(cfg.TypingDelay))
	registry := task.NewRegistry()
	selector := focus.NewSelector()

	card := registry.Add(task.CategoryRecommended, task.Task{
		Title:   title,
		Status:  "in-progress",
		Message: fmt.Sprintf("Working on: %s", title),
	})

	c, err := store.CreateTitled(localOwner, card.Title, card.ID)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	selector.Select(c.ID)
	engine.Start(c.ID, localOwner, c.Title)

	printed := waitAndPrint(store, engine, c.ID, 0)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			fmt.Print("> ")
			continue
		}

		chatID, ok := selector.Active()
		if !ok {
			break
		}
		if _, err := engine.HandleUserMessage(chatID, localOwner, text); err != nil {
			return fmt.Errorf("failed to post message: %w", err)
		}

		printed = waitAndPrint(store, engine, chatID, printed)

		if archive != nil {
			current, err := store.Get(chatID, localOwner)
			if err == nil {
				if err := archive.Put(current); err != nil {
					logger.Warn().Err(err).Msg("failed to archive chat")
				}
			}
		}

		if state, ok := engine.Snapshot(chatID); ok && state.Phase == script.PhaseExhausted {
			fmt.Println("(walkthrough complete)")
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

// waitAndPrint waits for pending delayed appends to land, then prints messages
// beyond the printed count. Returns the new printed count.
func waitAndPrint(store *chat.Store, engine *script.Engine, chatID uuid.UUID, printed int) int {
	deadline := time.Now().Add(cfg.TypingDelay + 5*time.Second)
	for time.Now().Before(deadline) {
		state, ok := engine.Snapshot(chatID)
		if !ok || !state.Typing {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	c, err := store.Get(chatID, localOwner)
	if err != nil {
		return printed
	}
	for _, m := range c.Messages[printed:] {
		switch m.Role {
		case chat.RoleAssistant:
			fmt.Printf("agent: %s\n", m.Content)
		case chat.RoleUser:
			fmt.Printf("you:   %s\n", m.Content)
		}
	}
	return len(c.Messages)
}
