// Package history persists chat snapshots beyond the process lifetime.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/cchalm/task-concierge/internal/chat"
)

// Archive stores chat records keyed by chat id, queryable by owner
type Archive interface {
	// Get returns the chat stored under id, or nil if nothing is stored there
	Get(id uuid.UUID) (*chat.Chat, error)
	// Put stores a chat under its id, replacing any previous record
	Put(c chat.Chat) error
	// Delete removes the record for id
	Delete(id uuid.UUID) error
	// List returns all archived chats for an owner, most recently updated first
	List(owner string) ([]chat.Chat, error)
}

// FilesystemArchive implements Archive with one JSON file per chat
type FilesystemArchive struct {
	dir string
}

func NewFilesystemArchive(dir string) FilesystemArchive {
	return FilesystemArchive{dir: dir}
}

func (fa FilesystemArchive) Get(id uuid.UUID) (*chat.Chat, error) {
	b, err := os.ReadFile(fa.path(id))
	if errors.Is(err, os.ErrNotExist) {
		// The file doesn't exist so nothing is stored at this key
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var c chat.Chat
	err = json.Unmarshal(b, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat: %w", err)
	}
	return &c, nil
}

func (fa FilesystemArchive) Put(c chat.Chat) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}
	if err := os.MkdirAll(fa.dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	err = os.WriteFile(fa.path(c.ID), b, 0666)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (fa FilesystemArchive) Delete(id uuid.UUID) error {
	err := os.Remove(fa.path(id))
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (fa FilesystemArchive) List(owner string) ([]chat.Chat, error) {
	entries, err := os.ReadDir(fa.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	chats := []chat.Chat{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		c, err := fa.Get(id)
		if err != nil {
			return nil, err
		}
		if c != nil && c.Owner == owner {
			chats = append(chats, *c)
		}
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

func (fa FilesystemArchive) path(id uuid.UUID) string {
	return filepath.Join(fa.dir, id.String()+".json")
}
