package sandbox

import (
	"context"

	"github.com/everydev1618/claude-sandbox/container"
	"github.com/everydev1618/claude-sandbox/internal/log"
)

// ConversationRoot is where the interactive program keeps conversation
// history inside a container. It is backed by the per-container overlay.
const ConversationRoot = "/home/claude/.claude/projects"

// DirLister lists immediate subdirectories inside a container.
type DirLister interface {
	ListDirs(ctx context.Context, name, dir string) ([]container.DirEntry, error)
}

// LatestConversation picks the most recently modified entry. Equal
// modification times are broken by the greater name so the choice is stable.
func LatestConversation(entries []container.DirEntry) (string, bool) {
	var best *container.DirEntry
	for i := range entries {
		e := &entries[i]
		if e.Name == "" {
			continue
		}
		if best == nil || e.ModTime.After(best.ModTime) ||
			(e.ModTime.Equal(best.ModTime) && e.Name > best.Name) {
			best = e
		}
	}
	if best == nil {
		return "", false
	}
	return best.Name, true
}

// DetectConversation finds the conversation most recently touched in a
// container. An empty or unreachable tree means no conversation, not an error.
func DetectConversation(ctx context.Context, lister DirLister, name string) (string, bool) {
	entries, err := lister.ListDirs(ctx, name, ConversationRoot)
	if err != nil {
		log.Warn().Err(err).Str("container", name).Msg("conversation listing failed")
		return "", false
	}
	return LatestConversation(entries)
}
