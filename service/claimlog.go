package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jacob-mennell/fast-insurance-claims/model"
)

// ClaimLogger records claim creation events to an append-only text file
// and to the claim_logs table. Both writes are best-effort: a failure is
// logged and swallowed, it must never fail the request that triggered it.
type ClaimLogger struct {
	store *ClaimStore
	path  string
	mu    sync.Mutex
}

// NewClaimLogger creates a logger that appends to the file at path.
func NewClaimLogger(store *ClaimStore, path string) *ClaimLogger {
	return &ClaimLogger{store: store, path: path}
}

// LogCreation records one creation event, one line per event.
func (l *ClaimLogger) LogCreation(ctx context.Context, claim *model.Claim) {
	line := fmt.Sprintf("Claim created: %s claimant=%s amount=%.2f at=%s\n",
		claim.ClaimNumber, claim.ClaimantName, claim.Amount,
		time.Now().UTC().Format(time.RFC3339))

	if err := l.appendLine(line); err != nil {
		slog.Warn("failed to append creation log", "claim_number", claim.ClaimNumber, "error", err)
	}

	message := fmt.Sprintf("Claim created: %s", claim.ClaimNumber)
	if err := l.store.InsertLog(ctx, &claim.ID, "create", message); err != nil {
		slog.Warn("failed to write claim log row", "claim_number", claim.ClaimNumber, "error", err)
	}
}

func (l *ClaimLogger) appendLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}
