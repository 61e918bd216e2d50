package cli

import (
	"errors"
	"log/slog"

	"github.com/roach88/codebook/internal/store"
)

// openJournal opens an existing journal, mapping a missing file to
// ErrCodeNotFound.
func openJournal(formatter *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.OpenExisting(path)
	if errors.Is(err, store.ErrJournalNotFound) {
		return nil, formatter.fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}
	if err != nil {
		return nil, formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	return st, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
