package main

import (
	"log/slog"

	"github.com/ariaos/aria/internal/corelog"
)

// corelogAdapter wraps the process's default slog.Logger for the runtime.
func corelogAdapter() corelog.Logger {
	return corelog.NewSlog(slog.Default())
}
