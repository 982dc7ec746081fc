// Package validate implements the lightweight, non-parsing query validation
// supplemented in SPEC_FULL.md §D. It is a deliberately trimmed adaptation of
// the teacher's server/sql_validator.go: the teacher's full SQLValidator
// does command whitelisting, injection-pattern regexes, and risk scoring —
// functionality that oversteps spec §1's Non-goals ("no SQL parser, no
// query optimizer": a query optimizer-adjacent structural analyzer is out
// of scope here). What survives is the one check that fits the core's
// boundary: rejecting statements the host should never have sent across the
// ABI at all — oversized text and an empty string — surfaced as
// dberr.ValidationError rather than silently forwarded to the driver.
package validate

import (
	"strings"

	"github.com/odbccore/engine/internal/dberr"
)

// Config mirrors the one knob of the teacher's SQLValidationConfig this
// package keeps.
type Config struct {
	MaxQueryLength int
}

// Command classifies the leading keyword of a statement for metrics and
// logging only — it is never used to accept or reject a query body (spec §1
// Non-goals forbid the engine from making semantic decisions based on parsed
// SQL structure).
type Command string

const (
	CommandSelect  Command = "SELECT"
	CommandInsert  Command = "INSERT"
	CommandUpdate  Command = "UPDATE"
	CommandDelete  Command = "DELETE"
	CommandDDL     Command = "DDL"
	CommandOther   Command = "OTHER"
)

// Query checks sqlText against cfg, returning a dberr.ValidationError when it
// should be rejected before ever reaching the driver.
func Query(sqlText string, cfg Config) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return dberr.New(dberr.KindValidationError, "query text is empty")
	}
	if cfg.MaxQueryLength > 0 && len(sqlText) > cfg.MaxQueryLength {
		return dberr.New(dberr.KindValidationError, "query text is %d bytes, exceeds max_query_length %d", len(sqlText), cfg.MaxQueryLength)
	}
	return nil
}

// DetectCommand returns the best-effort leading command, used only for
// metrics/log labeling (e.g. "how many DDL statements has this connection
// run"), never for policy enforcement.
func DetectCommand(sqlText string) Command {
	trimmed := strings.ToUpper(strings.TrimSpace(sqlText))
	switch {
	case strings.HasPrefix(trimmed, "SELECT") || strings.HasPrefix(trimmed, "WITH"):
		return CommandSelect
	case strings.HasPrefix(trimmed, "INSERT"):
		return CommandInsert
	case strings.HasPrefix(trimmed, "UPDATE"):
		return CommandUpdate
	case strings.HasPrefix(trimmed, "DELETE"):
		return CommandDelete
	case strings.HasPrefix(trimmed, "CREATE"), strings.HasPrefix(trimmed, "ALTER"),
		strings.HasPrefix(trimmed, "DROP"), strings.HasPrefix(trimmed, "TRUNCATE"):
		return CommandDDL
	default:
		return CommandOther
	}
}
