package view

// # Error Codes Reference
//
// MapError turns errors from the view engine and its collaborators into
// messages with a code users can quote to support.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Duplicate column id
//	CFG002 - Column without id
//	CFG003 - Unknown column type
//	CFG004 - Column both filterable and searchable
//	CFG005 - Record missing a column value
//	CFG006 - Record value of the wrong type
//	CFG007 - Record value of an unsupported kind
//
// # Mutation Errors (MUT001-MUT099)
//
//	MUT001 - Unknown column
//	MUT002 - Column is not filterable
//	MUT003 - Filter value does not fit the column type
//	MUT004 - Column is not searchable
//	MUT005 - Column is not orderable
//	MUT006 - Page size not offered
//	MUT007 - Row index out of range
//
// # Source Errors (SRC001-SRC099)
//
// Registered by the source package on top of the engine's catalog.
//
//	SRC001 - Unsupported data format
//	SRC002 - Empty file
//	SRC003 - Header lacks a column
//	SRC004 - Malformed CSV
//	SRC005 - Malformed JSON
//	SRC006 - File not found
//	SRC007 - Database unreachable
//	SRC008 - Database table missing
//	SRC009 - Invalid column descriptor
//	SRC010 - Cell does not parse as its column type
//
// # View Session Errors (VIEW001-VIEW099)
//
// Registered by the web package on top of the source catalog.
//
//	VIEW001 - Session expired or unknown
//	VIEW002 - Too many open sessions
//	VIEW003 - Rate limited
//	VIEW004 - Request timed out
//	VIEW005 - Too many reloads at once
//	VIEW006 - Unreadable request body
//	VIEW007 - Dataset cannot be reloaded
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. The original error is in the logs.

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/filter"
	"github.com/JonMunkholm/deeptable/internal/ordering"
	"github.com/JonMunkholm/deeptable/internal/pager"
	"github.com/JonMunkholm/deeptable/internal/record"
	"github.com/JonMunkholm/deeptable/internal/search"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// SentinelMessage maps an error matched with errors.Is to a user message.
type SentinelMessage struct {
	Target error
	Msg    UserMessage
}

// PatternMessage maps errors whose lower-cased text contains Pattern to a
// user message. Used for errors from layers without sentinels, such as
// network and database drivers.
type PatternMessage struct {
	Pattern string
	Msg     UserMessage
}

// engineMessages are the errors of the table engine itself.
var engineMessages = []SentinelMessage{
	// Configuration
	{column.ErrDuplicateColumn, UserMessage{
		Message: "Two columns share the same id",
		Action:  "Give every column a unique id",
		Code:    "CFG001",
	}},
	{column.ErrEmptyID, UserMessage{
		Message: "A column has no id",
		Action:  "Give every column an id matching a record field",
		Code:    "CFG002",
	}},
	{column.ErrUnknownType, UserMessage{
		Message: "A column has an unknown type",
		Action:  "Use boolean, integer, float, string or timestamp",
		Code:    "CFG003",
	}},
	{column.ErrConflictingModes, UserMessage{
		Message: "A column cannot be both filterable and searchable",
		Action:  "Choose either a filter or a search box for the column",
		Code:    "CFG004",
	}},
	{record.ErrMissingValue, UserMessage{
		Message: "A record is missing a column value",
		Action:  "Ensure every record has a value for every column",
		Code:    "CFG005",
	}},
	{record.ErrTypeMismatch, UserMessage{
		Message: "A record value does not match its column type",
		Action:  "Check the column types against the data",
		Code:    "CFG006",
	}},
	{record.ErrUnsupportedValue, UserMessage{
		Message: "A record value has an unsupported kind",
		Action:  "Use booleans, numbers, strings or timestamps only",
		Code:    "CFG007",
	}},

	// Mutations
	{column.ErrUnknownColumn, UserMessage{
		Message: "Unknown column",
		Action:  "Verify the column id is correct",
		Code:    "MUT001",
	}},
	{filter.ErrNotFilterable, UserMessage{
		Message: "This column cannot be filtered",
		Action:  "Filter on one of the filterable columns",
		Code:    "MUT002",
	}},
	{filter.ErrInvalidValue, UserMessage{
		Message: "Filter value does not fit the column",
		Action:  "Pick one of the offered values",
		Code:    "MUT003",
	}},
	{search.ErrNotSearchable, UserMessage{
		Message: "This column cannot be searched",
		Action:  "Search one of the searchable columns",
		Code:    "MUT004",
	}},
	{ordering.ErrNotOrderable, UserMessage{
		Message: "This column cannot be sorted",
		Action:  "Sort by one of the sortable columns",
		Code:    "MUT005",
	}},
	{pager.ErrInvalidPageSize, UserMessage{
		Message: "Page size is not offered",
		Action:  fmt.Sprintf("Choose one of %v rows per page", pager.PageSizes),
		Code:    "MUT006",
	}},
	{ErrRowOutOfRange, UserMessage{
		Message: "Row not found",
		Action:  "Refresh the page and try again",
		Code:    "MUT007",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// Catalog maps errors to user messages. Sentinels are checked first, in
// order, then patterns; the first match wins. A Catalog is immutable.
type Catalog struct {
	sentinels []SentinelMessage
	patterns  []PatternMessage
}

// Messages is the catalog of the engine's own errors. Layers that wrap the
// engine extend it with With.
var Messages = Catalog{sentinels: engineMessages}

// With returns a catalog that also knows the given messages. They are
// checked after the ones already in c.
func (c Catalog) With(sentinels []SentinelMessage, patterns []PatternMessage) Catalog {
	return Catalog{
		sentinels: slices.Concat(c.sentinels, sentinels),
		patterns:  slices.Concat(c.patterns, patterns),
	}
}

// Map converts a technical error to a user-friendly message.
func (c Catalog) Map(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range c.sentinels {
		if errors.Is(err, sm.Target) {
			return sm.Msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, pm := range c.patterns {
		if strings.Contains(errStr, pm.Pattern) {
			return pm.Msg
		}
	}

	return defaultMessage
}

// Format creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func (c Catalog) Format(err error) string {
	msg := c.Map(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func (c Catalog) IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return c.Map(err).Code != defaultMessage.Code
}

// MapError maps err with the engine catalog.
func MapError(err error) UserMessage {
	return Messages.Map(err)
}

// FormatUserError formats err with the engine catalog.
func FormatUserError(err error) string {
	return Messages.Format(err)
}
