package source

import (
	"io/fs"

	"github.com/JonMunkholm/deeptable/internal/view"
)

// Messages extends the engine catalog with the errors of loading records
// and columns. Database errors carry no sentinels of ours, so they are
// matched on driver text.
var Messages = view.Messages.With(sourceMessages, databasePatterns)

var sourceMessages = []view.SentinelMessage{
	{Target: ErrUnsupportedFormat, Msg: view.UserMessage{
		Message: "Unsupported data format",
		Action:  "Use a .csv or .json file",
		Code:    "SRC001",
	}},
	{Target: ErrEmptyFile, Msg: view.UserMessage{
		Message: "The data file is empty",
		Action:  "Provide a file with a header row",
		Code:    "SRC002",
	}},
	{Target: ErrMissingColumn, Msg: view.UserMessage{
		Message: "Expected column not found in the data",
		Action:  "Verify the headers match the column ids or labels",
		Code:    "SRC003",
	}},
	{Target: ErrInvalidCSV, Msg: view.UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure file is comma-separated with consistent columns",
		Code:    "SRC004",
	}},
	{Target: ErrInvalidJSON, Msg: view.UserMessage{
		Message: "File is not valid JSON",
		Action:  "Provide an array of objects",
		Code:    "SRC005",
	}},
	{Target: fs.ErrNotExist, Msg: view.UserMessage{
		Message: "Data file not found",
		Action:  "Check the configured path",
		Code:    "SRC006",
	}},
	{Target: ErrInvalidColumns, Msg: view.UserMessage{
		Message: "Column descriptor file is invalid",
		Action:  "Provide a JSON array of column definitions",
		Code:    "SRC009",
	}},
	{Target: ErrInvalidNumber, Msg: cellMessage},
	{Target: ErrInvalidBoolean, Msg: cellMessage},
	{Target: ErrEmptyCell, Msg: cellMessage},
}

var cellMessage = view.UserMessage{
	Message: "A cell does not match its column type",
	Action:  "Check the numbers, booleans and empty cells in the data",
	Code:    "SRC010",
}

var databasePatterns = []view.PatternMessage{
	{Pattern: "connection refused", Msg: view.UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "SRC007",
	}},
	{Pattern: "does not exist", Msg: view.UserMessage{
		Message: "Table not found",
		Action:  "Verify the table name is correct",
		Code:    "SRC008",
	}},
}
