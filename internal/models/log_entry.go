package models

// LogLevel is the severity of an audit log entry
type LogLevel string

const (
	LogInfo  LogLevel = "INFO"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
)

// ValidLogLevels defines allowed audit levels
var ValidLogLevels = map[LogLevel]bool{
	LogInfo:  true,
	LogWarn:  true,
	LogError: true,
}

// LogEntry is one line of the audit log file
type LogEntry struct {
	ID        string   `json:"id"`
	Level     LogLevel `json:"level"`
	Message   string   `json:"message"`
	Meta      *string  `json:"meta"`
	CreatedAt string   `json:"createdAt"`
	User      *LogUser `json:"user"`
}

// LogUser is the actor snapshot copied into a log entry at write time
type LogUser struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// LogPage is a page of audit log entries, latest first
type LogPage struct {
	Logs       []LogEntry    `json:"logs"`
	Pagination LogPagination `json:"pagination"`
}

// LogPagination describes a LogPage
type LogPagination struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
