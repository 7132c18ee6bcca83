package model

// ExportTask is the job persisted on the run queue. It must be
// JSON-serializable.
type ExportTask struct {
	TaskID           string          `json:"task_id"`
	ScheduleKey      string          `json:"schedule_key"`
	Filter           ExportFilter    `json:"filter"`
	Format           ExportFormat    `json:"format"`
	FilenameTemplate string          `json:"filename_template"`
	Transport        TransportConfig `json:"transport"`
	MarkPolicy       MarkPolicy      `json:"mark_policy"`
	// UnexportedOnly restricts candidates to records whose exported flag is
	// explicitly 0 (the automated-export path).
	UnexportedOnly bool `json:"unexported_only"`
}

// Task statuses tracked in the cache.
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusDone       = "done"
	TaskStatusFailed     = "failed"
)
