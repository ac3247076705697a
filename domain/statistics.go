package domain

// TaskStatistics is the aggregate payload returned to administrators.
type TaskStatistics struct {
	TotalTasks int64            `json:"total_tasks"`
	ByStatus   map[string]int64 `json:"by_status"`
	Overdue    int64            `json:"overdue"`
}
