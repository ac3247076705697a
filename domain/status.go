package domain

// Status is the short persisted code of a task or subtask state.
type Status string

const (
	StatusNew        Status = "N"
	StatusInProgress Status = "IP"
	StatusDone       Status = "D"
	StatusPending    Status = "P"
	StatusBlocked    Status = "B"
)

// statusLabels maps persisted codes to the labels shown in API payloads
// such as the statistics report.
var statusLabels = map[Status]string{
	StatusNew:        "New",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
	StatusPending:    "Pending",
	StatusBlocked:    "Blocked",
}

// Label returns the human readable name of the status. Unknown codes are
// returned unchanged so stale rows still render.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is one of the known status codes.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}
