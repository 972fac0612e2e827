package models

import "time"

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskPatch lists the fields to change. Nil fields are left as they are.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Status renders the checkbox shown in task lists.
func (t Task) Status() string {
	if t.Completed {
		return "[x]"
	}
	return "[ ]"
}
