// Package models holds the shared data types exchanged between the
// orchestrator, agents, and the event stream.
package models

import "time"

// Task is an immutable description of a user request.
type Task struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Attachment references media attached to a task (image or document).
type Attachment struct {
	Kind string `json:"kind"` // "image" or "document"
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

// NewTask creates a task with a creation timestamp.
func NewTask(id, text string, attachments []Attachment) Task {
	return Task{
		ID:          id,
		Text:        text,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}
}
