package model

import (
	"encoding/json"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

const DefaultTodoCategory = "general"

type TodoItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *string    `json:"due_date"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	CreatedBy   *string    `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func NewTodo(title string, now time.Time) TodoItem {
	return TodoItem{
		ID:        NewID(),
		Title:     title,
		Priority:  PriorityNormal,
		Category:  DefaultTodoCategory,
		CreatedAt: now,
	}
}

func (t *TodoItem) UnmarshalJSON(data []byte) error {
	type alias TodoItem
	a := struct {
		alias
		CreatedAt   timestamp `json:"created_at"`
		CompletedAt timestamp `json:"completed_at"`
	}{alias: alias{Priority: PriorityNormal, Category: DefaultTodoCategory}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = TodoItem(a.alias)
	t.CreatedAt = a.CreatedAt.Time
	t.CompletedAt = a.CompletedAt.ptr()
	return nil
}
