package coordinator

import (
	"context"

	"github.com/dukerupert/famdo/internal/model"
)

type TodoInput struct {
	Title       string
	Description string
	AssignedTo  *string
	DueDate     *string
	Priority    model.Priority
	Category    string
	CreatedBy   *string
}

func (c *Coordinator) AddTodo(ctx context.Context, in TodoInput) (*model.TodoItem, error) {
	return run(ctx, c, "add_todo", func(t *tx) *model.TodoItem {
		td := model.NewTodo(in.Title, t.now)
		td.Description = in.Description
		td.AssignedTo = in.AssignedTo
		td.DueDate = in.DueDate
		if in.Priority != "" {
			td.Priority = in.Priority
		}
		if in.Category != "" {
			td.Category = in.Category
		}
		td.CreatedBy = in.CreatedBy
		t.doc.Todos = append(t.doc.Todos, &td)
		return &td
	})
}

func (c *Coordinator) UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) (*model.TodoItem, error) {
	return run(ctx, c, "update_todo", func(t *tx) *model.TodoItem {
		td := t.doc.Todo(id)
		if td == nil {
			return nil
		}
		wasDone := td.Completed
		patch.Apply(td)
		switch {
		case td.Completed && !wasDone:
			td.CompletedAt = timePtr(t.now)
		case !td.Completed:
			td.CompletedAt = nil
		}
		return td
	})
}

func (c *Coordinator) CompleteTodo(ctx context.Context, id string) (*model.TodoItem, error) {
	return run(ctx, c, "complete_todo", func(t *tx) *model.TodoItem {
		td := t.doc.Todo(id)
		if td == nil {
			return nil
		}
		td.Completed = true
		td.CompletedAt = timePtr(t.now)
		return td
	})
}

func (c *Coordinator) DeleteTodo(ctx context.Context, id string) (bool, error) {
	return c.mutate(ctx, "delete_todo", func(t *tx) bool {
		return removeByID(&t.doc.Todos, func(td *model.TodoItem) bool { return td.ID == id })
	})
}

func (c *Coordinator) DeleteAllTodos(ctx context.Context) (int, error) {
	n := 0
	_, err := c.mutate(ctx, "delete_all_todos", func(t *tx) bool {
		n = len(t.doc.Todos)
		t.doc.Todos = []*model.TodoItem{}
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
