package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// openTasks moves to the tasks page. It is false when the guard sent the
// user elsewhere; the command then does nothing.
func (a *App) openTasks(ctx context.Context) bool {
	if a.navigate(PageTasks) {
		return true
	}
	_ = a.render(ctx)
	return false
}

func (a *App) List(ctx context.Context) error {
	if !a.openTasks(ctx) {
		return nil
	}
	return a.showTasks(ctx)
}

func (a *App) showTasks(ctx context.Context) error {
	tasks, err := a.tasks.List(ctx)
	if err != nil {
		a.fail(err)
		return err
	}
	a.setMode(ModeOnline)
	a.listed = tasks

	a.println(titleStyle.Render("Tasks"))
	if len(tasks) == 0 {
		a.println(dimStyle.Render("No tasks yet. Add one with 'add <title>'."))
		return nil
	}
	for i, t := range tasks {
		line := fmt.Sprintf("%2d. %s %s", i+1, t.Status(), t.Title)
		if t.Completed {
			line = doneStyle.Render(line)
		}
		a.println(line)
		if t.Description != "" {
			a.println(dimStyle.Render("      " + strings.ReplaceAll(t.Description, "\n", "\n      ")))
		}
	}
	return nil
}

// Add creates a task. The title may follow the command; otherwise it is
// prompted for, followed by an optional description.
func (a *App) Add(ctx context.Context, args []string) error {
	if !a.openTasks(ctx) {
		return nil
	}

	title := strings.Join(args, " ")
	description := ""
	if title == "" {
		var err error
		if title, err = getSimpleText(a.reader, "Enter title", a.out); err != nil {
			return err
		}
		if description, err = GetMultiline(a.reader, "Enter description (optional)", a.out); err != nil {
			return err
		}
	}

	task, err := a.tasks.Create(ctx, title, description)
	if err != nil {
		a.fail(err)
		return err
	}
	a.println(successStyle.Render(fmt.Sprintf("Added %q", task.Title)))
	return a.showTasks(ctx)
}

func (a *App) Toggle(ctx context.Context, args []string) error {
	id, ok := a.taskRef(ctx, args, "done <n>")
	if !ok {
		return nil
	}
	task, err := a.tasks.Toggle(ctx, id)
	if err != nil {
		a.fail(err)
		return err
	}
	a.println(successStyle.Render(fmt.Sprintf("%s %s", task.Status(), task.Title)))
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	id, ok := a.taskRef(ctx, args, "rename <n> <title>")
	if !ok {
		return nil
	}
	title := strings.Join(args[1:], " ")
	if title == "" {
		var err error
		if title, err = getSimpleText(a.reader, "Enter new title", a.out); err != nil {
			return err
		}
	}
	task, err := a.tasks.Rename(ctx, id, title)
	if err != nil {
		a.fail(err)
		return err
	}
	a.println(successStyle.Render(fmt.Sprintf("Renamed to %q", task.Title)))
	return nil
}

func (a *App) Describe(ctx context.Context, args []string) error {
	id, ok := a.taskRef(ctx, args, "describe <n>")
	if !ok {
		return nil
	}
	description, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	if _, err := a.tasks.Describe(ctx, id, description); err != nil {
		a.fail(err)
		return err
	}
	a.println(successStyle.Render("Description updated"))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, ok := a.taskRef(ctx, args, "delete <n>")
	if !ok {
		return nil
	}
	if err := a.tasks.Delete(ctx, id); err != nil {
		a.fail(err)
		return err
	}
	a.listed = removeTask(a.listed, id)
	a.println(successStyle.Render("Deleted"))
	return nil
}

// taskRef resolves the first argument to a task id. A number refers to the
// last listing; anything else is taken as an id.
func (a *App) taskRef(ctx context.Context, args []string, usage string) (string, bool) {
	if !a.openTasks(ctx) {
		return "", false
	}
	if len(args) == 0 {
		a.println("Usage: " + usage)
		return "", false
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		if n < 1 || n > len(a.listed) {
			a.println(errorStyle.Render(fmt.Sprintf("No task #%d, run 'list' first", n)))
			return "", false
		}
		return a.listed[n-1].ID, true
	}
	return args[0], true
}

func removeTask(tasks []models.Task, id string) []models.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
