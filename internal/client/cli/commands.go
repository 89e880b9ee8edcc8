package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dklimov/taskvault/internal/client/api"
)

func (a *App) readCredentials() (string, string, error) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return "", "", err
	}
	return email, string(password), nil
}

func (a *App) Signup(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	res, err := a.api.Signup(ctx, email, password)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.email = res.User.Email
	printlnFn("Account created, signed in as", a.email)
	return nil
}

func (a *App) Signin(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	res, err := a.api.Signin(ctx, email, password)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.email = res.User.Email
	printlnFn("Signed in as", a.email)
	return nil
}

func (a *App) Signout(ctx context.Context) error {
	// the server call is best effort, the local token is dropped regardless
	if err := a.api.Signout(ctx); err != nil {
		printlnFn(err.Error())
	}
	a.email = ""
	printlnFn("Signed out")
	return nil
}

func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	var description *string
	text, err := GetMultiline(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if text != "" {
		description = &text
	}

	task, err := a.api.CreateTask(ctx, title, description)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Created task", task.ID)
	return nil
}

func formatTask(t *api.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s  %s", mark, t.ID, t.Title)
}

func (a *App) List(ctx context.Context) error {
	list, err := a.api.ListTasks(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	for i := range list.Tasks {
		printlnFn(formatTask(&list.Tasks[i]))
	}
	printlnFn(fmt.Sprintf("%d total, %d completed, %d pending", list.Total, list.Completed, list.Pending))
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	task, err := a.api.GetTask(ctx, id)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(formatTask(task))
	if task.Description != nil {
		printlnFn(*task.Description)
	}
	printlnFn("Created:", task.CreatedAt.Local().Format("2006-01-02 15:04"))
	if task.CompletedAt != nil {
		printlnFn("Completed:", task.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// Edit prompts for new values; an empty answer keeps the current one.
func (a *App) Edit(ctx context.Context, id string) error {
	var title, description *string

	text, err := GetSimpleText(a.reader, "New title (empty to keep)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if text != "" {
		title = &text
	}

	desc, err := GetMultiline(a.reader, "New description (empty to keep)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if desc != "" {
		description = &desc
	}

	task, err := a.api.UpdateTask(ctx, id, title, description)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Updated", task.ID)
	return nil
}

func (a *App) Toggle(ctx context.Context, id string) error {
	task, err := a.api.ToggleTask(ctx, id)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(formatTask(task))
	return nil
}

func (a *App) Remove(ctx context.Context, id string) error {
	if err := a.api.DeleteTask(ctx, id); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Deleted", id)
	return nil
}
