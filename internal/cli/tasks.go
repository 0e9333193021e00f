package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dianegit/develops-task-management/internal/api"
	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/query"
	"github.com/dianegit/develops-task-management/internal/stats"
	"github.com/dianegit/develops-task-management/internal/statusutil"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksGetCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func draftFlags(cmd *cobra.Command, d *api.TaskDraft) {
	cmd.Flags().StringVar(&d.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&d.Description, "description", "", "Task description")
	cmd.Flags().StringVar((*string)(&d.Priority), "priority", "", "Priority (low|medium|high|critical)")
	cmd.Flags().StringVar((*string)(&d.Status), "status", "", "Status (todo|in_progress|done)")
	cmd.Flags().StringVar(&d.Category, "category", "", "Category")
	cmd.Flags().StringSliceVar(&d.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&d.DueDate, "due", "", "Due date (e.g. 2026-09-30 or 2026-09-30 17:00); empty clears it")
}

func normalizeDraft(d *api.TaskDraft) error {
	st, err := statusutil.NormalizeStatus(string(d.Status))
	if err != nil {
		return err
	}
	d.Status = st
	pr, err := statusutil.NormalizePriority(string(d.Priority))
	if err != nil {
		return err
	}
	d.Priority = pr
	return nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var search, status, priority string
	var withStats bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching the filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.NormalizeStatus(status)
			if err != nil {
				return err
			}
			pr, err := statusutil.NormalizePriority(priority)
			if err != nil {
				return err
			}
			engine := query.NewEngine(app.apiClient())
			job, _ := engine.SetFilter(model.Filter{Search: search, Status: st, Priority: pr})
			engine.Run(cmd.Context(), job)
			res := engine.Snapshot()
			if res.Err != nil {
				return res.Err
			}
			if withStats {
				return app.printJSON(cmd, struct {
					Tasks []model.Task  `json:"tasks"`
					Total int           `json:"total"`
					Stats stats.Summary `json:"stats"`
				}{Tasks: res.Tasks, Total: res.Total, Stats: stats.Aggregate(res.Tasks)})
			}
			return app.printJSON(cmd, model.TaskList{Tasks: res.Tasks, Total: res.Total})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Free-text search")
	cmd.Flags().StringVar(&status, "status", "", "Status filter (todo|in_progress|done)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority filter (low|medium|high|critical)")
	cmd.Flags().BoolVar(&withStats, "stats", false, "Include aggregate statistics")
	return cmd
}

func newTasksGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.apiClient().GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.printJSON(cmd, task)
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var d api.TaskDraft
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := normalizeDraft(&d); err != nil {
				return err
			}
			task, err := app.apiClient().CreateTask(cmd.Context(), d)
			if err != nil {
				return err
			}
			return app.printJSON(cmd, task)
		},
	}
	draftFlags(cmd, &d)
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var d api.TaskDraft
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Replace a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := normalizeDraft(&d); err != nil {
				return err
			}
			task, err := app.apiClient().UpdateTask(cmd.Context(), args[0], d)
			if err != nil {
				return err
			}
			return app.printJSON(cmd, task)
		},
	}
	draftFlags(cmd, &d)
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.NormalizeStatus(args[1])
			if err != nil {
				return err
			}
			if st == "" {
				return errMissingArg("status")
			}
			task, err := app.apiClient().UpdateTaskStatus(cmd.Context(), args[0], st)
			if err != nil {
				return err
			}
			return app.printJSON(cmd, task)
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Irrevocable action guard: require explicit confirmation.
			if !yes {
				answer, err := promptLine(cmd, fmt.Sprintf("Delete task %s? [y/N]", args[0]))
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					return errAborted("delete")
				}
			}
			if err := app.apiClient().DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s at %s\n", args[0], time.Now().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}
