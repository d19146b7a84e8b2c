package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atelierppf/fieldsync/internal/history"
	"github.com/atelierppf/fieldsync/internal/model"
	"github.com/atelierppf/fieldsync/internal/normalize"
	"github.com/atelierppf/fieldsync/internal/store"
	"github.com/atelierppf/fieldsync/internal/tasks"
)

var (
	listStatus     string
	listPriority   string
	listSearch     string
	listTechnician string
	listPage       int
	listOffline    bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect field-service tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks matching the given filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if listOffline {
			return listFromStore(cmd.Context(), a)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.fetchTimeout())
		defer cancel()

		page, err := a.tasks.List(ctx, tasks.Query{
			Status:       listStatus,
			Priority:     listPriority,
			Search:       listSearch,
			TechnicianID: listTechnician,
			SortBy:       "updated_at",
			SortDesc:     true,
		}, listPage, a.cfg.Backend.PageSize)
		if err != nil {
			return err
		}

		for i := range page.Tasks {
			printTask(&page.Tasks[i])
		}
		fmt.Printf("page %d/%d (%d tasks)\n",
			page.Pagination.Page, page.Pagination.TotalPages,
			page.Pagination.Total)
		return nil
	},
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.fetchTimeout())
		defer cancel()

		t, err := a.tasks.Get(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s [%s/%s]\n", t.ID, t.Title, t.Status, t.Priority)
		fmt.Printf("  client:   %s\n", normalize.CustomerDisplayName(t))
		if label := normalize.VehicleLabel(t); label != "" {
			fmt.Printf("  vehicle:  %s\n", label)
		}
		if zones := normalize.ZoneLabels(t); len(zones) > 0 {
			fmt.Printf("  zones:    %s\n", strings.Join(zones, ", "))
		}
		if date := normalize.FormatScheduleDate(t.Schedule); date != "" {
			line := date
			if r := normalize.FormatScheduleRange(t.Schedule); r != "" {
				line += " " + r
			}
			if t.Schedule.DurationMin > 0 {
				line += " (" + normalize.FormatDuration(t.Schedule.DurationMin) + ")"
			}
			fmt.Printf("  schedule: %s\n", line)
		}
		if t.Notes != "" {
			fmt.Printf("  notes:    %s\n", t.Notes)
		}
		return nil
	},
}

var tasksHistoryCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show the change history of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.fetchTimeout())
		defer cancel()

		entries, err := a.history.GetTaskHistory(ctx, args[0], history.Filter{})
		if err != nil {
			return err
		}

		for _, e := range entries {
			marker := ""
			if e.Synthetic {
				marker = " (reconstructed)"
			}
			fmt.Printf("%s  %-16s %s%s\n",
				e.Timestamp.Format("2006-01-02 15:04"),
				e.Action, e.UserID, marker)
		}
		return nil
	},
}

func listFromStore(ctx context.Context, a *app) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.TaskFilter{
		SortBy:   "updated_at",
		SortDesc: true,
		Limit:    a.cfg.Backend.PageSize,
	}
	if listStatus != "" && listStatus != "all" {
		filter.Status = &listStatus
	}
	if listPriority != "" && listPriority != "all" {
		filter.Priority = &listPriority
	}
	if listTechnician != "" {
		filter.TechnicianID = &listTechnician
	}
	if listSearch != "" {
		filter.Query = &listSearch
	}

	cached, err := st.GetTasks(ctx, filter)
	if err != nil {
		return err
	}

	for i := range cached {
		printTask(&cached[i])
	}
	fmt.Printf("%d cached tasks\n", len(cached))
	return nil
}

func printTask(t *model.Task) {
	fmt.Printf("%-10s %-10s %-8s %-24s %s\n",
		t.ID, t.Status, t.Priority,
		normalize.CustomerDisplayName(t), t.Title)
}

func init() {
	tasksListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	tasksListCmd.Flags().StringVar(&listPriority, "priority", "", "filter by priority")
	tasksListCmd.Flags().StringVar(&listSearch, "search", "", "free-text search")
	tasksListCmd.Flags().StringVar(&listTechnician, "technician", "", "filter by technician id")
	tasksListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	tasksListCmd.Flags().BoolVar(&listOffline, "offline", false, "read from the local cache only")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksShowCmd)
	tasksCmd.AddCommand(tasksHistoryCmd)
}
