package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	fsync "github.com/atelierppf/fieldsync/internal/sync"
	"github.com/atelierppf/fieldsync/internal/tasks"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync every task with its workflow state once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		states, err := a.workflow.SyncAllTasksWithWorkflows(cmd.Context())
		if err != nil {
			return err
		}

		failed := 0
		for _, st := range states {
			if !st.IsSynced {
				failed++
				fmt.Printf("%-10s sync failed: %v\n", st.Task.ID, st.Err)
				continue
			}
			if st.Progress != nil {
				fmt.Printf("%-10s step %d/%d (%d%%, %s)\n",
					st.Task.ID, st.Progress.CurrentStep,
					st.Progress.TotalSteps,
					st.Progress.CompletionPercentage,
					st.Progress.Status)
			} else {
				fmt.Printf("%-10s no active intervention\n", st.Task.ID)
			}
		}
		fmt.Printf("synced %d tasks, %d failures\n", len(states)-failed, failed)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the backend and keep the local cache current",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		st, err := a.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		interval := time.Duration(a.cfg.Sync.PollIntervalSec) * time.Second
		poller := fsync.New(st, a.tasks, tasks.Query{}, interval,
			func(r fsync.Result) {
				switch {
				case r.AuthRequired:
					fmt.Println("authentication required; run 'fieldsync token set'")
				case r.Err != nil:
					fmt.Printf("poll failed: %v\n", r.Err)
				case r.NewTaskCount > 0:
					fmt.Printf("%d new tasks (%d fetched)\n",
						r.NewTaskCount, len(r.Tasks))
				}
			}, a.log)

		poller.Start()
		defer poller.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		return nil
	},
}
