// Package workflow reconciles tasks with their active intervention (one
// running execution of the installation procedure) and derives a progress
// summary from the intervention's step records.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/gateway"
	"github.com/atelierppf/fieldsync/internal/model"
	"github.com/atelierppf/fieldsync/internal/normalize"
	"github.com/atelierppf/fieldsync/internal/tasks"
)

// TaskDirectory is the slice of the task service the workflow sync needs.
type TaskDirectory interface {
	Get(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context, q tasks.Query, page, limit int) (*tasks.Page, error)
}

// batchPageSize is how many tasks a batch sync lists per request.
const batchPageSize = 100

// Service syncs tasks with their workflow execution state.
type Service struct {
	client *backend.Client
	inv    *gateway.Invoker
	tasks  TaskDirectory
	log    *logrus.Logger
}

// NewService creates a workflow sync service.
func NewService(
	client *backend.Client,
	inv *gateway.Invoker,
	dir TaskDirectory,
	log *logrus.Logger,
) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{client: client, inv: inv, tasks: dir, log: log}
}

// SyncTaskWithWorkflow fetches the task, looks up its active intervention,
// and derives the progress summary. A task with no active intervention is
// a normal, successfully synced state, not an error; most tasks have no
// running workflow at any given time.
func (s *Service) SyncTaskWithWorkflow(
	ctx context.Context,
	taskID string,
) (*model.TaskWorkflowState, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	intervention, err := s.activeIntervention(ctx, taskID)
	if err != nil {
		return nil, err
	}

	state := &model.TaskWorkflowState{
		Task:     task,
		IsSynced: true,
		SyncedAt: time.Now(),
	}
	if intervention == nil {
		return state, nil
	}

	progress, err := s.stepProgress(ctx, intervention)
	if err != nil {
		return nil, err
	}

	state.Intervention = intervention
	state.Progress = progress
	return state, nil
}

// SyncAllTasksWithWorkflows lists every task and syncs each with its
// workflow state. A failure on one task does not abort the batch: the
// failed task is reported with IsSynced false and its error, and the
// batch continues.
func (s *Service) SyncAllTasksWithWorkflows(
	ctx context.Context,
) ([]model.TaskWorkflowState, error) {
	var all []model.Task
	for page := 1; ; page++ {
		result, err := s.tasks.List(ctx, tasks.Query{}, page, batchPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing tasks for batch sync: %w", err)
		}
		all = append(all, result.Tasks...)
		if page >= result.Pagination.TotalPages || len(result.Tasks) == 0 {
			break
		}
	}

	states := make([]model.TaskWorkflowState, 0, len(all))
	for i := range all {
		task := all[i]
		state, err := s.SyncTaskWithWorkflow(ctx, task.ID)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"task_id": task.ID,
				"kind":    backend.Classify(err),
			}).Warn("task workflow sync failed; continuing batch")
			states = append(states, model.TaskWorkflowState{
				Task:     &task,
				IsSynced: false,
				SyncedAt: time.Now(),
				Err:      err,
			})
			continue
		}
		states = append(states, *state)
	}

	return states, nil
}

// activeIntervention returns the task's active intervention, or nil when
// none exists. The backend answers 404 for a task with no running
// intervention; that is mapped to nil rather than surfaced as an error.
func (s *Service) activeIntervention(
	ctx context.Context,
	taskID string,
) (*model.Intervention, error) {
	key := "task:" + taskID + ":intervention"
	v, err := s.inv.Query(ctx, key, func(ctx context.Context) (interface{}, error) {
		var rec backend.InterventionRecord
		path := "/api/v1/tasks/" + taskID + "/intervention"
		if err := s.client.Get(ctx, path, &rec); err != nil {
			if backend.IsNotFound(err) {
				return (*model.Intervention)(nil), nil
			}
			return nil, fmt.Errorf(
				"fetching intervention for task %s: %w", taskID, err,
			)
		}

		return &model.Intervention{
			ID:           rec.ID,
			TaskID:       rec.TaskID,
			Status:       rec.Status,
			TechnicianID: rec.TechnicianID,
			StartedAt:    normalize.ParseTime(rec.StartedAt),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Intervention), nil
}

// stepProgress fetches the intervention's step records and derives the
// progress summary.
func (s *Service) stepProgress(
	ctx context.Context,
	intervention *model.Intervention,
) (*model.WorkflowProgress, error) {
	key := "intervention:" + intervention.ID + ":progress"
	v, err := s.inv.Query(ctx, key, func(ctx context.Context) (interface{}, error) {
		var resp backend.StepProgressResponse
		path := "/api/v1/interventions/" + intervention.ID + "/progress"
		if err := s.client.Get(ctx, path, &resp); err != nil {
			return nil, fmt.Errorf(
				"fetching progress for intervention %s: %w",
				intervention.ID, err,
			)
		}
		progress := deriveProgress(&resp, intervention.Status)
		return &progress, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.WorkflowProgress), nil
}

// deriveProgress computes the progress summary from raw step records.
//
// TotalSteps defaults to 1 when the backend reports no steps, so
// downstream percentage math never divides by zero. The completion
// percentage is 100 exactly when every reported step is complete, which
// is also the only case where the derived status is "completed"; an
// incomplete intervention is capped at 99 regardless of what the backend's
// own progress_percentage claims.
func deriveProgress(
	resp *backend.StepProgressResponse,
	interventionStatus string,
) model.WorkflowProgress {
	total := len(resp.Steps)
	current := 0
	for _, step := range resp.Steps {
		if step.Completed {
			current++
		}
	}

	if total == 0 {
		total = 1
	}
	if current > total {
		current = total
	}

	if len(resp.Steps) > 0 && current == len(resp.Steps) {
		return model.WorkflowProgress{
			CurrentStep:          current,
			TotalSteps:           total,
			CompletionPercentage: 100,
			Status:               model.InterventionCompleted,
		}
	}

	pct := current * 100 / total
	if len(resp.Steps) == 0 && resp.ProgressPercentage > 0 {
		pct = int(resp.ProgressPercentage)
	}
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}

	status := model.InterventionActive
	if interventionStatus == model.InterventionPaused {
		status = model.InterventionPaused
	}

	return model.WorkflowProgress{
		CurrentStep:          current,
		TotalSteps:           total,
		CompletionPercentage: pct,
		Status:               status,
	}
}
