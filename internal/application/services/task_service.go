package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aduanatrack/core/internal/domain/entities"
	"github.com/aduanatrack/core/internal/infrastructure/logger"
	"github.com/aduanatrack/core/internal/ports"
)

// TaskService is the single source of truth for the task collection. It
// keeps the in-memory collection and the persisted document identical
// after every mutation: a mutation is applied to a copy, persisted, and
// only committed to memory when the save succeeds.
//
// All mutations serialize on one mutex, so each read-modify-write runs
// against the latest committed collection even when callers (file uploads
// in particular) interleave.
type TaskService struct {
	store  ports.StateStore
	logger *logger.Logger

	mu          sync.Mutex
	tasks       []entities.Task
	rev         uint64
	subscribers map[int]func([]entities.Task)
	nextSubID   int

	// Deliveries serialize on their own mutex so callbacks run outside
	// the collection lock, in revision order, never regressing to an
	// older snapshot.
	notifyMu  sync.Mutex
	delivered uint64
}

// NewTaskService creates a new task service
func NewTaskService(store ports.StateStore, logger *logger.Logger) *TaskService {
	return &TaskService{
		store:       store,
		logger:      logger,
		subscribers: make(map[int]func([]entities.Task)),
	}
}

// Load reads the persisted collection into memory. Absence of persisted
// state is the first-run case: the collection is seeded with one sample
// task and persisted immediately. A document that exists but fails to
// decode is an error; old state is never silently migrated or reseeded.
func (s *TaskService) Load(ctx context.Context) ([]entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if errors.Is(err, ports.ErrNoState) {
		seeded := []entities.Task{entities.SeedTask(time.Now())}
		if err := s.persistLocked(ctx, seeded); err != nil {
			return nil, fmt.Errorf("failed to persist seed state: %w", err)
		}
		s.tasks = seeded
		s.logger.Infow("No persisted state found, seeded sample task", "tasks", 1)
		return cloneTasks(s.tasks), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted state: %w", err)
	}

	var tasks []entities.Task
	if err := json.Unmarshal(doc, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode persisted state: %w", err)
	}

	s.tasks = tasks
	s.logger.Infow("Loaded persisted tasks", "tasks", len(tasks))
	return cloneTasks(s.tasks), nil
}

// Create appends a new task with a fresh unique id and an empty
// attachment sequence, persists the collection, and returns the updated
// snapshot. Fields arrive as given; the store does not validate them.
func (s *TaskService) Create(ctx context.Context, req ports.CreateTaskRequest) ([]entities.Task, error) {
	task := entities.Task{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		CustomsLocation: req.CustomsLocation,
		Status:          req.Status,
		StartDate:       req.StartDate,
		DueDate:         req.DueDate,
		AssignedTo:      req.AssignedTo,
		Attachments:     []entities.Attachment{},
		Cost:            req.Cost,
	}

	s.mu.Lock()
	next := append(cloneTasks(s.tasks), task)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to persist task collection: %w", err)
	}
	s.tasks = next
	s.rev++
	rev := s.rev
	snapshot := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.logger.Infow("Task created", "task_id", task.ID, "title", task.Title)
	s.notify(rev, snapshot)
	return snapshot, nil
}

// Update merges the present fields of req onto the task with the given
// id (shallow field replacement). An unknown id returns ErrTaskNotFound
// and leaves the collection untouched.
func (s *TaskService) Update(ctx context.Context, taskID string, req ports.UpdateTaskRequest) ([]entities.Task, error) {
	s.mu.Lock()
	idx := s.indexLocked(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, entities.ErrTaskNotFound
	}

	next := cloneTasks(s.tasks)
	mergeTask(&next[idx], req)

	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to persist task collection: %w", err)
	}
	s.tasks = next
	s.rev++
	rev := s.rev
	snapshot := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.logger.Infow("Task updated", "task_id", taskID)
	s.notify(rev, snapshot)
	return snapshot, nil
}

// AttachFile reads the file fully, encodes it as a base64 data URI and
// appends the resulting attachment to the target task. The read happens
// before the lock is taken; the collection consulted for the write is
// always the latest committed one, never a snapshot from when the upload
// began. Read failures and unknown ids leave the collection untouched.
func (s *TaskService) AttachFile(ctx context.Context, taskID string, file io.Reader, fileName, mimeType string) ([]entities.Task, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %q: %w", fileName, err)
	}

	attachment := entities.Attachment{
		ID:         uuid.NewString(),
		Name:       fileName,
		Type:       mimeType,
		Data:       "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		UploadDate: time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	idx := s.indexLocked(taskID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, entities.ErrTaskNotFound
	}

	next := cloneTasks(s.tasks)
	next[idx].Attachments = append(next[idx].Attachments, attachment)

	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to persist task collection: %w", err)
	}
	s.tasks = next
	s.rev++
	rev := s.rev
	snapshot := cloneTasks(s.tasks)
	s.mu.Unlock()

	s.logger.Infow("Attachment added", "task_id", taskID, "file", fileName, "bytes", len(data))
	s.notify(rev, snapshot)
	return snapshot, nil
}

// Snapshot returns a deep copy of the current collection.
func (s *TaskService) Snapshot() []entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Subscribe registers fn to be called with a fresh snapshot after
// successful mutations. Callbacks run outside the store's lock and see
// snapshots in commit order; when mutations race, intermediate snapshots
// may be skipped but never delivered out of order. The returned function
// cancels the subscription.
func (s *TaskService) Subscribe(fn func([]entities.Task)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *TaskService) persistLocked(ctx context.Context, tasks []entities.Task) error {
	doc, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode task collection: %w", err)
	}
	return s.store.Save(ctx, doc)
}

func (s *TaskService) indexLocked(taskID string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// notify fans the snapshot out to subscribers. Two racing mutations can
// reach this point in either order; a snapshot older than one already
// delivered is dropped so subscribers never regress to a stale collection.
func (s *TaskService) notify(rev uint64, snapshot []entities.Task) {
	s.mu.Lock()
	subs := make([]func([]entities.Task), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if rev <= s.delivered {
		return
	}
	s.delivered = rev

	for _, fn := range subs {
		fn(cloneTasks(snapshot))
	}
}

func mergeTask(task *entities.Task, req ports.UpdateTaskRequest) {
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.CustomsLocation != nil {
		task.CustomsLocation = *req.CustomsLocation
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.StartDate != nil {
		task.StartDate = *req.StartDate
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.AssignedTo != nil {
		task.AssignedTo = *req.AssignedTo
	}
	if req.Cost != nil {
		task.Cost = req.Cost
	}
}

func cloneTasks(tasks []entities.Task) []entities.Task {
	out := make([]entities.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
