package server

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/railchess/aarc2rc"
)

type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	}
	return "unknown"
}

// Task is one queued conversion. The cancel flag is shared with the
// converter goroutine, which polls it at enumeration checkpoints.
type Task struct {
	Key         string
	Status      Status
	Result      json.RawMessage
	ErrMessage  string
	CreatedAt   time.Time
	CompletedAt time.Time
	Cancel      *atomic.Bool

	AARC   json.RawMessage
	Config json.RawMessage
}

// TaskView is a point-in-time snapshot handed out to handlers.
type TaskView struct {
	Key        string
	Status     Status
	Result     json.RawMessage
	ErrMessage string
}

const (
	defaultConvertTimeout = 15 * time.Second
	defaultGraceTimeout   = 500 * time.Millisecond
	defaultRetention      = 24 * time.Hour
	cleanupInterval       = time.Hour
)

// Server owns the task map and the FIFO work queue. A single worker
// goroutine drains the queue; conversions run on their own goroutine so the
// worker can enforce the dispatch deadline.
type Server struct {
	mu    sync.Mutex
	tasks map[string]*Task

	queueMu   sync.Mutex
	queueCond *sync.Cond
	queue     []*Task
	closed    bool

	convertTimeout time.Duration
	graceTimeout   time.Duration
	retention      time.Duration

	now     func() time.Time
	convert func(aarc, config json.RawMessage, cancel *atomic.Bool) (json.RawMessage, error)
}

func New() *Server {
	s := &Server{
		tasks:          make(map[string]*Task),
		convertTimeout: defaultConvertTimeout,
		graceTimeout:   defaultGraceTimeout,
		retention:      defaultRetention,
		now:            time.Now,
		convert:        runConversion,
	}
	s.queueCond = sync.NewCond(&s.queueMu)
	return s
}

// runConversion builds the map and runs the pipeline, returning the RC
// result as JSON.
func runConversion(aarc, config json.RawMessage, cancel *atomic.Bool) (json.RawMessage, error) {
	m, err := aarc2rc.BuildMap(aarc, config)
	if err != nil {
		return nil, err
	}
	rcmap, err := aarc2rc.ConvertToRC(m, cancel)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rcmap)
}

// Start launches the worker and the cleanup daemon.
func (s *Server) Start() {
	go s.workerLoop()
	go s.cleanupLoop()
}

// Close stops the worker after the queue drains.
func (s *Server) Close() {
	s.queueMu.Lock()
	s.closed = true
	s.queueMu.Unlock()
	s.queueCond.Broadcast()
}

func generateKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Enqueue registers a new pending task and hands it to the worker.
func (s *Server) Enqueue(aarc, config json.RawMessage) *Task {
	task := &Task{
		Key:       generateKey(),
		Status:    StatusPending,
		CreatedAt: s.now(),
		Cancel:    &atomic.Bool{},
		AARC:      aarc,
		Config:    config,
	}

	s.mu.Lock()
	s.tasks[task.Key] = task
	s.mu.Unlock()

	s.queueMu.Lock()
	s.queue = append(s.queue, task)
	s.queueMu.Unlock()
	s.queueCond.Signal()

	return task
}

// Lookup returns a snapshot of the task with the given key.
func (s *Server) Lookup(key string) (TaskView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[key]
	if !ok {
		return TaskView{}, false
	}
	return TaskView{
		Key:        task.Key,
		Status:     task.Status,
		Result:     task.Result,
		ErrMessage: task.ErrMessage,
	}, true
}

func (s *Server) workerLoop() {
	for {
		s.queueMu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.queueCond.Wait()
		}
		if s.closed && len(s.queue) == 0 {
			s.queueMu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		s.process(task)
	}
}

type conversionResult struct {
	data json.RawMessage
	err  error
}

// process runs one conversion under the dispatch deadline. On timeout the
// cancel flag is raised and the converter goroutine gets a short grace
// period before being abandoned.
func (s *Server) process(task *Task) {
	s.setStatus(task, StatusProcessing)

	done := make(chan conversionResult, 1)
	go func() {
		data, err := s.convert(task.AARC, task.Config, task.Cancel)
		done <- conversionResult{data: data, err: err}
	}()

	var res conversionResult
	select {
	case res = <-done:
	case <-time.After(s.convertTimeout):
		task.Cancel.Store(true)
		select {
		case <-done:
		case <-time.After(s.graceTimeout):
			log.Printf("task %s: converter did not exit within grace period, abandoning", task.Key)
		}
		s.finish(task, StatusTimeout, nil, "Conversion took longer than 15 seconds")
		return
	}

	switch {
	case res.err == aarc2rc.ErrCancelled:
		s.finish(task, StatusTimeout, nil, "Conversion took longer than 15 seconds")
	case res.err != nil:
		s.finish(task, StatusFailed, nil, res.err.Error())
	default:
		s.finish(task, StatusCompleted, res.data, "")
	}
}

func (s *Server) setStatus(task *Task, status Status) {
	s.mu.Lock()
	task.Status = status
	s.mu.Unlock()
}

func (s *Server) finish(task *Task, status Status, result json.RawMessage, errMessage string) {
	s.mu.Lock()
	task.Status = status
	task.Result = result
	task.ErrMessage = errMessage
	task.CompletedAt = s.now()
	s.mu.Unlock()
}

func (s *Server) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.removeExpired()
	}
}

// removeExpired drops finished tasks older than the retention window.
func (s *Server) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := s.now().Add(-s.retention)
	for key, task := range s.tasks {
		switch task.Status {
		case StatusCompleted, StatusFailed, StatusTimeout:
			if task.CompletedAt.Before(deadline) {
				delete(s.tasks, key)
			}
		}
	}
}
