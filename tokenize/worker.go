package tokenize

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrBusy is returned by Submit while a query is in progress.
var ErrBusy = errors.New("tokenize: query already in progress")

// State is the worker's query state as seen by a polling caller.
type State int

const (
	NotStarted State = iota
	InProgress
	Ready
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Ready:
		return "ready"
	default:
		return "not started"
	}
}

// Splitter produces raw units; *Segmenter implements it.
type Splitter interface {
	Segment(text string) []Token
}

// Result is the terminal value of one query.
type Result struct {
	Tokens []Token
	Err    error
}

// Job is one submitted query. Its result is published once, when Done is
// closed.
type Job struct {
	Text   string
	done   chan struct{}
	result Result
}

func (j *Job) Done() <-chan struct{} { return j.done }

// Result returns the result if the job has finished.
func (j *Job) Result() (Result, bool) {
	select {
	case <-j.done:
		return j.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the job finishes or ctx is done. Cancelling ctx does not
// stop the job.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		return j.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Worker runs segment-then-merge off the caller's goroutine, one query at a
// time.
type Worker struct {
	split  Splitter
	merger *Merger
	log    *logrus.Logger

	mu    sync.Mutex
	state State
	job   *Job
}

func NewWorker(split Splitter, merger *Merger, log *logrus.Logger) *Worker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Worker{split: split, merger: merger, log: log}
}

// State returns the state of the most recent query.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Last returns the most recently submitted job, or nil.
func (w *Worker) Last() *Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.job
}

// Submit starts a query for text. It fails with ErrBusy, starting nothing,
// while another query is in progress.
func (w *Worker) Submit(text string) (*Job, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == InProgress {
		return nil, ErrBusy
	}
	job := &Job{Text: text, done: make(chan struct{})}
	w.state = InProgress
	w.job = job
	go w.run(job)
	return job, nil
}

func (w *Worker) run(job *Job) {
	start := time.Now()
	units := w.split.Segment(job.Text)
	tokens, err := w.merger.Merge(units)
	job.result = Result{Tokens: tokens, Err: err}

	entry := w.log.WithFields(logrus.Fields{
		"units":   len(units),
		"tokens":  len(tokens),
		"elapsed": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Error("query failed")
	} else {
		entry.Debug("query ready")
	}

	w.mu.Lock()
	w.state = Ready
	w.mu.Unlock()
	close(job.done)
}
