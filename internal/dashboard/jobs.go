package dashboard

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusSubmitted JobStatus = "submitted"
	StatusExecuting JobStatus = "executing"
	StatusCompleted JobStatus = "completed"
	StatusError     JobStatus = "error"
)

const (
	initialProgress = 10
	analyzingStatus = "We're analyzing the website and generating AI strategies. This process may take several minutes to complete."
)

// Job tracks one analysis request until the backend has written its final proposal.
type Job struct {
	Token       string    `json:"token"`
	CompanyName string    `json:"companyName"`
	CompanyURL  string    `json:"companyUrl,omitempty"`
	Company     string    `json:"company"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Done reports whether the job has reached a terminal status.
func (j Job) Done() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

func (s *JobStore) Create(companyName, companyURL, company string) Job {
	now := s.now()
	job := &Job{
		Token:       uuid.NewString(),
		CompanyName: companyName,
		CompanyURL:  companyURL,
		Company:     company,
		Status:      StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.jobs[job.Token] = job
	s.mu.Unlock()
	return *job
}

func (s *JobStore) Get(token string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[token]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Start marks a job as waiting on the backend.
func (s *JobStore) Start(token string) bool {
	return s.update(token, func(j *Job) {
		j.Status = StatusExecuting
		j.Progress = initialProgress
		j.Message = analyzingStatus
	})
}

// Advance moves an executing job's progress one step.
func (s *JobStore) Advance(token string, progress int) bool {
	return s.update(token, func(j *Job) {
		j.Progress = progress
	})
}

func (s *JobStore) Complete(token string) bool {
	return s.update(token, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
		j.Message = "Analysis complete"
		j.Error = ""
	})
}

func (s *JobStore) Fail(token, reason string) bool {
	return s.update(token, func(j *Job) {
		j.Status = StatusError
		j.Error = reason
		j.Message = ""
	})
}

// update applies fn unless the job is missing or already terminal.
func (s *JobStore) update(token string, fn func(*Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[token]
	if !ok || job.Done() {
		return false
	}
	fn(job)
	job.UpdatedAt = s.now()
	return true
}

// Executing returns the jobs still waiting on the backend, oldest first.
func (s *JobStore) Executing() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.Status == StatusExecuting {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Snapshot copies every job for persistence.
func (s *JobStore) Snapshot() map[string]*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Job, len(s.jobs))
	for token, job := range s.jobs {
		cp := *job
		out[token] = &cp
	}
	return out
}

// Restore replaces the store's jobs with a persisted set.
func (s *JobStore) Restore(jobs map[string]*Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make(map[string]*Job, len(jobs))
	for token, job := range jobs {
		if job == nil {
			continue
		}
		cp := *job
		cp.Token = token
		s.jobs[token] = &cp
	}
}
