// Package aitest provides a scripted ai.Analyzer for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/spigell/resume-matcher/internal/ai"
)

// Reply is a canned answer for a task.
type Reply struct {
	Text string
	Err  error
}

// Call records one request made to the Stub.
type Call struct {
	Task   ai.Task
	Prompt string
}

// Stub answers every task with a fixed Reply. Score replies may also be
// chosen per prompt through ScoreFunc. It is safe for concurrent use.
type Stub struct {
	Replies   map[ai.Task]Reply
	ScoreFunc func(prompt string) (string, error)

	mu    sync.Mutex
	calls []Call
}

var _ ai.Analyzer = (*Stub)(nil)

func (s *Stub) Classify(_ context.Context, prompt string) (string, error) {
	return s.reply(ai.TaskClassify, prompt)
}

func (s *Stub) ExtractStructured(_ context.Context, task ai.Task, prompt string) (string, error) {
	return s.reply(task, prompt)
}

func (s *Stub) Score(_ context.Context, prompt string) (string, error) {
	if s.ScoreFunc != nil {
		s.record(ai.TaskScore, prompt)
		return s.ScoreFunc(prompt)
	}
	return s.reply(ai.TaskScore, prompt)
}

func (s *Stub) Generate(_ context.Context, task ai.Task, prompt string) (string, error) {
	return s.reply(task, prompt)
}

// Calls returns a copy of the recorded calls.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsFor counts the calls made for task.
func (s *Stub) CallsFor(task ai.Task) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Task == task {
			n++
		}
	}
	return n
}

func (s *Stub) reply(task ai.Task, prompt string) (string, error) {
	s.record(task, prompt)
	r := s.Replies[task]
	return r.Text, r.Err
}

func (s *Stub) record(task ai.Task, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Task: task, Prompt: prompt})
}
