// Package sched provides the delayed-task scheduler behind the two-phase
// deletion and typing-draft expiry. Tasks carry no state of their own: a
// task re-reads whatever it needs at fire time and decides then whether it
// still applies. There is no cancel call; a task that no longer applies is
// expected to no-op.
package sched

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a function once after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// TimerScheduler is the production scheduler, backed by real timers.
type TimerScheduler struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	pending sync.WaitGroup
}

func NewTimerScheduler() *TimerScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerScheduler{ctx: ctx, cancel: cancel}
}

// Schedule fires task once after delay. Tasks scheduled after Stop are
// dropped.
func (s *TimerScheduler) Schedule(delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.pending.Add(1)
	timer := time.NewTimer(delay)
	go func() {
		defer s.pending.Done()
		select {
		case <-timer.C:
			task()
		case <-s.ctx.Done():
			timer.Stop()
		}
	}()
}

// Stop cancels pending tasks and waits for in-flight ones to finish.
func (s *TimerScheduler) Stop() {
	s.cancel()
	s.pending.Wait()
}

// Manual is a deterministic scheduler for tests: tasks fire only when the
// clock is advanced explicitly.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []manualTask
}

type manualTask struct {
	fireAt time.Duration
	run    func()
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Schedule(delay time.Duration, task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, manualTask{fireAt: m.now + delay, run: task})
}

// Advance moves the fake clock forward and fires every task now due, in
// scheduling order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []func()
	var rest []manualTask
	for _, t := range m.tasks {
		if t.fireAt <= m.now {
			due = append(due, t.run)
		} else {
			rest = append(rest, t)
		}
	}
	m.tasks = rest
	m.mu.Unlock()

	for _, run := range due {
		run()
	}
}

// Pending reports how many tasks have not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
