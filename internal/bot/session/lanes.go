package session

import (
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// Lanes runs functions submitted under the same key one at a time, in
// submission order. Different keys run independently.
type Lanes struct {
	mu    sync.Mutex
	lanes map[uint64]*lane
}

type lane struct {
	queue   []task
	running bool
}

type task struct {
	fn   func()
	done chan error
}

// NewLanes creates an empty lane set.
func NewLanes() *Lanes {
	return &Lanes{lanes: make(map[uint64]*lane)}
}

// Submit queues fn behind every earlier submission for key and returns a
// channel that receives nil, or the recovered panic, once fn has run.
func (l *Lanes) Submit(key uint64, fn func()) <-chan error {
	t := task{fn: fn, done: make(chan error, 1)}

	l.mu.Lock()
	defer l.mu.Unlock()

	ln, ok := l.lanes[key]
	if !ok {
		ln = &lane{}
		l.lanes[key] = ln
	}

	ln.queue = append(ln.queue, t)

	if !ln.running {
		ln.running = true
		go l.drain(key, ln)
	}

	return t.done
}

// Do submits fn and waits for it to finish.
func (l *Lanes) Do(key uint64, fn func()) error {
	return <-l.Submit(key, fn)
}

// Len returns the number of keys with queued or running work.
func (l *Lanes) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.lanes)
}

func (l *Lanes) drain(key uint64, ln *lane) {
	for {
		l.mu.Lock()
		if len(ln.queue) == 0 {
			ln.running = false
			delete(l.lanes, key)
			l.mu.Unlock()

			return
		}

		t := ln.queue[0]
		ln.queue = ln.queue[1:]
		l.mu.Unlock()

		var catcher panics.Catcher
		catcher.Try(t.fn)

		t.done <- catcher.Recovered().AsError()
	}
}
