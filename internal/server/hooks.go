package server

import (
	"context"
	"sync"
)

// QueryTagOption is the session option carrying a caller-chosen tag.
const QueryTagOption = "godb.query.tag"

// HookContext describes the execution a hook runs for.
type HookContext struct {
	OperationID string
	SQL         string
	Conf        map[string]string
}

// Tag returns the query tag of the execution, if any.
func (hc HookContext) Tag() string {
	return hc.Conf[QueryTagOption]
}

// Hook runs after the engine has produced a result and before the operation
// is marked complete. A hook that blocks keeps the operation RUNNING; ctx is
// cancelled when the operation is.
type Hook interface {
	AfterExecute(ctx context.Context, hc HookContext) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, hc HookContext) error

// AfterExecute calls f.
func (f HookFunc) AfterExecute(ctx context.Context, hc HookContext) error {
	return f(ctx, hc)
}

// Gate is a Hook that holds executions carrying a blocked query tag until
// the tag is released.
type Gate struct {
	mu      sync.Mutex
	blocked map[string]chan struct{}
}

// NewGate returns a Gate with nothing blocked.
func NewGate() *Gate {
	return &Gate{blocked: make(map[string]chan struct{})}
}

// Block makes executions tagged with tag wait in AfterExecute.
func (g *Gate) Block(tag string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.blocked[tag]; !ok {
		g.blocked[tag] = make(chan struct{})
	}
}

// Release lets waiting and future executions tagged with tag through.
func (g *Gate) Release(tag string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.blocked[tag]; ok {
		close(ch)
		delete(g.blocked, tag)
	}
}

// AfterExecute implements Hook.
func (g *Gate) AfterExecute(ctx context.Context, hc HookContext) error {
	tag := hc.Tag()
	if tag == "" {
		return nil
	}

	g.mu.Lock()
	ch := g.blocked[tag]
	g.mu.Unlock()
	if ch == nil {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
