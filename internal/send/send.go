// Package send forwards rendered emails to a delivery backend. A configured
// send function takes precedence; without one the dispatcher calls the
// nge:send hook so applications can plug in their own transport.
package send

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/hooks"
)

// HookName is the default hook called when no send function is configured.
const HookName = "nge:send"

var (
	ErrSendFailed     = errors.New("failed to send email")
	ErrInvalidConfig  = errors.New("invalid send configuration")
	ErrInvalidMessage = errors.New("invalid message")
)

// Func delivers one rendered email. data is the request body that produced html.
type Func func(ctx context.Context, html string, data literal.Value) error

// Payload is handed to hook handlers.
type Payload struct {
	HTML string
	Data literal.Value
}

type Dispatcher struct {
	fn     Func
	hooks  *hooks.Registry
	hook   string
	logger *slog.Logger
}

// NewDispatcher returns a dispatcher that prefers fn and falls back to the
// HookName hook in registry. Both may be nil.
func NewDispatcher(fn Func, registry *hooks.Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{fn: fn, hooks: registry, hook: HookName, logger: logger}
}

// WithHook makes the dispatcher fall back to the named hook instead of
// HookName. An empty name keeps the current hook.
func (d *Dispatcher) WithHook(name string) *Dispatcher {
	if name != "" {
		d.hook = name
	}
	return d
}

// Hook returns the name of the fallback hook.
func (d *Dispatcher) Hook() string {
	return d.hook
}

// Dispatch delivers html. Having neither a send function nor a hook handler
// is not an error; the email is only logged.
func (d *Dispatcher) Dispatch(ctx context.Context, html string, data literal.Value) error {
	if d.fn != nil {
		if err := d.fn(ctx, html, data); err != nil {
			return errors.Join(ErrSendFailed, err)
		}
		return nil
	}
	if d.hooks == nil || !d.hooks.Has(d.hook) {
		d.logger.Info("No send handler configured, email not delivered", "hook", d.hook, "bytes", len(html))
		return nil
	}
	if err := d.hooks.Call(ctx, d.hook, Payload{HTML: html, Data: data}); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// HookHandler adapts fn to a send hook handler.
func HookHandler(fn Func) hooks.Handler {
	return func(ctx context.Context, payload any) error {
		p, ok := payload.(Payload)
		if !ok {
			return fmt.Errorf("%w: unexpected hook payload %T", ErrInvalidMessage, payload)
		}
		return fn(ctx, p.HTML, p.Data)
	}
}
