package eventbus

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-facility/pkg/serrors"
)

// EventBus delivers an event to every subscriber whose handler parameters
// accept the published arguments. Handlers run synchronously on the
// publishing goroutine, in subscription order.
type EventBus interface {
	Publish(args ...any)
	PublishE(args ...any) error
	Subscribe(handler any)
	Unsubscribe(handler any)
	SubscribersCount() int
}

var (
	ErrNoSubscribers        = serrors.NewError("EVENTBUS_NO_SUBSCRIBERS", "no matching subscribers", "")
	ErrInvalidHandlerReturn = serrors.NewError("EVENTBUS_INVALID_HANDLER_RETURN", "invalid handler return signature", "")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type publisher struct {
	log *logrus.Logger

	mu       sync.RWMutex
	handlers []reflect.Value
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisher{log: log}
}

// MatchSignature reports whether handler is a func whose parameters accept args.
func MatchSignature(handler any, args []any) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			if param.Kind() != reflect.Interface && param.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		if !reflect.TypeOf(arg).AssignableTo(param) {
			return false
		}
	}
	return true
}

// Publish logs handler failures instead of returning them.
func (p *publisher) Publish(args ...any) {
	err := p.PublishE(args...)
	if err == nil || p.log == nil {
		return
	}
	if errors.Is(err, ErrNoSubscribers) {
		p.log.Debugf("eventbus: no subscribers for %s", describe(args))
		return
	}
	p.log.WithError(err).Errorf("eventbus: delivering %s", describe(args))
}

func (p *publisher) PublishE(args ...any) error {
	var (
		matched bool
		errs    []error
	)
	for _, h := range p.snapshot() {
		if !MatchSignature(h.Interface(), args) {
			continue
		}
		matched = true
		if err := call(h, argsFor(h.Type(), args)); err != nil {
			errs = append(errs, err)
		}
	}
	if !matched {
		return ErrNoSubscribers
	}
	return errors.Join(errs...)
}

func (p *publisher) Subscribe(handler any) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		panic("eventbus: handler must be a function")
	}
	p.mu.Lock()
	p.handlers = append(p.handlers, v)
	p.mu.Unlock()
}

// Unsubscribe removes the first subscription of handler. Funcs are compared
// by code pointer, so two closures from the same literal are indistinguishable.
func (p *publisher) Unsubscribe(handler any) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, h := range p.handlers {
		if h.Pointer() == v.Pointer() {
			p.handlers = append(p.handlers[:i:i], p.handlers[i+1:]...)
			return
		}
	}
}

func (p *publisher) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers)
}

func (p *publisher) snapshot() []reflect.Value {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]reflect.Value(nil), p.handlers...)
}

func call(h reflect.Value, in []reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler %s panicked: %v", h.Type(), r)
		}
	}()

	out := h.Call(in)
	switch {
	case len(out) == 0:
		return nil
	case len(out) > 1 || out[0].Type() != errorType:
		return fmt.Errorf("%w: handler %s", ErrInvalidHandlerReturn, h.Type())
	case out[0].IsNil():
		return nil
	default:
		return out[0].Interface().(error)
	}
}

// argsFor converts args to call values; untyped nils become typed zeros.
func argsFor(t reflect.Type, args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(t.In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	return in
}

func describe(args []any) string {
	if len(args) == 0 {
		return "<no args>"
	}
	return fmt.Sprintf("%T", args[0])
}
