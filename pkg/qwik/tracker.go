package qwik

import "fmt"

// Tracker converts property reads into subscriptions. A task body receives
// one bound to its own descriptor.
//
// Called with a trackable object alone, it subscribes the descriptor to the
// object as a whole (any property change notifies) and returns the object.
// Called with a property name, it subscribes to that property only and
// returns its current value.
//
// The target must be a trackable (proxied) object; anything else is a usage
// error and panics immediately.
type Tracker func(target any, prop ...string) any

func (c *Container) newTracker(t *Task) Tracker {
	return func(obj any, prop ...string) any {
		target, ok := c.subs.Target(obj)
		if !ok {
			panic(fmt.Sprintf("[QWIK E010] track: target of type %T is not a trackable object; wrap state in a store before tracking", obj))
		}
		if len(prop) == 0 {
			c.subs.AddSub(target, t, "")
			return obj
		}
		c.subs.AddSub(target, t, prop[0])
		return target.Peek(prop[0])
	}
}
