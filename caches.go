package dynamoval

import (
	"reflect"
	"sync"
)

// cache memoizes the compiled codec func for each reflect.Type.
//
// A type being compiled is published as a nil entry first, so that a
// recursive type (a struct containing itself behind a pointer or
// slice) observes the in-progress marker and receives an indirect
// func from onRecursive instead of recursing forever. The indirect
// func resolves the real entry at call time, by which point the build
// has completed.
type cache[V any] struct {
	mk          func(reflect.Type) V
	onRecursive func(reflect.Type) V
	m           sync.Map
}

func (c *cache[V]) Init(mk, onRecursive func(reflect.Type) V) {
	c.mk = mk
	c.onRecursive = onRecursive
}

func (c *cache[V]) Get(t reflect.Type) V {
	ent, loaded := c.m.LoadOrStore(t, nil)
	if !loaded {
		ret := c.mk(t)
		c.m.CompareAndSwap(t, nil, ret)
		return ret
	}
	if ent == nil {
		return c.onRecursive(t)
	}
	return ent.(V)
}
