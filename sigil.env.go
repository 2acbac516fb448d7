package sigil

import (
	"sort"
	"sync"

	"github.com/itsatony/go-sigil/internal"
)

// Env holds the variable bindings and functions available to a render.
// The engine treats an Env as read-only: rendering never mutates it,
// so one Env may back any number of concurrent renders. Callers should
// finish binding before the first render on a shared Env.
type Env struct {
	mu    sync.RWMutex
	vars  map[string]Value
	funcs *internal.FuncRegistry
}

// NewEnv creates an environment carrying the builtin function set
// (len, upper, lower, trim, contains, abs, round, floor, ceil, min,
// max, num, str).
func NewEnv() *Env {
	env := NewEmptyEnv()
	internal.RegisterBuiltins(env.funcs)
	return env
}

// NewEmptyEnv creates an environment with no variables and no
// functions, not even the builtins.
func NewEmptyEnv() *Env {
	return &Env{
		vars:  make(map[string]Value),
		funcs: internal.NewFuncRegistry(),
	}
}

// Bind binds name to a value, replacing any previous binding.
// It returns the Env for chaining.
func (e *Env) Bind(name string, v Value) *Env {
	e.mu.Lock()
	e.vars[name] = v
	e.mu.Unlock()
	return e
}

// BindNumber binds name to a numeric value.
func (e *Env) BindNumber(name string, v float64) *Env {
	return e.Bind(name, Number(v))
}

// BindString binds name to a string value.
func (e *Env) BindString(name string, v string) *Env {
	return e.Bind(name, String(v))
}

// BindBool binds name to a boolean value.
func (e *Env) BindBool(name string, v bool) *Env {
	return e.Bind(name, Bool(v))
}

// Unbind removes a binding. It returns true if the name was bound.
func (e *Env) Unbind(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.vars[name]; ok {
		delete(e.vars, name)
		return true
	}
	return false
}

// Has reports whether name is bound.
func (e *Env) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, ok := e.vars[name]
	return ok
}

// Resolve returns the value bound to name. This is the lookup the
// renderer uses during evaluation.
func (e *Env) Resolve(name string) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.vars[name]
	return v, ok
}

// Names returns all bound variable names in sorted order.
func (e *Env) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound variables.
func (e *Env) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.vars)
}

// RegisterFunc registers a custom function for use in expressions.
// Registering a name twice is an error; use NewEmptyEnv to build an
// environment without the builtins when a builtin name must be taken.
func (e *Env) RegisterFunc(f *Func) error {
	var fn *internal.Func
	if f != nil {
		fn = f.toInternal()
	}

	if err := e.funcs.Register(fn); err != nil {
		return newFuncRegistrationError(err)
	}
	return nil
}

// MustRegisterFunc registers a custom function and panics on error.
func (e *Env) MustRegisterFunc(f *Func) {
	if err := e.RegisterFunc(f); err != nil {
		panic(err)
	}
}

// HasFunc reports whether a function is registered under name.
func (e *Env) HasFunc(name string) bool {
	return e.funcs.Has(name)
}

// ListFuncs returns all registered function names.
func (e *Env) ListFuncs() []string {
	names := e.funcs.List()
	sort.Strings(names)
	return names
}

// FuncCount returns the number of registered functions.
func (e *Env) FuncCount() int {
	return e.funcs.Count()
}

// Clone returns an independent copy of the environment. Variable
// bindings are copied; function registrations are carried over.
func (e *Env) Clone() *Env {
	e.mu.RLock()
	defer e.mu.RUnlock()

	clone := &Env{
		vars:  make(map[string]Value, len(e.vars)),
		funcs: internal.NewFuncRegistry(),
	}
	for name, v := range e.vars {
		clone.vars[name] = v
	}
	for _, name := range e.funcs.List() {
		if fn, ok := e.funcs.Get(name); ok {
			clone.funcs.MustRegister(fn)
		}
	}
	return clone
}

// registry exposes the function table to the renderer.
func (e *Env) registry() *internal.FuncRegistry {
	return e.funcs
}
