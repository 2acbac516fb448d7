package internal

import (
	"fmt"
	"sync"
)

// Func represents a callable function in expressions
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      func(args []Value) (Value, error)
}

// FuncRegistry manages registered functions
type FuncRegistry struct {
	funcs map[string]*Func
	mu    sync.RWMutex
}

// NewFuncRegistry creates a new function registry
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{
		funcs: make(map[string]*Func),
	}
}

// Register adds a function to the registry
func (r *FuncRegistry) Register(f *Func) error {
	if f == nil {
		return NewFuncRegistryError(ErrMsgFuncNilFunc, "")
	}
	if f.Name == "" {
		return NewFuncRegistryError(ErrMsgFuncEmptyName, "")
	}
	if f.Fn == nil {
		return NewFuncRegistryError(ErrMsgFuncNilImpl, f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[f.Name]; exists {
		return NewFuncRegistryError(ErrMsgFuncAlreadyExists, f.Name)
	}

	r.funcs[f.Name] = f
	return nil
}

// MustRegister adds a function and panics on error
func (r *FuncRegistry) MustRegister(f *Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Get retrieves a function by name
func (r *FuncRegistry) Get(name string) (*Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.funcs[name]
	return f, ok
}

// Has checks if a function is registered
func (r *FuncRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.funcs[name]
	return ok
}

// Call invokes a function by name with the given arguments. Failures
// come back typed so callers can classify them: *FuncNotFoundError,
// *FuncArityError, or *FuncExecError wrapping whatever Fn returned.
func (r *FuncRegistry) Call(name string, args []Value) (Value, error) {
	r.mu.RLock()
	f, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return Value{}, NewFuncNotFoundError(name)
	}

	argCount := len(args)
	if argCount < f.MinArgs {
		return Value{}, NewFuncArityError(ErrMsgFuncTooFewArgs, name, f.MinArgs, argCount)
	}
	if f.MaxArgs >= 0 && argCount > f.MaxArgs {
		return Value{}, NewFuncArityError(ErrMsgFuncTooManyArgs, name, f.MaxArgs, argCount)
	}

	result, err := f.Fn(args)
	if err != nil {
		return Value{}, NewFuncExecError(name, err)
	}

	return result, nil
}

// List returns all registered function names
func (r *FuncRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered functions
func (r *FuncRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.funcs)
}

// FuncRegistryError represents a function registration error
type FuncRegistryError struct {
	Message  string
	FuncName string
}

// NewFuncRegistryError creates a new function registry error
func NewFuncRegistryError(message, funcName string) *FuncRegistryError {
	return &FuncRegistryError{
		Message:  message,
		FuncName: funcName,
	}
}

// Error implements the error interface
func (e *FuncRegistryError) Error() string {
	if e.FuncName != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.FuncName)
	}
	return e.Message
}

// FuncNotFoundError reports a call to an unregistered function
type FuncNotFoundError struct {
	FuncName string
}

// NewFuncNotFoundError creates a new function-not-found error
func NewFuncNotFoundError(funcName string) *FuncNotFoundError {
	return &FuncNotFoundError{FuncName: funcName}
}

// Error implements the error interface
func (e *FuncNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMsgFuncNotFound, e.FuncName)
}

// FuncArityError reports an argument count outside the declared range
type FuncArityError struct {
	Message  string
	FuncName string
	Expected int
	Actual   int
}

// NewFuncArityError creates a new function arity error
func NewFuncArityError(message, funcName string, expected, actual int) *FuncArityError {
	return &FuncArityError{
		Message:  message,
		FuncName: funcName,
		Expected: expected,
		Actual:   actual,
	}
}

// Error implements the error interface
func (e *FuncArityError) Error() string {
	return fmt.Sprintf("%s: %s (expected %d, got %d)", e.Message, e.FuncName, e.Expected, e.Actual)
}

// FuncExecError represents a failure inside a function body
type FuncExecError struct {
	FuncName string
	Cause    error
}

// NewFuncExecError creates a new function execution error
func NewFuncExecError(funcName string, cause error) *FuncExecError {
	return &FuncExecError{
		FuncName: funcName,
		Cause:    cause,
	}
}

// Error implements the error interface
func (e *FuncExecError) Error() string {
	return fmt.Sprintf("function %s failed: %v", e.FuncName, e.Cause)
}

// Unwrap returns the underlying error
func (e *FuncExecError) Unwrap() error {
	return e.Cause
}

// Function error messages
const (
	ErrMsgFuncNilFunc       = "function cannot be nil"
	ErrMsgFuncNilImpl       = "function implementation cannot be nil"
	ErrMsgFuncEmptyName     = "function name cannot be empty"
	ErrMsgFuncAlreadyExists = "function already registered"
	ErrMsgFuncNotFound      = "function not found"
	ErrMsgFuncTooFewArgs    = "too few arguments"
	ErrMsgFuncTooManyArgs   = "too many arguments"
	ErrMsgFuncExpectedStr   = "expected string argument"
	ErrMsgFuncExpectedNum   = "expected number argument"
	ErrMsgFuncNotNumeric    = "string is not a valid number"
)

// Numeric constants for conversions
const (
	FloatFormatFlag   = 'f'
	FloatPrecisionAll = -1
	FloatBitSize64    = 64
)

// Built-in function names
const (
	FuncNameLen      = "len"
	FuncNameUpper    = "upper"
	FuncNameLower    = "lower"
	FuncNameTrim     = "trim"
	FuncNameContains = "contains"
	FuncNameAbs      = "abs"
	FuncNameRound    = "round"
	FuncNameFloor    = "floor"
	FuncNameCeil     = "ceil"
	FuncNameMin      = "min"
	FuncNameMax      = "max"
	FuncNameNum      = "num"
	FuncNameStr      = "str"
)
