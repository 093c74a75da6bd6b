// Package vsgerrors provides centralized error handling for the sync
// pipeline: a component/category/context wrapper around stdlib errors,
// plus the domain's stable error kinds.
package vsgerrors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"sync"
	"time"
)

// ErrorKind identifies one of the pipeline's stable failure modes.
type ErrorKind string

const (
	SourceNotFound     ErrorKind = "source-not-found"
	ExtractionEmpty    ErrorKind = "extraction-empty"
	ExternalToolFailed ErrorKind = "external-tool-failed"
	InvalidAudio       ErrorKind = "invalid-audio"
	ParseError         ErrorKind = "parse-error"
	InsufficientChunks ErrorKind = "insufficient-chunks"
	AmbiguousDelay     ErrorKind = "ambiguous-delay"
	InvalidPlan        ErrorKind = "invalid-plan"
	IoError            ErrorKind = "io-error"
	Cancelled          ErrorKind = "cancelled"
)

// Priority constants for error prioritization.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ComponentUnknown is used when the component cannot be determined.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with additional context and metadata.
type EnhancedError struct {
	Err       error
	component string
	Kind      ErrorKind
	Priority  string
	Context   map[string]any
	Timestamp time.Time
	mu        sync.RWMutex
	detected  bool
}

func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Kind == ee2.Kind
	}
	return stderrors.Is(ee.Err, target)
}

// GetComponent returns the component name, detecting it lazily if needed.
func (ee *EnhancedError) GetComponent() string {
	ee.mu.RLock()
	if ee.detected || ee.component != "" {
		component := ee.component
		ee.mu.RUnlock()
		return component
	}
	ee.mu.RUnlock()

	ee.mu.Lock()
	defer ee.mu.Unlock()
	if ee.component == "" && !ee.detected {
		ee.component = detectComponent()
		ee.detected = true
		if ee.component == "" {
			ee.component = ComponentUnknown
		}
	}
	return ee.component
}

// GetKind returns the error kind.
func (ee *EnhancedError) GetKind() ErrorKind {
	return ee.Kind
}

// GetContext returns a copy of the error context.
func (ee *EnhancedError) GetContext() map[string]any {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	if ee.Context == nil {
		return nil
	}
	cp := make(map[string]any, len(ee.Context))
	maps.Copy(cp, ee.Context)
	return cp
}

// ErrorBuilder provides a fluent interface for creating enhanced errors.
type ErrorBuilder struct {
	err       error
	component string
	kind      ErrorKind
	priority  string
	context   map[string]any
}

// New creates a new error builder wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new formatted error builder.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Kind(kind ErrorKind) *ErrorBuilder {
	eb.kind = kind
	return eb
}

func (eb *ErrorBuilder) Priority(priority string) *ErrorBuilder {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		eb.priority = priority
	default:
		if priority != "" {
			eb.priority = PriorityMedium
		}
	}
	return eb
}

func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// ExternalTool adds the conventional context for a failed subprocess.
func (eb *ErrorBuilder) ExternalTool(tool string, exitCode int, stderrTail string) *ErrorBuilder {
	return eb.Kind(ExternalToolFailed).
		Context("tool", tool).
		Context("exit_code", exitCode).
		Context("stderr_tail", stderrTail)
}

func (eb *ErrorBuilder) Build() *EnhancedError {
	component := eb.component
	detected := component != ""
	if component == "" {
		component = ComponentUnknown
		detected = true
	}
	return &EnhancedError{
		Err:       eb.err,
		component: component,
		Kind:      eb.kind,
		Priority:  eb.priority,
		Context:   eb.context,
		Timestamp: time.Now(),
		detected:  detected,
	}
}

// Component registry for dynamic component detection from the call stack.
var (
	componentRegistry = make(map[string]string)
	registryMutex     sync.RWMutex
)

// RegisterComponent registers a package path pattern with a component name.
func RegisterComponent(packagePattern, componentName string) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	componentRegistry[packagePattern] = componentName
}

func init() {
	RegisterComponent("internal/audio", "audio")
	RegisterComponent("internal/analysis/chunks", "analysis.chunks")
	RegisterComponent("internal/analysis/correlate", "analysis.correlate")
	RegisterComponent("internal/analysis/peak", "analysis.peak")
	RegisterComponent("internal/analysis/runner", "analysis.runner")
	RegisterComponent("internal/analysis/selector", "analysis.selector")
	RegisterComponent("internal/analysis/stability", "analysis.stability")
	RegisterComponent("internal/container", "container")
	RegisterComponent("internal/delay", "delay")
	RegisterComponent("internal/mux", "mux")
	RegisterComponent("internal/chapters", "chapters")
	RegisterComponent("internal/pipeline", "pipeline")
	RegisterComponent("internal/jobqueue", "jobqueue")
	RegisterComponent("internal/conf", "configuration")
	RegisterComponent("internal/datastore", "datastore")
}

func quickComponentLookup(depth int) string {
	pc, _, _, ok := runtime.Caller(depth)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	funcName := fn.Name()
	if strings.Contains(funcName, "internal/vsgerrors") {
		return ""
	}
	return lookupComponent(funcName)
}

func detectComponent() string {
	for _, depth := range []int{4, 5, 6, 7} {
		if c := quickComponentLookup(depth); c != "" && c != ComponentUnknown {
			return c
		}
	}
	return detectComponentFull()
}

func detectComponentFull() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	if n == len(pcs) {
		pcs = make([]uintptr, 32)
		n = runtime.Callers(2, pcs)
	}
	for i := range n {
		fn := runtime.FuncForPC(pcs[i])
		if fn == nil {
			continue
		}
		funcName := fn.Name()
		if strings.Contains(funcName, "internal/vsgerrors") {
			continue
		}
		if c := lookupComponent(funcName); c != ComponentUnknown {
			return c
		}
	}
	return ComponentUnknown
}

func lookupComponent(funcName string) string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	for pattern, component := range componentRegistry {
		if strings.Contains(funcName, pattern) {
			return component
		}
	}
	parts := strings.Split(funcName, "/")
	if len(parts) > 0 {
		lastPart := parts[len(parts)-1]
		if dotIndex := strings.Index(lastPart, "."); dotIndex > 0 {
			return lastPart[:dotIndex]
		}
	}
	return ComponentUnknown
}

// IsKind reports whether err is an *EnhancedError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ee *EnhancedError
	return stderrors.As(err, &ee) && ee.Kind == kind
}

// Standard library passthrough so this package can be used in place of "errors".
func NewStd(text string) error            { return stderrors.New(text) }
func Is(err, target error) bool           { return stderrors.Is(err, target) }
func As(err error, target any) bool       { return stderrors.As(err, target) }
func Unwrap(err error) error              { return stderrors.Unwrap(err) }
func Join(errs ...error) error            { return stderrors.Join(errs...) }
