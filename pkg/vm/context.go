package vm

import (
	"fmt"
	"sort"

	"github.com/hexa-core/hexascript/pkg/opcode"
)

// ActionRecord is one entry of the action log: a side-effect request
// passed back to the host simulation.
type ActionRecord struct {
	Name string `json:"name" yaml:"name"`
	Args []any  `json:"args" yaml:"args"` // int64 or string
}

// ExecutionContext is the caller-owned state a program runs against.
// Variables holds int64 or string values; any Go integer kind is accepted
// on input. Actions is append-only from the VM's point of view.
//
// A context must not be used by two runs at the same time.
type ExecutionContext struct {
	Variables map[string]any
	Actions   []ActionRecord
}

// NewExecutionContext returns an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		Variables: make(map[string]any),
	}
}

// Get returns a variable as a Value. Unset variables read as Int(0).
func (ec *ExecutionContext) Get(name string) opcode.Value {
	v, ok := ec.Variables[name]
	if !ok {
		return opcode.Int(0)
	}
	value, _ := opcode.FromAny(v)
	return value
}

// set stores a Value in its host representation.
func (ec *ExecutionContext) set(name string, v opcode.Value) {
	ec.Variables[name] = v.Any()
}

// emit appends an action to the log.
func (ec *ExecutionContext) emit(name string, args []opcode.Value) {
	hostArgs := make([]any, len(args))
	for i, a := range args {
		hostArgs[i] = a.Any()
	}
	ec.Actions = append(ec.Actions, ActionRecord{Name: name, Args: hostArgs})
}

// normalize prepares the context for a run. Missing containers are
// created; pre-existing variables are checked to be Int or String and
// rewritten as int64/string; pre-existing action arguments must be
// Int|String. Any string, including "", is a valid action name.
// Nothing is executed if validation fails.
func (ec *ExecutionContext) normalize() error {
	if ec.Variables == nil {
		ec.Variables = make(map[string]any)
	}

	names := make([]string, 0, len(ec.Variables))
	for name := range ec.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := opcode.FromAny(ec.Variables[name]); !ok {
			return NewInvalidContextError(fmt.Sprintf("variable '%s' must be an integer or string, got %T", name, ec.Variables[name]))
		}
	}
	for i, rec := range ec.Actions {
		for j, arg := range rec.Args {
			if _, ok := opcode.FromAny(arg); !ok {
				return NewInvalidContextError(fmt.Sprintf("action %d (%s) argument %d must be an integer or string, got %T", i, rec.Name, j, arg))
			}
		}
	}

	for _, name := range names {
		v, _ := opcode.FromAny(ec.Variables[name])
		ec.Variables[name] = v.Any()
	}
	for _, rec := range ec.Actions {
		for j, arg := range rec.Args {
			v, _ := opcode.FromAny(arg)
			rec.Args[j] = v.Any()
		}
	}

	return nil
}
