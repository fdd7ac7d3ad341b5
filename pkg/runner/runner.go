// Package runner provides the host-facing API of the Hexa-Script interpreter.
//
// A host loads a script once and then executes it once per simulation
// tick, supplying the actor's ExecutionContext each time:
//
//	r := runner.New()
//	if err := r.Load(source); err != nil {
//		// *compiler.CompileError; the previous program stays active
//	}
//	ec := vm.NewExecutionContext()
//	if err := r.Execute(ec); err != nil {
//		// *vm.RuntimeError
//	}
//	for _, a := range ec.Actions {
//		// hand a.Name / a.Args to the simulation
//	}
//
// A Runner must not be used from more than one goroutine at a time.
package runner

import (
	"log/slog"

	"github.com/hexa-core/hexascript/pkg/compiler"
	"github.com/hexa-core/hexascript/pkg/logger"
	"github.com/hexa-core/hexascript/pkg/opcode"
	"github.com/hexa-core/hexascript/pkg/vm"
)

// Runner holds the currently loaded program.
type Runner struct {
	machine *vm.VM

	stepLimit int
	log       *slog.Logger
}

// Option is a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger sets a custom logger for compilation and execution.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithStepLimit bounds the number of instructions one Execute call may
// dispatch. 0 means unbounded.
func WithStepLimit(limit int) Option {
	return func(r *Runner) {
		r.stepLimit = limit
	}
}

// New creates a Runner with no program loaded.
func New(opts ...Option) *Runner {
	r := &Runner{
		log: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load compiles source and makes it the active program.
// On failure the previously loaded program, if any, stays active and the
// *compiler.CompileError is returned.
func (r *Runner) Load(source string) error {
	program, err := compiler.CompileWithOptions(source, compiler.CompileOptions{Logger: r.log})
	if err != nil {
		return err
	}
	r.LoadProgram(program)
	return nil
}

// LoadProgram makes an already compiled program the active one.
// A nil program unloads; Execute then fails with NO_PROGRAM.
func (r *Runner) LoadProgram(program *opcode.Program) {
	if program == nil {
		r.machine = nil
		r.log.Debug("Program unloaded")
		return
	}
	r.machine = vm.New(program, vm.WithLogger(r.log), vm.WithStepLimit(r.stepLimit))
	r.log.Debug("Program loaded", "instruction_count", program.Len(), "label_count", len(program.Labels))
}

// Program returns the active program, or nil if nothing has been loaded.
func (r *Runner) Program() *opcode.Program {
	if r.machine == nil {
		return nil
	}
	return r.machine.Program()
}

// Execute runs the active program against ec, mutating it in place.
// It returns a *vm.RuntimeError when no program is loaded or the run fails;
// mutations made before the failure are kept.
func (r *Runner) Execute(ec *vm.ExecutionContext) error {
	_, err := r.ExecuteWithStats(ec)
	return err
}

// ExecuteWithStats is Execute that also reports run counters.
func (r *Runner) ExecuteWithStats(ec *vm.ExecutionContext) (vm.Stats, error) {
	if r.machine == nil {
		return vm.Stats{}, vm.NewNoProgramError()
	}
	return r.machine.Run(ec)
}
