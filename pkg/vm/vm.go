// Package vm provides the virtual machine for executing Hexa-Script programs.
// It implements a program-counter dispatch loop with support for:
// - Variable assignment and expression evaluation
// - Label jumps, conditional jumps and inline conditional commands
// - An action log handed back to the host simulation
// - An optional instruction budget per run
//
// The VM holds no state between runs other than the Program it was
// created with; all mutable state lives in the caller's ExecutionContext.
package vm

import (
	"fmt"
	"log/slog"

	"github.com/hexa-core/hexascript/pkg/logger"
	"github.com/hexa-core/hexascript/pkg/opcode"
)

// VM executes a compiled Program.
// A VM may be reused for any number of sequential runs.
type VM struct {
	program *opcode.Program

	// Configuration
	stepLimit int

	// Logger
	log *slog.Logger
}

// Stats summarizes a single run.
type Stats struct {
	// Steps is the number of instructions dispatched, including the
	// instruction that failed, if any.
	Steps int
}

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// WithStepLimit bounds the number of instructions a single run may
// dispatch. A limit of 0 or less means unbounded, in which case an
// unconditional backward GOTO runs forever.
func WithStepLimit(limit int) Option {
	return func(vm *VM) {
		vm.stepLimit = limit
	}
}

// New creates a new VM instance for the given Program and options.
//
// Parameters:
//   - program: The compiled Program to execute (may be nil; Run then fails)
//   - opts: Optional configuration options (logger, step limit)
//
// Returns:
//   - *VM: The initialized VM instance
func New(program *opcode.Program, opts ...Option) *VM {
	vm := &VM{
		program: program,
		log:     logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	return vm
}

// Program returns the Program this VM executes.
func (vm *VM) Program() *opcode.Program {
	return vm.program
}

// Run executes the program from pc 0 against ec until it reaches End,
// falls past the last instruction, or fails.
//
// The context is normalized before the first instruction. Mutations made
// before a failing instruction are kept.
//
// Returns:
//   - Stats: Counters for the run
//   - error: A *RuntimeError, or nil when the program halted normally
func (vm *VM) Run(ec *ExecutionContext) (Stats, error) {
	var stats Stats

	if vm.program == nil {
		return stats, NewNoProgramError()
	}
	if ec == nil {
		return stats, NewInvalidContextError("execution context is nil")
	}
	if err := ec.normalize(); err != nil {
		return stats, err
	}

	vm.log.Debug("VM run started", "instruction_count", vm.program.Len(), "step_limit", vm.stepLimit)

	pc := 0
	for pc < vm.program.Len() {
		if vm.stepLimit > 0 && stats.Steps >= vm.stepLimit {
			return stats, vm.fail(NewStepLimitError(vm.stepLimit), pc)
		}
		stats.Steps++

		inst := vm.program.At(pc)
		next, halt, err := vm.step(inst, pc, ec)
		if err != nil {
			return stats, vm.fail(err, pc)
		}
		if halt {
			break
		}
		pc = next
	}

	vm.log.Debug("VM run completed", "steps", stats.Steps, "actions", len(ec.Actions))
	return stats, nil
}

// step executes one instruction and returns the next program counter.
func (vm *VM) step(inst opcode.Instruction, pc int, ec *ExecutionContext) (int, bool, error) {
	vm.log.Debug("Executing instruction", "pc", pc, "instruction", inst)

	switch in := inst.(type) {
	case opcode.Set:
		return pc + 1, false, vm.executeSet(in, ec)
	case opcode.Goto:
		next, err := vm.jump(in.Label)
		return next, false, err
	case opcode.IfGoto:
		ok, err := EvaluateCondition(in.Cond, ec)
		if err != nil || !ok {
			return pc + 1, false, err
		}
		next, err := vm.jump(in.Label)
		return next, false, err
	case opcode.IfThen:
		ok, err := EvaluateCondition(in.Cond, ec)
		if err != nil || !ok {
			return pc + 1, false, err
		}
		return vm.executeInline(in.Inline, pc, ec)
	case opcode.Action:
		return pc + 1, false, vm.executeAction(in, ec)
	case opcode.End:
		return pc, true, nil
	default:
		panic(fmt.Sprintf("vm: unhandled instruction type %T", inst))
	}
}

// executeInline runs the THEN branch of an IfThen in place of the
// IfThen itself.
func (vm *VM) executeInline(inst opcode.InlineInstruction, pc int, ec *ExecutionContext) (int, bool, error) {
	switch in := inst.(type) {
	case opcode.Set:
		return pc + 1, false, vm.executeSet(in, ec)
	case opcode.Action:
		return pc + 1, false, vm.executeAction(in, ec)
	case opcode.Goto:
		next, err := vm.jump(in.Label)
		return next, false, err
	default:
		panic(fmt.Sprintf("vm: unhandled inline instruction type %T", inst))
	}
}

// executeSet assigns the value of an expression to a variable.
func (vm *VM) executeSet(in opcode.Set, ec *ExecutionContext) error {
	v, err := Evaluate(in.Expr, ec)
	if err != nil {
		return err
	}
	ec.set(in.Name, v)
	return nil
}

// executeAction evaluates the arguments and appends the action to the log.
func (vm *VM) executeAction(in opcode.Action, ec *ExecutionContext) error {
	args := make([]opcode.Value, len(in.Args))
	for i, a := range in.Args {
		v, err := Evaluate(a, ec)
		if err != nil {
			return err
		}
		args[i] = v
	}
	ec.emit(in.Name, args)
	vm.log.Debug("Action emitted", "name", in.Name, "args", len(args))
	return nil
}

// jump resolves a label to its program counter.
func (vm *VM) jump(label string) (int, error) {
	pc, ok := vm.program.Lookup(label)
	if !ok {
		return 0, NewUndefinedLabelError(label)
	}
	return pc, nil
}

// fail attaches the location of the failing instruction and logs it.
func (vm *VM) fail(err error, pc int) error {
	if rerr, ok := err.(*RuntimeError); ok && rerr.PC < 0 {
		err = NewRuntimeErrorWithLine(rerr.Type, rerr.Message, vm.program.At(pc).SourceLine(), pc)
	}
	vm.log.Error("VM run failed", "pc", pc, "error", err)
	return err
}
