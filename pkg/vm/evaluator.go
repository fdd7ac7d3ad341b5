package vm

import (
	"fmt"

	"github.com/hexa-core/hexascript/pkg/opcode"
)

// Evaluate resolves an expression against the current variables.
//
// Parameters:
//   - expr: The expression to evaluate (Literal, VariableRef or BinaryExpression)
//   - ec: The context supplying variable values
//
// Returns:
//   - opcode.Value: The evaluated value
//   - error: A *RuntimeError for non-integer operands, unknown operators
//     or division by zero
func Evaluate(expr opcode.Expression, ec *ExecutionContext) (opcode.Value, error) {
	switch e := expr.(type) {
	case opcode.Literal:
		return e.Value, nil
	case opcode.VariableRef:
		return ec.Get(e.Name), nil
	case opcode.BinaryExpression:
		left, err := Evaluate(e.Left, ec)
		if err != nil {
			return opcode.Value{}, err
		}
		right, err := Evaluate(e.Right, ec)
		if err != nil {
			return opcode.Value{}, err
		}
		return applyOperator(e.Operator, left, right)
	default:
		panic(fmt.Sprintf("vm: unhandled expression type %T", expr))
	}
}

// EvaluateCondition resolves both operands of cond and applies its comparison.
// == and != accept any operands and never fail; ordering comparisons
// require integers.
func EvaluateCondition(cond opcode.Condition, ec *ExecutionContext) (bool, error) {
	left, err := Evaluate(cond.Left, ec)
	if err != nil {
		return false, err
	}
	right, err := Evaluate(cond.Right, ec)
	if err != nil {
		return false, err
	}
	return applyComparison(cond.Operator, left, right)
}

// applyOperator evaluates an arithmetic operator on two integers.
// Overflow wraps; division floors toward negative infinity.
func applyOperator(op string, left, right opcode.Value) (opcode.Value, error) {
	switch op {
	case "+", "-", "*", "/":
	default:
		return opcode.Value{}, NewUnsupportedOperatorError("operator", op)
	}

	a, b, err := integerOperands(op, left, right)
	if err != nil {
		return opcode.Value{}, err
	}

	switch op {
	case "+":
		return opcode.Int(a + b), nil
	case "-":
		return opcode.Int(a - b), nil
	case "*":
		return opcode.Int(a * b), nil
	default:
		if b == 0 {
			return opcode.Value{}, NewDivisionByZeroError()
		}
		return opcode.Int(floorDiv(a, b)), nil
	}
}

// applyComparison evaluates a comparison operator.
func applyComparison(op string, left, right opcode.Value) (bool, error) {
	switch op {
	case "==":
		return left.Equal(right), nil
	case "!=":
		return !left.Equal(right), nil
	case "<", "<=", ">", ">=":
	default:
		return false, NewUnsupportedOperatorError("comparison", op)
	}

	a, b, err := integerOperands(op, left, right)
	if err != nil {
		return false, err
	}

	switch op {
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	default:
		return a >= b, nil
	}
}

func integerOperands(op string, left, right opcode.Value) (int64, int64, error) {
	if !left.IsInt() {
		return 0, 0, NewTypeMismatchError(op, left.String())
	}
	if !right.IsInt() {
		return 0, 0, NewTypeMismatchError(op, right.String())
	}
	return left.Int, right.Int, nil
}

// floorDiv divides rounding toward negative infinity.
// The caller guarantees b != 0. MinInt64 / -1 wraps to MinInt64.
func floorDiv(a, b int64) int64 {
	if b == -1 {
		return -a
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
