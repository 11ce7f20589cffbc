package evaluator

import (
	"fmt"

	"github.com/SuperCuber/pilang/pkg/pilang/ast"
	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// Eval evaluates an expression against a scope and the current value.
// Evaluation never rebinds anything; the only observable side effects are
// realizations of shared lazy containers and log output.
func Eval(scope *Scope, this Object, node ast.Expression) (Object, *perrors.PiError) {
	switch node := node.(type) {
	case *ast.This:
		return this, nil

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}, nil

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &String{Value: node.Value}, nil

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value), nil

	case *ast.NullLiteral:
		return NULL, nil

	case *ast.Identifier:
		return evalIdentifier(scope, this, node)

	case *ast.PrefixExpression:
		return evalPrefixExpression(scope, this, node)

	case *ast.InfixExpression:
		return evalInfixExpression(scope, this, node)

	case *ast.ListLiteral:
		return evalListLiteral(scope, this, node)

	case *ast.DictLiteral:
		return evalDictLiteral(scope, this, node)

	case *ast.CallExpression:
		return evalCall(scope, this, node)
	}

	return nil, perrors.NewSimple(perrors.ClassParse,
		fmt.Sprintf("unknown expression node %T", node))
}

// evalIdentifier resolves a name. A bare name bound to a function that
// can take zero or one arguments is an invocation with no explicit
// arguments, which usually ends up applying the function to the current
// value through argument injection. Functions needing more arguments,
// and every other binding, resolve to the value itself.
func evalIdentifier(scope *Scope, this Object, node *ast.Identifier) (Object, *perrors.PiError) {
	value, ok := scope.Get(node.Value)
	if !ok {
		return nil, perrors.NewVariableNotFound(node.Value, scope.Names()).
			WithPosition(node.Token.Line, node.Token.Column)
	}

	if fn, isFunction := value.(*Builtin); isFunction {
		if containsInt(fn.Arities, 0) || containsInt(fn.Arities, 1) {
			return evalCall(scope, this, &ast.CallExpression{Token: node.Token, Function: node})
		}
	}

	return value, nil
}

func evalCall(scope *Scope, this Object, node *ast.CallExpression) (Object, *perrors.PiError) {
	name := node.Function.Value

	value, ok := scope.Get(name)
	if !ok {
		return nil, perrors.NewFunctionNotFound(name, scope.Names()).
			WithPosition(node.Token.Line, node.Token.Column)
	}
	function, ok := value.(*Builtin)
	if !ok {
		return nil, perrors.NewFunctionNotFound(name, scope.Names()).
			WithPosition(node.Token.Line, node.Token.Column)
	}

	// When the call is one argument short of an accepted arity, the
	// current value slots in as the first argument: `get 1` is get(this, 1).
	explicit := len(node.Arguments)
	usingThis := false
	if !containsInt(function.Arities, explicit) {
		if containsInt(function.Arities, explicit+1) {
			usingThis = true
		} else {
			return nil, perrors.NewInvalidArity(name, explicit, function.Arities).
				WithPosition(node.Token.Line, node.Token.Column)
		}
	}

	args := make([]Object, 0, explicit+1)
	if usingThis {
		args = append(args, this)
	}
	for _, argExpr := range node.Arguments {
		arg, err := Eval(scope, this, argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	return function.Fn(scope, args)
}

func evalPrefixExpression(scope *Scope, this Object, node *ast.PrefixExpression) (Object, *perrors.PiError) {
	if node.Operator != "-" {
		return nil, perrors.NewSimple(perrors.ClassSyntax,
			fmt.Sprintf("unknown prefix operator %s", node.Operator))
	}

	right, err := Eval(scope, this, node.Right)
	if err != nil {
		return nil, err
	}
	value, err := numberValue(right)
	if err != nil {
		return nil, err
	}
	return &Float{Value: -value}, nil
}

func evalInfixExpression(scope *Scope, this Object, node *ast.InfixExpression) (Object, *perrors.PiError) {
	// and/or must not evaluate the right side unless they need it
	switch node.Operator {
	case "and":
		return evalAndExpression(scope, this, node)
	case "or":
		return evalOrExpression(scope, this, node)
	}

	left, err := Eval(scope, this, node.Left)
	if err != nil {
		return nil, err
	}
	right, err := Eval(scope, this, node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case "+":
		return evalPlus(left, right)
	case "-":
		lv, rv, err := numberPair(left, right)
		if err != nil {
			return nil, err
		}
		return &Float{Value: lv - rv}, nil
	case "*":
		lv, rv, err := numberPair(left, right)
		if err != nil {
			return nil, err
		}
		return &Float{Value: lv * rv}, nil
	case "/":
		lv, rv, err := numberPair(left, right)
		if err != nil {
			return nil, err
		}
		return &Float{Value: lv / rv}, nil
	}

	return nil, perrors.NewSimple(perrors.ClassSyntax,
		fmt.Sprintf("unknown operator %s", node.Operator))
}

// evalPlus adds numbers or concatenates strings
func evalPlus(left, right Object) (Object, *perrors.PiError) {
	if ls, ok := left.(*String); ok {
		if rs, ok := right.(*String); ok {
			return &String{Value: ls.Value + rs.Value}, nil
		}
	}

	lv, lok := asNumber(left)
	rv, rok := asNumber(right)
	if lok && rok {
		return &Float{Value: lv + rv}, nil
	}

	return nil, perrors.New("TYPE-0002", map[string]any{"Expected": "[string, number]"})
}

func evalAndExpression(scope *Scope, this Object, node *ast.InfixExpression) (Object, *perrors.PiError) {
	left, err := Eval(scope, this, node.Left)
	if err != nil {
		return nil, err
	}
	lv, err := booleanValue(left)
	if err != nil {
		return nil, err
	}
	if !lv {
		return FALSE, nil
	}

	right, err := Eval(scope, this, node.Right)
	if err != nil {
		return nil, err
	}
	rv, err := booleanValue(right)
	if err != nil {
		return nil, err
	}
	return nativeBoolToBooleanObject(rv), nil
}

func evalOrExpression(scope *Scope, this Object, node *ast.InfixExpression) (Object, *perrors.PiError) {
	left, err := Eval(scope, this, node.Left)
	if err != nil {
		return nil, err
	}
	lv, err := booleanValue(left)
	if err != nil {
		return nil, err
	}
	if lv {
		return TRUE, nil
	}

	right, err := Eval(scope, this, node.Right)
	if err != nil {
		return nil, err
	}
	rv, err := booleanValue(right)
	if err != nil {
		return nil, err
	}
	return nativeBoolToBooleanObject(rv), nil
}

// evalListLiteral evaluates list elements eagerly, in order
func evalListLiteral(scope *Scope, this Object, node *ast.ListLiteral) (Object, *perrors.PiError) {
	elements := make([]Object, 0, len(node.Elements))
	for _, el := range node.Elements {
		value, err := Eval(scope, this, el)
		if err != nil {
			return nil, err
		}
		elements = append(elements, value)
	}
	return &List{Elements: elements}, nil
}

func evalDictLiteral(scope *Scope, this Object, node *ast.DictLiteral) (Object, *perrors.PiError) {
	dict := NewDict()
	for _, entry := range node.Entries {
		value, err := Eval(scope, this, entry.Value)
		if err != nil {
			return nil, err
		}
		dict.Set(entry.Key, value)
	}
	return dict, nil
}

// asNumber converts a numeric value to float64
func asNumber(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case *Integer:
		return float64(v.Value), true
	case *Float:
		return v.Value, true
	}
	return 0, false
}

// numberValue converts a numeric value to float64 or reports a type error
func numberValue(obj Object) (float64, *perrors.PiError) {
	if v, ok := asNumber(obj); ok {
		return v, nil
	}
	return 0, perrors.New("TYPE-0001", map[string]any{"Expected": "number"})
}

func numberPair(left, right Object) (float64, float64, *perrors.PiError) {
	lv, err := numberValue(left)
	if err != nil {
		return 0, 0, err
	}
	rv, err := numberValue(right)
	if err != nil {
		return 0, 0, err
	}
	return lv, rv, nil
}

func booleanValue(obj Object) (bool, *perrors.PiError) {
	if v, ok := obj.(*Boolean); ok {
		return v.Value, nil
	}
	return false, perrors.New("TYPE-0001", map[string]any{"Expected": "boolean"})
}

func containsInt(haystack []int, needle int) bool {
	for _, n := range haystack {
		if n == needle {
			return true
		}
	}
	return false
}
