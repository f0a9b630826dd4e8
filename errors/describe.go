package errors

import (
	"fmt"

	"github.com/wippyai/hostbridge"
)

type describer func(ins hostbridge.Inspector, env hostbridge.Env, v hostbridge.Value, t hostbridge.ValueType) (string, error)

// describers maps a value kind to its diagnostic rendering. Kinds without
// an entry render as their type name.
var describers = map[hostbridge.ValueType]describer{
	hostbridge.TypeFunction: describeFunction,
	hostbridge.TypeObject:   describeObject,
	hostbridge.TypeBoolean:  describeScalar,
	hostbridge.TypeNumber:   describeScalar,
	hostbridge.TypeBigInt:   describeScalar,
}

// DescribeValue renders v for a type-mismatch message:
//
//	function        "function name(..) " or "function anonymous(..) "
//	object          "Object {json}"
//	boolean/number  "Number 42 "
//	anything else   the type name, e.g. "Undefined"
func DescribeValue(ins hostbridge.Inspector, env hostbridge.Env, v hostbridge.Value) (string, error) {
	t, code := ins.TypeOf(env, v)
	if err := CheckStatus(code); err != nil {
		return "", err
	}
	d, ok := describers[t]
	if !ok {
		return t.String(), nil
	}
	return d(ins, env, v, t)
}

func describeFunction(ins hostbridge.Inspector, env hostbridge.Env, v hostbridge.Value, _ hostbridge.ValueType) (string, error) {
	name, code := ins.FunctionName(env, v)
	if err := CheckStatus(code); err != nil {
		return "", err
	}
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("function %s(..) ", name), nil
}

func describeObject(ins hostbridge.Inspector, env hostbridge.Env, v hostbridge.Value, _ hostbridge.ValueType) (string, error) {
	s, code := ins.Stringify(env, v)
	if err := CheckStatus(code); err != nil {
		return "", err
	}
	return "Object " + s, nil
}

func describeScalar(ins hostbridge.Inspector, env hostbridge.Env, v hostbridge.Value, t hostbridge.ValueType) (string, error) {
	s, code := ins.CoerceToString(env, v)
	if err := CheckStatus(code); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s ", t, s), nil
}
