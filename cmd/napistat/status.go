package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/hostvm"
)

var kinds = []errors.ThrowableKind{
	errors.KindError,
	errors.KindTypeError,
	errors.KindRangeError,
	errors.KindSyntaxError,
}

// parseStatus accepts a status name (case-insensitive) or a raw code.
func parseStatus(s string) (errors.Status, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return errors.StatusFromCode(hostbridge.Code(n)), nil
	}
	for _, st := range errors.AllStatuses() {
		if strings.EqualFold(st.String(), s) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func parseKind(s string) (errors.ThrowableKind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.KindError, nil
	}
	for _, k := range kinds {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown error kind %q", s)
}

// materialize builds the host exception a native function would throw for
// status and reason, and renders it.
func materialize(status errors.Status, kind errors.ThrowableKind, reason string) (string, error) {
	vm := hostvm.New()
	defer vm.Close()
	env := vm.NewEnv()

	v, err := errors.NewThrowable(errors.New(status, reason), kind).Materialize(vm, env)
	if err != nil {
		return "", err
	}
	info, ok := vm.ErrorObject(env, v)
	if !ok {
		return "", fmt.Errorf("materialized value is not an error object")
	}
	return formatErrorObject(info), nil
}

func formatErrorObject(info hostvm.ErrorObject) string {
	var b strings.Builder
	b.WriteString(info.Kind)
	if info.HasCode {
		b.WriteString(" [" + info.Code + "]")
	}
	if info.Message != "" {
		b.WriteString(": " + info.Message)
	}
	return b.String()
}
