package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/engine"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/hostvm"
)

func main() {
	var (
		list        = flag.Bool("list", false, "List the status taxonomy and exit")
		statusName  = flag.String("status", "", "Status to materialize (name or code)")
		reason      = flag.String("reason", "", "Reason for the materialized error")
		kindName    = flag.String("kind", "Error", "Error kind: Error, TypeError, RangeError or SyntaxError")
		wasmFile    = flag.String("wasm", "", "Path to a guest wasm module")
		funcName    = flag.String("func", "", "Native function to call")
		argsStr     = flag.String("args", "", "Extra u32 arguments (comma-separated)")
		exports     = flag.Bool("exports", false, "List the guest's exported functions and exit")
		verbose     = flag.Bool("v", false, "Log engine and error events to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			errors.SetLogger(l)
			engine.SetLogger(l)
			defer l.Sync()
		}
	}

	var err error
	switch {
	case *interactive:
		err = runInteractive()
	case *list:
		printStatuses(os.Stdout)
	case *wasmFile != "":
		err = runGuest(*wasmFile, *funcName, *argsStr, *exports)
	case *statusName != "":
		err = runMaterialize(*statusName, *kindName, *reason)
	default:
		fmt.Fprintln(os.Stderr, "Usage: napistat -list")
		fmt.Fprintln(os.Stderr, "       napistat -status <name|code> [-kind TypeError] [-reason text]")
		fmt.Fprintln(os.Stderr, "       napistat -wasm <file.wasm> [-func name] [-args 1,2] [-exports]")
		fmt.Fprintln(os.Stderr, "       napistat -i  (interactive mode)")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printStatuses(f *os.File) {
	styled := term.IsTerminal(int(f.Fd()))
	render := func(s lipgloss.Style, text string) string {
		if styled {
			return s.Render(text)
		}
		return text
	}
	for _, st := range errors.AllStatuses() {
		fmt.Fprintf(f, "%s  %s\n",
			render(typeStyle, fmt.Sprintf("%4d", st.Code())),
			render(funcStyle, st.String()))
	}
}

func runMaterialize(statusName, kindName, reason string) error {
	status, err := parseStatus(statusName)
	if err != nil {
		return err
	}
	kind, err := parseKind(kindName)
	if err != nil {
		return err
	}
	out, err := materialize(status, kind, reason)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runGuest(wasmFile, funcName, argsStr string, exportsOnly bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	vm := hostvm.New()
	defer vm.Close()

	eng, err := engine.NewWazeroEngine(ctx, vm)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close(ctx)

	mod, err := eng.LoadModule(ctx, data)
	if err != nil {
		return err
	}

	fmt.Printf("Module: %s\n", wasmFile)
	fmt.Printf("\nExported functions:\n")
	for _, name := range mod.Exports() {
		fmt.Printf("  %s\n", name)
	}
	if exportsOnly || funcName == "" {
		return nil
	}

	args, err := parseArgs(argsStr)
	if err != nil {
		return err
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	env := vm.NewEnv()
	fmt.Printf("\nCalling %s...\n", funcName)
	callErr := inst.CallNative(ctx, env, funcName, args...)
	if callErr == nil {
		fmt.Println("Result: ok")
		return nil
	}
	fmt.Printf("Status: %v\n", callErr)
	if v, ok := vm.Pending(env); ok {
		fmt.Printf("Thrown: %s\n", describeThrown(vm, env, v))
	}
	return nil
}

func describeThrown(vm *hostvm.VM, env hostbridge.Env, v hostbridge.Value) string {
	if info, ok := vm.ErrorObject(env, v); ok {
		return formatErrorObject(info)
	}
	desc, err := errors.DescribeValue(vm, env, v)
	if err != nil {
		return err.Error()
	}
	return desc
}

func parseArgs(s string) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}
	var args []uint32
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", part, err)
		}
		args = append(args, uint32(n))
	}
	return args, nil
}
