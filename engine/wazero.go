package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/errors"
)

// DefaultModuleName is the import module guests use for host functions.
const DefaultModuleName = "napi"

// WazeroEngine runs guest modules against a host ABI.
type WazeroEngine struct {
	runtime  wazero.Runtime
	abi      hostbridge.ABI
	name     string
	hostMu   sync.Mutex
	hostDone bool
}

// Config holds configuration for engine creation
type Config struct {
	// ModuleName is the import module name of the host functions.
	// Empty means DefaultModuleName.
	ModuleName string

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context, abi hostbridge.ABI) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, abi, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, abi hostbridge.ABI, cfg *Config) (*WazeroEngine, error) {
	if abi == nil {
		return nil, fmt.Errorf("engine: nil host ABI")
	}
	runtimeCfg := wazero.NewRuntimeConfig()
	name := DefaultModuleName
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.ModuleName != "" {
			name = cfg.ModuleName
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &WazeroEngine{runtime: runtime, abi: abi, name: name}, nil
}

// ABI returns the host ABI guests are bound to.
func (e *WazeroEngine) ABI() hostbridge.ABI {
	return e.abi
}

// ModuleName returns the import module name of the host functions.
func (e *WazeroEngine) ModuleName() string {
	return e.name
}

// LoadModule compiles a guest module.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte) (*WazeroModule, error) {
	if err := e.initHostModule(ctx); err != nil {
		return nil, err
	}
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	return &WazeroModule{engine: e, compiled: compiled}, nil
}

func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// initHostModule instantiates the host module once per engine.
func (e *WazeroEngine) initHostModule(ctx context.Context) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()
	if e.hostDone {
		return nil
	}

	builder := e.runtime.NewHostModuleBuilder(e.name)
	funcs := e.hostFuncs()
	for _, hf := range funcs {
		params := make([]api.ValueType, len(hf.params))
		for i := range params {
			params[i] = api.ValueTypeI32
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(hf.fn, params, []api.ValueType{api.ValueTypeI32}).
			WithParameterNames(hf.params...).
			Export(hf.name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate host module %q: %w", e.name, err)
	}

	Logger().Debug("host module ready",
		zap.String("module", e.name),
		zap.Int("functions", len(funcs)))
	e.hostDone = true
	return nil
}

// WazeroModule is a compiled guest module
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
}

// InstanceConfig holds configuration for module instantiation
type InstanceConfig struct {
	Name string
}

// Exports returns the names of the functions the guest exports, sorted.
func (m *WazeroModule) Exports() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *WazeroModule) Instantiate(ctx context.Context) (*WazeroInstance, error) {
	return m.InstantiateWithConfig(ctx, nil)
}

// InstantiateWithConfig creates an instance with custom configuration
func (m *WazeroModule) InstantiateWithConfig(ctx context.Context, cfg *InstanceConfig) (*WazeroInstance, error) {
	modConfig := wazero.NewModuleConfig()
	if cfg != nil && cfg.Name != "" {
		modConfig = modConfig.WithName(cfg.Name)
	} else {
		modConfig = modConfig.WithName("") // anonymous for parallel instantiation
	}

	instance, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, fmt.Errorf("instantiate failed: %w", err)
	}

	inst := &WazeroInstance{
		module:    m,
		instance:  instance,
		funcCache: make(map[string]api.Function),
	}
	if mem := instance.Memory(); mem != nil {
		inst.memory = &WazeroMemory{mem: mem}
	}
	return inst, nil
}

func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// WazeroInstance is a running guest.
// It is NOT safe for concurrent use from multiple goroutines, matching the
// single-threaded affinity of host environments.
type WazeroInstance struct {
	instance  api.Module
	memory    *WazeroMemory
	funcCache map[string]api.Function
	module    *WazeroModule
}

func (i *WazeroInstance) exportedFunction(name string) api.Function {
	if fn, ok := i.funcCache[name]; ok {
		return fn
	}
	fn := i.instance.ExportedFunction(name)
	if fn != nil {
		i.funcCache[name] = fn
	}
	return fn
}

// Memory returns the guest's linear memory, or nil if it exports none.
func (i *WazeroInstance) Memory() *WazeroMemory {
	return i.memory
}

// Call invokes an export with raw parameters.
func (i *WazeroInstance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := i.exportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("function %q not found", name)
	}
	return fn.Call(ctx, params...)
}

// CallNative invokes a native function exported by the guest under env.
//
// A failure of any kind is thrown into env and returned: a non-ok status
// through CheckPendingException, a trap or a missing export as a new error.
// A nil return means the function succeeded and nothing was thrown.
func (i *WazeroInstance) CallNative(ctx context.Context, env hostbridge.Env, name string, args ...uint32) error {
	abi := i.module.engine.abi

	fn := i.exportedFunction(name)
	if fn == nil {
		return errors.Raise(abi, env, errors.Newf(errors.StatusFunctionExpected, "native function %q not found", name))
	}
	if want := len(fn.Definition().ParamTypes()); want != len(args)+1 {
		return errors.Raise(abi, env, errors.Newf(errors.StatusInvalidArg,
			"native function %q takes %d arguments, got %d", name, want-1, len(args)))
	}

	params := make([]uint64, 0, len(args)+1)
	params = append(params, api.EncodeU32(uint32(env)))
	for _, a := range args {
		params = append(params, api.EncodeU32(a))
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		Logger().Warn("native call trapped",
			zap.String("function", name),
			zap.Uint32("env", uint32(env)),
			zap.Error(err))
		return errors.Raise(abi, env, errors.Wrap(errors.StatusGenericFailure, err, fmt.Sprintf("call %s: %v", name, err)))
	}
	if len(results) != 1 {
		return errors.Raise(abi, env, errors.Newf(errors.StatusGenericFailure, "native function %q returned %d values", name, len(results)))
	}

	code := hostbridge.Code(api.DecodeI32(results[0]))
	if err := errors.CheckPendingExceptionf(abi, env, code, "call %s", name); err != nil {
		return errors.Raise(abi, env, err)
	}
	return nil
}

func (i *WazeroInstance) Close(ctx context.Context) error {
	if i.instance == nil {
		return nil
	}
	err := i.instance.Close(ctx)
	i.instance = nil
	i.funcCache = nil
	i.memory = nil
	return err
}

// WazeroMemory wraps guest linear memory.
type WazeroMemory struct {
	mem api.Memory
}

func (m *WazeroMemory) Size() uint32 {
	return m.mem.Size()
}

func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *WazeroMemory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds")
	}
	return val, nil
}

func (m *WazeroMemory) WriteU32(offset uint32, value uint32) error {
	ok := m.mem.WriteUint32Le(offset, value)
	if !ok {
		return fmt.Errorf("write out of bounds")
	}
	return nil
}
