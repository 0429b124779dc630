package suggest

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/inkstorm/internal/textdoc"
)

// filterFunc is the global function a filter script must define.
const filterFunc = "filter_modification"

// Filter runs a user Lua script over incoming modifications before
// they enter the store. The script defines
//
//	function filter_modification(from, to, new_text)
//
// and returns false or nil to veto the modification, true to accept it
// unchanged, or a string to rewrite its replacement text.
//
// gopher-lua's LState is not goroutine-safe, so all calls are
// serialized through the filter's mutex.
type Filter struct {
	mu sync.Mutex
	L  *lua.LState
}

// LoadFilter compiles the script at path into a new filter. The script
// runs once at load time so it can set up state; it must leave a
// filter_modification function defined globally.
func LoadFilter(path string) (*Filter, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("filter script: %w", err)
	}
	if L.GetGlobal(filterFunc).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("filter script: %s is not defined", filterFunc)
	}
	return &Filter{L: L}, nil
}

// Close releases the Lua state.
func (f *Filter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.L != nil {
		f.L.Close()
		f.L = nil
	}
}

// Apply runs the script over one modification. It returns the possibly
// rewritten range and text, whether the modification is accepted, and
// any script error. A script error means the result is unusable; the
// caller decides whether to admit the batch unfiltered.
func (f *Filter) Apply(r textdoc.Range, newText string) (textdoc.Range, string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.L == nil {
		return r, newText, true, nil
	}

	err := f.L.CallByParam(lua.P{
		Fn:      f.L.GetGlobal(filterFunc),
		NRet:    1,
		Protect: true,
	}, lua.LNumber(r.Start), lua.LNumber(r.End), lua.LString(newText))
	if err != nil {
		return r, newText, false, fmt.Errorf("filter call: %w", err)
	}

	ret := f.L.Get(-1)
	f.L.Pop(1)

	switch v := ret.(type) {
	case lua.LBool:
		return r, newText, bool(v), nil
	case lua.LString:
		return r, string(v), true, nil
	default:
		// nil and anything unexpected veto the modification.
		return r, newText, false, nil
	}
}
