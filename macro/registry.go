package macro

import (
	"fmt"
	"go/ast"
	"sort"
	"sync"
)

// FuncEntry is the entry point of a function-like macro.
type FuncEntry func(args string, env *Env) (Fragment, error)

// AttrEntry is the entry point of an attribute macro.
type AttrEntry func(attr string, item ast.Decl, env *Env) (Fragment, error)

// DeriveEntry is the entry point of a derive macro.
type DeriveEntry func(item ast.Decl, env *Env) (Fragment, error)

// Registration describes one registered macro.
type Registration struct {
	// Name is the name directives refer to. Derive macros use the PascalCase form.
	Name string
	// Ident is the implementation module name (impls/<Ident>).
	Ident string
	Kind  Kind
	// Doc is the synthesized documentation of the macro's arguments.
	Doc string

	Func   FuncEntry
	Attr   AttrEntry
	Derive DeriveEntry
}

func (r Registration) validate() error {
	if r.Name == "" {
		return fmt.Errorf("macro registration without a name")
	}

	var ok bool
	switch r.Kind {
	case Func:
		ok = r.Func != nil && r.Attr == nil && r.Derive == nil
	case Attr:
		ok = r.Attr != nil && r.Func == nil && r.Derive == nil
	case Derive:
		ok = r.Derive != nil && r.Func == nil && r.Attr == nil
	default:
		return fmt.Errorf("macro %s: invalid kind %s", r.Name, r.Kind)
	}

	if !ok {
		return fmt.Errorf("macro %s: entry point does not match kind %s", r.Name, r.Kind)
	}

	return nil
}

// Registry maps macro names to their registrations.
// It is filled from init functions and read-only afterwards.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Registration)}
}

// Register adds reg. Names are unique across kinds.
func (r *Registry) Register(reg Registration) error {
	if reg.Ident == "" {
		reg.Ident = reg.Name
	}

	if err := reg.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byName[reg.Name]; ok {
		return fmt.Errorf("macro %s already registered as %s", reg.Name, prev.Kind)
	}

	r.byName[reg.Name] = reg

	return nil
}

// Lookup returns the registration for name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byName[name]

	return reg, ok
}

// All returns every registration sorted by name.
func (r *Registry) All() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.byName))
	for _, reg := range r.byName {
		out = append(out, reg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	all := r.All()

	names := make([]string, len(all))
	for i, reg := range all {
		names[i] = reg.Name
	}

	return names
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byName)
}

// Default is the registry generated code registers into.
var Default = NewRegistry()

// Register adds reg to Default and panics on conflict. Intended for init functions.
func Register(reg Registration) {
	if err := Default.Register(reg); err != nil {
		panic(err)
	}
}
