package build

import (
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/ardnew/abuild/sema"
)

// PluginType identifies the values returned by import.
var PluginType = sema.NewTypeID("plugin")

// Plugin extends analysis with types and the build with tools.
//
// InitSemantic runs once per analysis when the plugin is first imported.
// InitRuntime runs once per build, before any target, with the arguments
// given to import.
type Plugin interface {
	InitSemantic(sc *sema.Context) error
	InitRuntime(rc *Context, args sema.Value) error
}

// RuntimeInitializer is implemented by analysis extensions that prepare a
// build [Context].
type RuntimeInitializer interface {
	sema.Extension
	InitRuntime(rc *Context) error
}

var plugins = struct {
	sync.RWMutex
	m map[string]Plugin
}{m: make(map[string]Plugin)}

// RegisterPlugin makes a plugin available to import by name. It panics if
// p is nil or name is already registered.
func RegisterPlugin(name string, p Plugin) {
	plugins.Lock()
	defer plugins.Unlock()

	if p == nil {
		panic("build: RegisterPlugin plugin is nil")
	}

	if _, dup := plugins.m[name]; dup {
		panic("build: RegisterPlugin called twice for plugin " + name)
	}

	plugins.m[name] = p
}

// LookupPlugin returns the plugin registered as name.
func LookupPlugin(name string) (Plugin, bool) {
	plugins.RLock()
	defer plugins.RUnlock()

	p, ok := plugins.m[name]

	return p, ok
}

// Plugins returns the sorted names of the registered plugins.
func Plugins() []string {
	plugins.RLock()
	defer plugins.RUnlock()

	names := make([]string, 0, len(plugins.m))
	for name := range plugins.m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// PluginValue is an imported plugin. Its properties are those of the
// import arguments.
type PluginValue struct {
	name   string
	plugin Plugin
	args   sema.Value
}

func (p *PluginValue) Type() sema.TypeID { return PluginType }
func (p *PluginValue) Kind() sema.Kind   { return sema.KindOpaque }
func (p *PluginValue) String() string    { return p.name }

func (p *PluginValue) Clone() sema.Value {
	return &PluginValue{name: p.name, plugin: p.plugin, args: p.args.Clone()}
}

func (p *PluginValue) Property(name string) (sema.Value, error) {
	return sema.Unwrap(p.args).Property(name)
}

// Args returns the import arguments.
func (p *PluginValue) Args() sema.Value { return p.args }

// ExtensionName returns the plugin name.
func (p *PluginValue) ExtensionName() string { return p.name }

// InitRuntime runs the plugin's runtime initializer.
func (p *PluginValue) InitRuntime(rc *Context) error {
	rc.logger.Debug("init plugin", slog.String("plugin", p.name))

	return p.plugin.InitRuntime(rc, sema.Unwrap(p.args))
}

// newImport loads the plugin named by the first argument. The optional
// second argument is passed to the plugin at build time.
func newImport(sc *sema.Context, t *sema.TypeDescriptor, args []sema.Value) (sema.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, sema.ErrArgumentCountMismatch.With(
			slog.String("type", t.Name()),
			slog.String("want", "1 or 2"),
			slog.Int("got", len(args)),
		)
	}

	if !resolved(args) {
		return sema.NewInstantiation(t, args), nil
	}

	name, ok := sema.Unwrap(args[0]).(*sema.String)
	if !ok {
		return nil, sema.ErrUnexpectedArgumentType.With(
			slog.String("type", t.Name()),
			slog.Int("index", 0),
			slog.String("got", sema.Describe(args[0])),
		)
	}

	plugin, ok := LookupPlugin(name.String())
	if !ok {
		return nil, ErrUnknownPlugin.With(
			slog.String("plugin", name.String()),
			slog.Any("available", Plugins()),
		)
	}

	var params sema.Value = sema.NewNamespace()
	if len(args) == 2 {
		params = sema.Unwrap(args[1])
	}

	imported := slices.ContainsFunc(sc.Extensions(), func(e sema.Extension) bool {
		return e.ExtensionName() == name.String()
	})

	if !imported {
		if err := plugin.InitSemantic(sc); err != nil {
			return nil, err
		}
	}

	v := &PluginValue{name: name.String(), plugin: plugin, args: params}
	sc.AddExtension(v)

	return v, nil
}
