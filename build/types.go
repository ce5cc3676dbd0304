package build

import "github.com/ardnew/abuild/sema"

// Descriptor identifiers of constructors whose values have another type.
var (
	globType   = sema.NewTypeID("glob")
	importType = sema.NewTypeID("import")
)

// Source is the registration source of the builtin build types.
const Source = "<build>"

// Types registers the builtin target types. It is a [sema.TypeProvider].
func Types(sc *sema.Context) error {
	str := func(a sema.Arity) map[sema.TypeID]sema.Arity {
		return map[sema.TypeID]sema.Arity{sema.TypeString: a}
	}

	for _, b := range []struct {
		name string
		id   sema.TypeID
		ctor sema.Constructor
	}{
		{"file", FileType, nil},
		{"files", FilesType, sema.Checked(str(sema.Any()), newFiles)},
		{"glob", globType, sema.Checked(str(sema.Exactly(1)), newGlob)},
		{"executable", ExecutableType, binaryConstructor(Executable)},
		{"shared_library", SharedLibraryType, binaryConstructor(SharedLibrary)},
		{"aggregate", AggregateType, newAggregate},
		{"debug_print", DebugPrintType, sema.Checked(str(sema.Exactly(1)), newDebugPrint)},
		{"import", importType, newImport},
		{"plugin", PluginType, nil},
	} {
		if _, err := sc.RegisterType(b.name, Source, b.id, b.ctor); err != nil {
			return err
		}
	}

	return nil
}
