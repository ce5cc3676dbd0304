package cli

import (
	"maps"
	"slices"

	"github.com/joho/godotenv"

	"github.com/ardnew/abuild/pkg"
)

// ErrEnvFile is returned when an environment file cannot be read.
var ErrEnvFile = pkg.NewError("read environment file")

// readEnvFiles reads dotenv files into sorted KEY=VALUE entries. Keys in
// later files override earlier ones.
func readEnvFiles(files ...string) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	vars, err := godotenv.Read(files...)
	if err != nil {
		return nil, ErrEnvFile.Wrap(err)
	}

	env := make([]string, 0, len(vars))
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		env = append(env, key+"="+vars[key])
	}

	return env, nil
}
