package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalName returns the path of the local override of a config file,
// ex. "dir/config.json5" -> "dir/config.local.json5".
func LocalName(name string) string {
	prefixname, ext := splitExt(filepath.Base(name))
	return filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
}

// mergeFile merges the json5 file at path over out, a missing file is
// reported with found = false.
func mergeFile[T any](out *T, path string) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return true, nil
	}

	var layer T
	err = json5.Unmarshal(contents, &layer)
	if err != nil {
		return true, fmt.Errorf("%s: %w", path, err)
	}
	return true, mergo.Merge(out, layer, mergo.WithOverride)
}

// ReadConfigWithDefaults reads a configuration file, `name` should come with
// a file extension. The following layers are merged, later layers win for
// every non-zero field:
// 1. defaults
// 2. <name>.<ext>
// 3. <name>.local.<ext>
func ReadConfigWithDefaults[T any](name string, defaults T) (T, error) {
	out := defaults

	foundDefault, err := mergeFile(&out, name)
	if err != nil {
		return out, err
	}

	localFilepath := LocalName(name)
	foundLocal, err := mergeFile(&out, localFilepath)
	if err != nil {
		return out, err
	}
	if foundLocal {
		slog.Info("merging config with local overrides", "local", localFilepath)
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfig is ReadConfigWithDefaults starting from the zero value.
func ReadConfig[T any](name string) (T, error) {
	var zero T
	return ReadConfigWithDefaults(name, zero)
}

// ReadRecursively goes up the filesystem from the working directory until
// the root to find a configuration file matching the name.
func ReadRecursively[T any](name string, defaults T) (T, error) {
	root, err := filepath.Abs("/")
	if err != nil {
		return defaults, err
	}
	current, err := os.Getwd()
	if err != nil {
		return defaults, err
	}

	for {
		config, err := ReadConfigWithDefaults(filepath.Join(current, name), defaults)
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaults, err
		}
		if current == root {
			return defaults, os.ErrNotExist
		}
		current = filepath.Dir(current)
	}
}
