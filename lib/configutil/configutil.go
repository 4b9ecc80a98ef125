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

// readJson5 unmarshals the file at path into out, reporting whether
// the file existed at all.
func readJson5(path string, out any) (bool, error) {
	contents, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	return true, json5.Unmarshal(contents, out)
}

// ReadConfig reads a json5 configuration file like misisid.json5,
// `name` should come with its file extension. When a sibling
// `<name>.local.<ext>` exists (misisid.local.json5, kept out of
// version control for credentials and per-machine overrides) its
// values are merged on top of the base file.
func ReadConfig[T any](name string) (T, error) {
	var out T

	found, err := readJson5(name, &out)
	if err != nil {
		return out, err
	}

	dirname := filepath.Dir(name)
	prefixname, ext := splitExt(filepath.Base(name))
	localFilepath := filepath.Join(
		dirname,
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)

	var override T
	foundLocal, err := readJson5(localFilepath, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}

	return out, nil
}

// ReadRecursively is ReadConfig but it walks up the filesystem from
// the cwd until the root to find a configuration file matching the
// name. Used for telemetry.json5 so one config can serve every
// working directory beneath it.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	root, err := filepath.Abs("/")
	if err != nil {
		return defaultOut, err
	}
	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for current != root {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			current = filepath.Join(current, "..")
			continue
		}
		if err != nil {
			return defaultOut, err
		}

		return config, nil
	}

	return defaultOut, os.ErrNotExist
}
