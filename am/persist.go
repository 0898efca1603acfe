package am

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/teranos/atomspace/errors"
)

// backupCount is how many rotated copies (.back1 ... .back3) are kept
const backupCount = 3

// createBackup rotates configPath.back1..back3 and copies the current file
// to .back1. A missing file needs no backup.
func createBackup(configPath string) error {
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	for i := backupCount; i > 1; i-- {
		older, newer := backupPath(configPath, i), backupPath(configPath, i-1)
		if _, err := os.Stat(newer); err != nil {
			continue
		}
		if err := os.Rename(newer, older); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", filepath.Base(newer))
		}
	}

	if err := os.WriteFile(backupPath(configPath, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

func backupPath(configPath string, n int) string {
	return configPath + ".back" + strconv.Itoa(n)
}

// SetValue writes key = raw into the TOML file at configPath, creating it
// if needed. raw is parsed according to the key's default type.
func SetValue(configPath, key, raw string) error {
	if !slices.Contains(Keys(), key) {
		return errors.WithHintf(
			errors.NewInvalidRequestError("unknown config key %q", key),
			"known keys: %s", strings.Join(Keys(), ", "))
	}

	value, err := typedValue(key, raw)
	if err != nil {
		return err
	}

	doc := map[string]interface{}{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return errors.Wrapf(err, "failed to parse %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", configPath)
	}

	section, field, _ := strings.Cut(key, ".")
	table, ok := doc[section].(map[string]interface{})
	if !ok {
		table = map[string]interface{}{}
	}
	table[field] = value
	doc[section] = table

	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}

	Reset()
	return nil
}

// typedValue parses raw as the type of key's default
func typedValue(key, raw string) (interface{}, error) {
	v := viper.New()
	SetDefaults(v)

	switch v.Get(key).(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.NewInvalidRequestError("%s expects true or false, got %q", key, raw)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewInvalidRequestError("%s expects an integer, got %q", key, raw)
		}
		return int64(n), nil
	default:
		return raw, nil
	}
}
