// sqlc генерирует код запросов отдельно для каждого .sql из .sqlc.base.yaml,
// кладя результат рядом с файлом, в пакет по имени каталога.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	baseConfigName = ".sqlc.base"
	tmpConfigName  = "sqlc.yaml"
)

func loadBase() (*viper.Viper, error) {
	base := viper.New()
	base.SetConfigName(baseConfigName)
	base.SetConfigType("yaml")
	base.AddConfigPath(".")
	if err := base.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read .sqlc.base.yaml")
	}
	return base, nil
}

func queryFiles(patterns []string) ([]string, error) {
	files := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		matched, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "glob %s", pattern)
		}
		files = append(files, matched...)
	}
	return files, nil
}

// renderConfig собирает sqlc.yaml на один файл запросов.
func renderConfig(version string, engine map[string]any, file string) ([]byte, error) {
	dir := filepath.Dir(file)

	sqlEntry := make(map[string]any, len(engine))
	for k, v := range engine {
		if k == "source" {
			continue
		}
		sqlEntry[k] = v
	}
	sqlEntry["queries"] = file

	gen, _ := sqlEntry["gen"].(map[string]any)
	goGen, _ := gen["go"].(map[string]any)
	if goGen == nil {
		goGen = map[string]any{}
	}
	goGen["package"] = filepath.Base(dir)
	goGen["out"] = dir
	sqlEntry["gen"] = map[string]any{"go": goGen}

	bs, err := yaml.Marshal(map[string]any{
		"version": version,
		"sql":     []any{sqlEntry},
	})
	return bs, errors.Wrap(err, "marshal sqlc config")
}

func generate(config []byte) error {
	if err := os.WriteFile(tmpConfigName, config, 0o644); err != nil {
		return errors.Wrap(err, "write sqlc.yaml")
	}
	defer os.Remove(tmpConfigName)

	out, err := exec.Command("sqlc", "generate", "--file", tmpConfigName).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "sqlc generate: %s", out)
	}
	return nil
}

func run() error {
	base, err := loadBase()
	if err != nil {
		return err
	}
	engine := base.Sub("sql.0")
	if engine == nil {
		return errors.New("no sql.0 section in .sqlc.base.yaml")
	}

	files, err := queryFiles(engine.GetStringSlice("source"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("sql.0.source matched no files")
	}

	for _, file := range files {
		config, err := renderConfig(base.GetString("version"), engine.AllSettings(), file)
		if err != nil {
			return err
		}
		if err := generate(config); err != nil {
			return errors.Wrap(err, file)
		}
		fmt.Printf("%s: done\n", file)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
