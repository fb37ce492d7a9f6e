package storeconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// loadSeedDir reads store configuration files (.yaml/.yml/.json) from a
// directory tree.
func loadSeedDir(dir string) ([]StoreConfig, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	out := []StoreConfig{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var cfgs []StoreConfig
		if ext == ".json" {
			if err := json.Unmarshal(b, &cfgs); err != nil {
				return err
			}
		} else {
			if err := yaml.Unmarshal(b, &cfgs); err != nil {
				return fmt.Errorf("yaml parse %s: %w", path, err)
			}
		}
		for _, c := range cfgs {
			if c.Token != "" {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

// ImportSeedDir loads configs from a directory and upserts them into the
// source. Missing dir is not an error; startup continues.
func ImportSeedDir(ctx context.Context, source Source, log *zap.SugaredLogger, dir string) error {
	cfgs, err := loadSeedDir(dir)
	if err != nil {
		return err
	}
	if len(cfgs) == 0 {
		return nil
	}
	for _, c := range cfgs {
		if err := source.UpsertConfig(ctx, c); err != nil {
			return err
		}
	}
	log.Infof("imported %d store configs from %s", len(cfgs), dir)
	return nil
}
