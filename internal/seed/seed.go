// Package seed loads an initial service list from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/servicepoller/internal/domain"
	"github.com/hamed0406/servicepoller/internal/repo"
)

// File is the on-disk shape:
//
//	services:
//	  - name: Home
//	    url: https://example.com
type File struct {
	Services []domain.ServiceInput `yaml:"services"`
}

type Result struct {
	Added   int
	Skipped int // URL already tracked
	Invalid int
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// Apply adds every valid entry whose URL is not tracked yet. Bad entries do
// not stop the rest; their errors come back combined.
func Apply(ctx context.Context, store repo.ServiceStore, log *zap.Logger, f File, now func() time.Time) (Result, error) {
	var res Result

	existing, err := store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list services: %w", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(f.Services))
	for _, s := range existing {
		seen[s.URL] = struct{}{}
	}

	var errs error
	for i, raw := range f.Services {
		in := raw.Normalize()
		if err := in.Validate(); err != nil {
			res.Invalid++
			errs = multierr.Append(errs, fmt.Errorf("services[%d]: %w", i, err))
			continue
		}
		if _, dup := seen[in.URL]; dup {
			res.Skipped++
			continue
		}

		svc, err := store.Upsert(ctx, domain.NewService(in.Name, in.URL, now()))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("services[%d]: %w", i, err))
			continue
		}
		seen[in.URL] = struct{}{}
		res.Added++
		log.Debug("seed_service_added", zap.Int64("id", int64(svc.ID)), zap.String("url", svc.URL))
	}

	log.Info("seed_applied",
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
		zap.Int("invalid", res.Invalid),
	)
	return res, errs
}
