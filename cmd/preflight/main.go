// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hamed0406/servicepoller/internal/config"
	"github.com/hamed0406/servicepoller/internal/seed"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load()
	if err != nil {
		fail("configuration invalid: " + err.Error())
	}
	if cfg.File != "" {
		ok("config file " + cfg.File)
	}
	ok("API_ADDR=" + cfg.Addr)
	ok("POLL_INTERVAL_MS=" + strconv.Itoa(cfg.PollIntervalMS) + " PROBE_TIMEOUT_MS=" + strconv.Itoa(cfg.ProbeTimeoutMS))

	if cfg.ProbeTimeoutMS >= cfg.PollIntervalMS {
		warn("PROBE_TIMEOUT_MS >= POLL_INTERVAL_MS; slow services will make ticks get skipped.")
	}
	if cfg.MaxConcurrentChecks == 0 {
		warn("MAX_CONCURRENT_CHECKS=0; every service is probed at once.")
	}

	switch cfg.Store() {
	case config.StorePostgres:
		ok("DATABASE_URL present; using postgres")
		if cfg.RedisAddr != "" {
			warn("REDIS_ADDR is ignored while DATABASE_URL is set.")
		}
	case config.StoreRedis:
		ok("REDIS_ADDR=" + cfg.RedisAddr + "; using redis")
	default:
		warn("DATABASE_URL and REDIS_ADDR empty; services live in memory and are lost on restart.")
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		fail("LOG_DIR not writable: " + err.Error())
	}
	probeFile := filepath.Join(cfg.LogDir, ".preflight")
	if err := os.WriteFile(probeFile, nil, 0o644); err != nil {
		fail("LOG_DIR not writable: " + err.Error())
	}
	_ = os.Remove(probeFile)
	ok("LOG_DIR=" + cfg.LogDir)

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			fail(err.Error())
		}
		bad := 0
		for _, s := range f.Services {
			if s.Normalize().Validate() != nil {
				bad++
			}
		}
		if bad > 0 {
			warn(strconv.Itoa(bad) + " seed entries are invalid and will be skipped.")
		}
		ok("SEED_FILE " + cfg.SeedFile + " lists " + strconv.Itoa(len(f.Services)) + " services")
	}

	ok("preflight passed")
}
