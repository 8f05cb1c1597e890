// Command server runs the cube check-in HTTP service.
package main

import (
	"log/slog"
	"os"

	"cube-tracker/internal/api"
	"cube-tracker/internal/catalog"
	"cube-tracker/internal/checkin"
	"cube-tracker/internal/config"
	"cube-tracker/internal/detect"
	"cube-tracker/internal/featurematch"
	"cube-tracker/internal/ocr"
	"cube-tracker/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.EnsureDirs(); err != nil {
		slog.Error("failed to prepare data directories", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database", "url", cfg.DatabaseURL, "error", err)
		os.Exit(1)
	}

	engine, err := ocr.NewEngine()
	if err != nil {
		slog.Error("failed to initialize OCR engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	cat := catalog.New(cfg.CardDBDir)

	detector, cleanup, err := buildDetector(cfg)
	if err != nil {
		slog.Error("failed to initialize detector", "detector", cfg.Detector, "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	service := checkin.New(detector, engine, cat, cfg.FuzzyThreshold)
	router := api.NewRouter(api.NewHandlers(cfg, st, service, cat))

	slog.Info("server starting", "addr", cfg.Addr, "detector", cfg.Detector, "database", cfg.DatabaseURL)
	if err := router.Run(cfg.Addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildDetector assembles the configured region detector. The returned
// cleanup releases detector resources and may be nil.
func buildDetector(cfg config.Config) (detect.RegionDetector, func(), error) {
	switch cfg.Detector {
	case config.DetectorFeatures:
		opts := featurematch.DefaultOptions()
		opts.MinCardArea = cfg.MinCardArea
		opts.MaxCardArea = cfg.MaxCardArea
		engine := featurematch.NewEngine(opts)
		if err := engine.RegisterDir(cfg.ReferenceDir); err != nil {
			engine.Close()
			return nil, nil, err
		}
		return engine, engine.Close, nil
	default:
		var sink detect.DebugSink
		if cfg.DebugDir != "" {
			// Stage dumps share one directory, so each upload overwrites
			// the previous one. Intended for local debugging only.
			s, err := detect.NewDirSink(cfg.DebugDir, "latest")
			if err != nil {
				return nil, nil, err
			}
			sink = s
		}
		return detect.NewColumnDetector(detect.DefaultParams(), sink), nil, nil
	}
}
