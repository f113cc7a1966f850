package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Joseda-hg/bildschema/internal/config"
	"github.com/Joseda-hg/bildschema/internal/export"
	"github.com/Joseda-hg/bildschema/internal/logging"
	"github.com/Joseda-hg/bildschema/internal/model"
	"github.com/Joseda-hg/bildschema/internal/pictogram"
	"github.com/Joseda-hg/bildschema/internal/schedule"
	"github.com/Joseda-hg/bildschema/internal/speech"
	"github.com/Joseda-hg/bildschema/internal/tui"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	exportDirFlag := flag.String("export-dir", "", "default directory for exported schedules")
	noPictogramsFlag := flag.Bool("no-pictograms", false, "disable ARASAAC pictogram lookups")
	noSpeechFlag := flag.Bool("no-speech", false, "disable text-to-speech")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := config.ApplyEnv(&cfg, ".env"); err != nil {
		log.Fatal(err)
	}

	if *exportDirFlag != "" {
		cfg.ExportDir = *exportDirFlag
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = defaultExportDir()
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = filepath.Join(filepath.Dir(cfgPath), "bildschema.log")
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Path:     cfg.Log.Path,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = closeLog() }()

	exporter := export.New(export.Config{
		Version: version,
		Backend: &export.FPDFBackend{FontPath: cfg.PDFFont},
	})

	var speaker speech.Speaker = speech.Nop{}
	if cfg.Speech.Enabled && !*noSpeechFlag {
		speaker = speech.NewCommand(cfg.Speech.Command, logger)
	}

	opts := tui.Options{
		PictogramLang: cfg.Pictograms.Language,
		Resolution:    cfg.Pictograms.Resolution,
		ExportDir:     cfg.ExportDir,
		Logger:        logger,
	}
	if cfg.Pictograms.Enabled && !*noPictogramsFlag {
		provider, err := openPictograms(cfg.Pictograms, logger)
		if err != nil {
			logger.Warn("pictograms disabled", zap.Error(err))
		} else {
			defer provider.Close()
			opts.Pictograms = provider
		}
	}

	controller := schedule.New(model.SampleActivities(), schedule.Deps{
		Exporter: exporter,
		Speaker:  speaker,
		Language: cfg.Speech.Language,
		Logger:   logger,
	})

	logger.Info("starting", zap.String("version", version), zap.String("config", cfgPath))
	if err := tui.Run(controller, opts); err != nil {
		logger.Error("ui exited", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		_ = closeLog()
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func openPictograms(cfg config.PictogramsConfig, logger *zap.Logger) (*pictogram.ARASAAC, error) {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		cacheDir = filepath.Join(base, "bildschema", "pictograms")
	}

	return pictogram.NewARASAAC(pictogram.Options{
		APIURL:    cfg.APIURL,
		StaticURL: cfg.StaticURL,
		CacheDir:  cacheDir,
		Timeout:   time.Duration(cfg.Timeout),
		Logger:    logger,
	})
}
