package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ExportDir  string           `json:"export_dir"`
	PDFFont    string           `json:"pdf_font"`
	Speech     SpeechConfig     `json:"speech"`
	Pictograms PictogramsConfig `json:"pictograms"`
	Log        LogConfig        `json:"log"`
}

type SpeechConfig struct {
	Enabled  bool   `json:"enabled"`
	Command  string `json:"command"`
	Language string `json:"language"`
}

type PictogramsConfig struct {
	Enabled    bool     `json:"enabled"`
	APIURL     string   `json:"api_url"`
	StaticURL  string   `json:"static_url"`
	CacheDir   string   `json:"cache_dir"`
	Language   string   `json:"language"`
	Resolution int      `json:"resolution"`
	Timeout    Duration `json:"timeout"`
}

type LogConfig struct {
	Level    string `json:"level"`
	Encoding string `json:"encoding"`
	Path     string `json:"path"`
}

// Duration reads and writes as a Go duration string ("10s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		var seconds int64
		if err := json.Unmarshal(data, &seconds); err != nil {
			return fmt.Errorf("invalid duration %s", data)
		}
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("invalid duration %q", text)
	}
	*d = Duration(parsed)
	return nil
}

func Default() Config {
	return Config{
		Speech: SpeechConfig{
			Enabled:  true,
			Command:  "espeak-ng",
			Language: "sv",
		},
		Pictograms: PictogramsConfig{
			Enabled:    true,
			APIURL:     "https://api.arasaac.org",
			StaticURL:  "https://static.arasaac.org",
			Language:   "en",
			Resolution: 300,
			Timeout:    Duration(10 * time.Second),
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "bildschema", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides cfg from BILDSCHEMA_* variables, reading envFile first
// when it exists. Variables already set in the process win over the file.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg.ExportDir = getString("BILDSCHEMA_EXPORT_DIR", cfg.ExportDir)
	cfg.PDFFont = getString("BILDSCHEMA_PDF_FONT", cfg.PDFFont)

	cfg.Speech.Enabled = getBool("BILDSCHEMA_SPEECH", cfg.Speech.Enabled)
	cfg.Speech.Command = getString("BILDSCHEMA_SPEECH_COMMAND", cfg.Speech.Command)
	cfg.Speech.Language = getString("BILDSCHEMA_SPEECH_LANGUAGE", cfg.Speech.Language)

	cfg.Pictograms.Enabled = getBool("BILDSCHEMA_PICTOGRAMS", cfg.Pictograms.Enabled)
	cfg.Pictograms.APIURL = getString("BILDSCHEMA_ARASAAC_API_URL", cfg.Pictograms.APIURL)
	cfg.Pictograms.StaticURL = getString("BILDSCHEMA_ARASAAC_STATIC_URL", cfg.Pictograms.StaticURL)
	cfg.Pictograms.CacheDir = getString("BILDSCHEMA_PICTOGRAM_CACHE", cfg.Pictograms.CacheDir)
	cfg.Pictograms.Language = getString("BILDSCHEMA_PICTOGRAM_LANGUAGE", cfg.Pictograms.Language)
	cfg.Pictograms.Resolution = getInt("BILDSCHEMA_PICTOGRAM_RESOLUTION", cfg.Pictograms.Resolution)
	cfg.Pictograms.Timeout = Duration(getDuration("BILDSCHEMA_PICTOGRAM_TIMEOUT", time.Duration(cfg.Pictograms.Timeout)))

	cfg.Log.Level = getString("BILDSCHEMA_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getString("BILDSCHEMA_LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.Path = getString("BILDSCHEMA_LOG_PATH", cfg.Log.Path)
	return nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
