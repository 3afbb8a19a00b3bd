// internal/config/resolver.go
//
// Configuration resolver: layering, merge, bootstrap persistence.
//
/*
Context
--------
`Resolve()` builds the one immutable `Config` for a process run from four
layers (highest precedence last):

  1. Documented defaults (port 3000, addr 127.0.0.1, compression on,
     log_level info, log_max_files 7).
  2. Optional TOML file named by --config, when it exists.
  3. Environment variables prefixed `SERVE_`, where `__` maps to "."
     (e.g., `SERVE_TLS__CERT → tls.cert`).
  4. Command-line flags, merged field by field: a nil Args field keeps the
     layered value, a non-nil one wins outright.

After merging, path-like fields are made absolute, defaults fill whatever
is still unset, and the result is validated centrally (validator.go)
before anything observable happens.

Bootstrap: when --config names a file that does not exist, the validated
result is serialized back to that path once, creating parent directories
as needed.  The file is never rewritten afterwards; later runs read it and
may override it per field from the CLI, in memory only.

Instrumentation
---------------
  • DEBUG spans: file read, env overlay.
  • ERROR spans: parse, unmarshal, validation failures.
  • INFO  span:  final "config resolved" with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface on the bootstrap console logger before the file sink exists.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// envPrefix namespaces environment overrides: SERVE_TLS__CERT → tls.cert.
const envPrefix = "SERVE_"

// fileHeader opens every bootstrapped configuration file.
const fileHeader = "# Configuration for serve (https://github.com/yanizio/serve)\n\n"

/*─────────────────────────────── resolve ──────────────────────────────────*/

// Resolve merges CLI args over the optional persisted file and the
// environment overlay, applies defaults, validates, and bootstraps the
// file when --config names a path that does not exist yet.
func Resolve(args *Args) (*Config, error) {
	if args == nil {
		args = &Args{}
	}

	configPath, bootstrap, err := probeConfigPath(args.Config)
	if err != nil {
		return nil, err
	}

	readPath := configPath
	if bootstrap {
		readPath = ""
	}
	f, err := loadLayers(readPath)
	if err != nil {
		return nil, err
	}

	merged := mergeArgs(f, args)
	canonicalize(merged)

	cfg := materialize(merged)
	cfg.ConfigPath = configPath

	if err := validateStruct(cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	// Only validated configurations are ever persisted.
	if bootstrap {
		if err := writeFile(configPath, merged); err != nil {
			return nil, err
		}
		cfg.Created = true
		zap.S().Infow("config file created", "file", configPath)
	}

	zap.S().Infow("config resolved",
		"path", cfg.Path,
		"listen_addr", cfg.ListenAddr(),
		"tls", cfg.TLS != nil,
		"config_file", cfg.ConfigPath,
	)
	return cfg, nil
}

// probeConfigPath classifies the --config argument: absent, pointing at an
// existing file, or pointing at a path to bootstrap.  A config path that
// exists but is not a regular file is a parse-class failure, never a
// bootstrap target.
func probeConfigPath(arg *string) (path string, bootstrap bool, err error) {
	if arg == nil {
		return "", false, nil
	}
	abs, err := filepath.Abs(*arg)
	if err != nil {
		return "", false, fieldErr("config", *arg, ErrParse)
	}
	st, err := os.Stat(abs)
	switch {
	case err == nil && st.Mode().IsRegular():
		return abs, false, nil
	case err == nil:
		return "", false, fieldErr("config", abs, ErrParse)
	case errors.Is(err, fs.ErrNotExist):
		return abs, true, nil
	default:
		return "", false, fieldErr("config", abs, ErrParse)
	}
}

/*─────────────────────────────── layers ───────────────────────────────────*/

// loadLayers reads the file layer (when readPath is set) and the SERVE_
// environment overlay into a File.  Fields no layer supplied stay nil.
func loadLayers(readPath string) (*File, error) {
	k := koanf.New(".")

	if readPath != "" {
		if err := k.Load(file.Provider(readPath), toml.Parser()); err != nil {
			zap.S().Errorw("config file load failed", "file", readPath, "err", err)
			return nil, fieldErr("config", readPath, ErrParse)
		}
		zap.S().Debugw("config file loaded", "file", readPath)
	}

	// Env overrides: SERVE_TLS__CERT → tls.cert.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(
			strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fieldErr("env", "", ErrParse)
	}
	zap.S().Debugw("config env overlay applied", "prefix", envPrefix)

	var f File
	if err := k.Unmarshal("", &f); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fieldErr("config", readPath, ErrParse)
	}
	return &f, nil
}

/*─────────────────────────────── merge ────────────────────────────────────*/

// mergeArgs lays CLI values over the file and environment layers.  Field
// by field: a nil Args field keeps the layered value, a non-nil one
// replaces it.  The TLS section merges per field too, so `tls -c new.pem`
// keeps a persisted key path.
func mergeArgs(f *File, a *Args) *File {
	m := *f

	if a.Path != nil {
		m.Path = a.Path
	}
	if a.Port != nil {
		m.Port = a.Port
	}
	if a.Addr != nil {
		m.Addr = a.Addr
	}
	if a.DisableCompression != nil {
		m.DisableCompression = a.DisableCompression
	}
	if a.NotFound != nil {
		m.NotFound = a.NotFound
	}
	if a.OK != nil {
		m.OK = a.OK
	}
	if a.Verbosity != nil {
		lvl := levelForVerbosity(*a.Verbosity)
		m.LogLevel = &lvl
	}
	if a.LogPath != nil {
		m.LogPath = a.LogPath
	}
	if a.LogMaxFiles != nil {
		m.LogMaxFiles = a.LogMaxFiles
	}
	if a.MetricsAddr != nil {
		m.MetricsAddr = a.MetricsAddr
	}
	if a.TLS != nil {
		t := TLSFile{}
		if m.TLS != nil {
			t = *m.TLS
		}
		if a.TLS.Cert != nil {
			t.Cert = a.TLS.Cert
		}
		if a.TLS.Key != nil {
			t.Key = a.TLS.Key
		}
		if a.TLS.RedirectHTTP != nil {
			t.RedirectHTTP = a.TLS.RedirectHTTP
		}
		m.TLS = &t
	}
	return &m
}

// levelForVerbosity maps the -v/-q delta onto a named level.  Zero is the
// info baseline; -v steps toward debug, -q toward warn and then error.
func levelForVerbosity(delta int) string {
	switch {
	case delta > 0:
		return "debug"
	case delta == 0:
		return "info"
	case delta == -1:
		return "warn"
	default:
		return "error"
	}
}

/*──────────────────────────── materialize ─────────────────────────────────*/

// canonicalize makes every set path-like field absolute.  Relative inputs
// resolve against the working directory at startup, so the values that get
// validated, served, and persisted all name the same files no matter where
// a later run starts.
func canonicalize(f *File) {
	f.Path = absPtr(f.Path)
	f.NotFound = absPtr(f.NotFound)
	f.LogPath = absPtr(f.LogPath)
	if f.TLS != nil {
		f.TLS.Cert = absPtr(f.TLS.Cert)
		f.TLS.Key = absPtr(f.TLS.Key)
	}
}

// absPtr resolves p to an absolute path.  Best effort: when Abs fails the
// value is kept as given and surfaces later as a validation failure.
func absPtr(p *string) *string {
	if p == nil {
		return nil
	}
	abs, err := filepath.Abs(*p)
	if err != nil {
		return p
	}
	return &abs
}

// materialize flattens the pointer carriers into the effective struct,
// filling defaults for whatever no layer set.
func materialize(f *File) *Config {
	cfg := &Config{
		Path:               orDefault(f.Path, defaultPath()),
		Port:               orDefault(f.Port, uint16(DefaultPort)),
		Addr:               orDefault(f.Addr, DefaultAddr),
		DisableCompression: orDefault(f.DisableCompression, false),
		NotFound:           orDefault(f.NotFound, ""),
		OK:                 orDefault(f.OK, false),
		LogLevel:           orDefault(f.LogLevel, DefaultLogLevel),
		LogPath:            orDefault(f.LogPath, ""),
		LogMaxFiles:        orDefault(f.LogMaxFiles, DefaultLogMaxFiles),
		MetricsAddr:        orDefault(f.MetricsAddr, ""),
	}
	if f.TLS != nil {
		cfg.TLS = &TLS{
			Cert:         orDefault(f.TLS.Cert, ""),
			Key:          orDefault(f.TLS.Key, ""),
			RedirectHTTP: orDefault(f.TLS.RedirectHTTP, false),
		}
	}
	return cfg
}

func orDefault[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}

// defaultPath is the serving root when no layer names one.
func defaultPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

/*─────────────────────────── bootstrap write ──────────────────────────────*/

// writeFile persists the merged document to path.  Called exactly once per
// config file lifetime, only when --config named a file that did not
// exist.  Scalar keys are written with their effective values; optional
// path keys and the [tls] table only when set.  The config path itself is
// never persisted.
func writeFile(path string, f *File) error {
	m := map[string]interface{}{
		"port":                int(orDefault(f.Port, uint16(DefaultPort))),
		"addr":                orDefault(f.Addr, DefaultAddr),
		"disable_compression": orDefault(f.DisableCompression, false),
		"ok":                  orDefault(f.OK, false),
		"log_level":           orDefault(f.LogLevel, DefaultLogLevel),
		"log_max_files":       orDefault(f.LogMaxFiles, DefaultLogMaxFiles),
	}
	if f.Path != nil {
		m["path"] = *f.Path
	}
	if f.NotFound != nil {
		m["not_found"] = *f.NotFound
	}
	if f.LogPath != nil {
		m["log_path"] = *f.LogPath
	}
	if f.MetricsAddr != nil {
		m["metrics_addr"] = *f.MetricsAddr
	}
	if f.TLS != nil {
		m["tls"] = map[string]interface{}{
			"cert":          orDefault(f.TLS.Cert, ""),
			"key":           orDefault(f.TLS.Key, ""),
			"redirect_http": orDefault(f.TLS.RedirectHTTP, false),
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("config: serialize %q: %w", path, err)
	}
	out, err := k.Marshal(toml.Parser())
	if err != nil {
		return fmt.Errorf("config: serialize %q: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create %q: %w", path, err)
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), out...), 0o644); err != nil {
		return fmt.Errorf("config: create %q: %w", path, err)
	}
	return nil
}
