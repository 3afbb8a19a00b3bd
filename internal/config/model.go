// internal/config/model.go
//
// Typed configuration model for serve.
//
// Context
// -------
// Two shapes live here:
//
//   • File is the persisted TOML document.  Every field is a pointer, so
//     "key absent" stays distinguishable from "key set to its zero value";
//     the field-by-field merge and the bootstrap writer both need that
//     distinction.
//   • Config is the effective configuration after merging, defaulting, and
//     validation.  It is immutable for the process lifetime and shared by
//     reference across all listener goroutines, so no locking is needed.
//
// Validation tags live on Config, not File: checks run after the merge so
// they judge final values regardless of which layer supplied them.  The
// `dir` and `file` tags carry the filesystem existence checks.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`; the TOML parser feeds the same merged
//     tree, so no separate `toml:"…"` tags are needed.
//   • ConfigPath and Created are runtime provenance.  They are never
//     persisted and never read from any layer.

package config

import (
	"net"
	"strconv"
)

//
// defaults
//

// Defaults applied to fields absent from every layer.
const (
	DefaultAddr        = "127.0.0.1"
	DefaultPort        = 3000
	DefaultLogLevel    = "info"
	DefaultLogMaxFiles = 7
)

//
// persisted document
//

// TLSFile is the optional [tls] table of the persisted document.
type TLSFile struct {
	Cert         *string `koanf:"cert"`
	Key          *string `koanf:"key"`
	RedirectHTTP *bool   `koanf:"redirect_http"`
}

// File mirrors the persisted TOML document key for key.
type File struct {
	Path               *string  `koanf:"path"`
	Port               *uint16  `koanf:"port"`
	Addr               *string  `koanf:"addr"`
	DisableCompression *bool    `koanf:"disable_compression"`
	NotFound           *string  `koanf:"not_found"`
	OK                 *bool    `koanf:"ok"`
	LogLevel           *string  `koanf:"log_level"`
	LogPath            *string  `koanf:"log_path"`
	LogMaxFiles        *int     `koanf:"log_max_files"`
	MetricsAddr        *string  `koanf:"metrics_addr"`
	TLS                *TLSFile `koanf:"tls"`
}

//
// effective configuration
//

// TLS is the effective TLS sub-configuration.  Its presence on Config is
// what activates the TLS transport.
type TLS struct {
	Cert         string `validate:"required,file"`
	Key          string `validate:"required,file"`
	RedirectHTTP bool
}

// Config is the effective configuration: fully merged, validated, and
// immutable.  Constructed once per process by Resolve.
type Config struct {
	Path               string `validate:"required,dir"`
	Addr               string `validate:"required,ip"`
	Port               uint16
	DisableCompression bool
	NotFound           string `validate:"required_if=OK true,omitempty,file"`
	OK                 bool
	LogLevel           string `validate:"required,oneof=debug info warn error"`
	LogPath            string
	LogMaxFiles        int    `validate:"gte=1"`
	MetricsAddr        string `validate:"omitempty,hostname_port"`
	TLS                *TLS

	// Runtime provenance.
	ConfigPath string // file layer origin, empty when --config was not given
	Created    bool   // true when this run wrote ConfigPath for the first time
}

// ListenAddr joins Addr and Port into a bindable host:port.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(int(c.Port)))
}
