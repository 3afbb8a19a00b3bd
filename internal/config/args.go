// internal/config/args.go
//
// Command-line override carriers.
//
// Context
// -------
// Args mirrors the CLI surface, one pointer per overridable field: nil
// means the flag was not given, non-nil carries an explicit value, even an
// explicit zero.  The resolver merges Args over the file and environment
// layers field by field, so `--port 4000` overrides only the port while
// every other persisted setting survives.
//
// internal/cli builds Args from pflag bookkeeping (Changed); this package
// never touches flag parsing itself.

package config

// TLSArgs carries the `tls` subcommand payload.
type TLSArgs struct {
	Cert         *string
	Key          *string
	RedirectHTTP *bool
}

// Args carries the global CLI overrides.  Every field is optional.
type Args struct {
	Config             *string
	Path               *string
	Port               *uint16
	Addr               *string
	DisableCompression *bool
	NotFound           *string
	OK                 *bool
	Verbosity          *int // occurrences of -v minus occurrences of -q
	LogPath            *string
	LogMaxFiles        *int
	MetricsAddr        *string
	TLS                *TLSArgs
}
