// internal/cli/cli.go
//
// Flag parsing: process arguments in, config.Args out.
//
// Context
// -------
// Two pflag FlagSets cover the surface: the global set, and one for the
// single `tls` subcommand.  Interspersed parsing is off, so the first
// non-flag argument ends the global set and everything after it belongs to
// the subcommand.
//
// Only flags the user actually passed become overrides: `Changed` gates
// every field, which is what lets the resolver tell "flag left at its
// default" apart from "flag explicitly set to the default value".
//
// Notes
// -----
//   • The FlagSets never print.  Help and error rendering belong to main,
//     which decides the stream and the exit code.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/yanizio/serve/internal/config"
)

// Result is a parsed command line.
type Result struct {
	Args        *config.Args
	ShowVersion bool // -V/--version: print version and exit
}

// Parse reads argv (without the program name).  A pflag.ErrHelp return
// means -h/--help was requested; any other error is a usage mistake.
func Parse(argv []string) (*Result, error) {
	fs := globalFlags()
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	args := &config.Args{
		Config:             stringArg(fs, "config"),
		Path:               stringArg(fs, "path"),
		Port:               uint16Arg(fs, "port"),
		Addr:               stringArg(fs, "addr"),
		DisableCompression: boolArg(fs, "disable-compression"),
		NotFound:           stringArg(fs, "not-found"),
		OK:                 boolArg(fs, "ok"),
		LogPath:            stringArg(fs, "log-path"),
		LogMaxFiles:        intArg(fs, "log-max-files"),
		MetricsAddr:        stringArg(fs, "metrics-addr"),
	}

	if fs.Changed("verbose") || fs.Changed("quiet") {
		vb, _ := fs.GetCount("verbose")
		qt, _ := fs.GetCount("quiet")
		delta := vb - qt
		args.Verbosity = &delta
	}

	if rest := fs.Args(); len(rest) > 0 {
		if rest[0] != "tls" {
			return nil, fmt.Errorf("unknown command %q", rest[0])
		}
		tfs := tlsFlags()
		if err := tfs.Parse(rest[1:]); err != nil {
			return nil, err
		}
		if extra := tfs.Args(); len(extra) > 0 {
			return nil, fmt.Errorf("unexpected argument %q", extra[0])
		}
		args.TLS = &config.TLSArgs{
			Cert:         stringArg(tfs, "cert"),
			Key:          stringArg(tfs, "key"),
			RedirectHTTP: boolArg(tfs, "redirect-http"),
		}
	}

	show, _ := fs.GetBool("version")
	return &Result{Args: args, ShowVersion: show}, nil
}

// Usage renders the full help text, global flags and subcommand alike.
func Usage() string {
	var b strings.Builder
	b.WriteString("serve: a local static file server\n\n")
	b.WriteString("Usage:\n")
	b.WriteString("  serve [flags]\n")
	b.WriteString("  serve [flags] tls -c <cert> -k <key> [--redirect-http]\n\n")
	b.WriteString("Flags:\n")
	b.WriteString(globalFlags().FlagUsages())
	b.WriteString("\nTLS subcommand flags:\n")
	b.WriteString(tlsFlags().FlagUsages())
	return b.String()
}

/*──────────────────────────── flag sets ───────────────────────────────────*/

func globalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.SetInterspersed(false)

	fs.String("config", "", "Configuration file. Created from the current flags when missing.")
	fs.String("path", "", "Directory to serve. Defaults to the current directory.")
	fs.Uint16P("port", "p", config.DefaultPort, "Port to listen on.")
	fs.StringP("addr", "a", config.DefaultAddr, "Address to listen on.")
	fs.Bool("disable-compression", false, "Disable the compression layer.")
	fs.String("not-found", "", "File served on 404. The body is empty when unset.")
	fs.Bool("ok", false, "Respond 200 instead of 404, with the --not-found body. Requires --not-found.")
	fs.CountP("verbose", "v", "Increase log verbosity. Repeatable.")
	fs.CountP("quiet", "q", "Decrease log verbosity. Repeatable.")
	fs.String("log-path", "", "Directory for daily serve.YYYY-MM-DD.log files. Console when unset.")
	fs.Int("log-max-files", config.DefaultLogMaxFiles, "Rotated log files to keep.")
	fs.String("metrics-addr", "", "Expose Prometheus metrics on this host:port. Disabled when unset.")
	fs.BoolP("version", "V", false, "Print version and exit.")
	return fs
}

func tlsFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tls", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringP("cert", "c", "", "Certificate file.")
	fs.StringP("key", "k", "", "Private key file.")
	fs.Bool("redirect-http", false, "Redirect port-80 HTTP to HTTPS. Effective only when the TLS port is 443.")
	return fs
}

/*──────────────────────────── carriers ────────────────────────────────────*/

// The *Arg helpers return nil unless the flag was explicitly passed.

func stringArg(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}

func boolArg(fs *pflag.FlagSet, name string) *bool {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetBool(name)
	return &v
}

func intArg(fs *pflag.FlagSet, name string) *int {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetInt(name)
	return &v
}

func uint16Arg(fs *pflag.FlagSet, name string) *uint16 {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetUint16(name)
	return &v
}
