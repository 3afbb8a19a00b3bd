// internal/cli/cli_test.go
//
// Flag parsing tests.
//
// Context
// -------
// Behaviours covered:
//
//   • only explicitly passed flags become overrides, the rest stay nil
//   • explicit values equal to a default still count as overrides
//   • the tls subcommand splits off at the first positional argument
//   • -v/-q occurrences collapse into a single signed delta
//   • unknown commands and trailing arguments are rejected

package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestParse_OnlyPassedFlagsBecomeOverrides(t *testing.T) {
	res, err := Parse([]string{"--port", "4000"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	a := res.Args
	if a.Port == nil || *a.Port != 4000 {
		t.Fatalf("port override = %v, want 4000", a.Port)
	}
	if a.Config != nil || a.Path != nil || a.Addr != nil || a.NotFound != nil ||
		a.OK != nil || a.DisableCompression != nil || a.Verbosity != nil ||
		a.LogPath != nil || a.LogMaxFiles != nil || a.MetricsAddr != nil || a.TLS != nil {
		t.Fatalf("untouched flags leaked overrides: %+v", a)
	}
	if res.ShowVersion {
		t.Fatal("version requested without -V")
	}
}

func TestParse_ExplicitDefaultStillOverrides(t *testing.T) {
	res, err := Parse([]string{"--port", "3000", "--disable-compression=false"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	a := res.Args
	if a.Port == nil || *a.Port != 3000 {
		t.Fatalf("port override = %v, want explicit 3000", a.Port)
	}
	if a.DisableCompression == nil {
		t.Fatal("explicit --disable-compression=false produced no override")
	}
	if *a.DisableCompression {
		t.Fatal("disable-compression = true, want explicit false")
	}
}

func TestParse_Shorthands(t *testing.T) {
	res, err := Parse([]string{"-p", "8080", "-a", "0.0.0.0"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	a := res.Args
	if a.Port == nil || *a.Port != 8080 {
		t.Fatalf("port = %v, want 8080", a.Port)
	}
	if a.Addr == nil || *a.Addr != "0.0.0.0" {
		t.Fatalf("addr = %v, want 0.0.0.0", a.Addr)
	}
}

func TestParse_TLSSubcommand(t *testing.T) {
	res, err := Parse([]string{"-p", "443", "tls", "-c", "cert.pem", "-k", "key.pem", "--redirect-http"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	a := res.Args
	if a.Port == nil || *a.Port != 443 {
		t.Fatalf("port = %v, want 443", a.Port)
	}
	if a.TLS == nil {
		t.Fatal("tls arguments missing")
	}
	if a.TLS.Cert == nil || *a.TLS.Cert != "cert.pem" {
		t.Fatalf("cert = %v, want cert.pem", a.TLS.Cert)
	}
	if a.TLS.Key == nil || *a.TLS.Key != "key.pem" {
		t.Fatalf("key = %v, want key.pem", a.TLS.Key)
	}
	if a.TLS.RedirectHTTP == nil || !*a.TLS.RedirectHTTP {
		t.Fatalf("redirect_http = %v, want true", a.TLS.RedirectHTTP)
	}
}

func TestParse_TLSSubcommandPartial(t *testing.T) {
	res, err := Parse([]string{"tls", "-c", "new-cert.pem"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tls := res.Args.TLS
	if tls == nil {
		t.Fatal("tls arguments missing")
	}
	if tls.Cert == nil || *tls.Cert != "new-cert.pem" {
		t.Fatalf("cert = %v, want new-cert.pem", tls.Cert)
	}
	if tls.Key != nil || tls.RedirectHTTP != nil {
		t.Fatalf("unset tls flags leaked overrides: %+v", tls)
	}
}

func TestParse_VerbosityDelta(t *testing.T) {
	res, err := Parse([]string{"-vvv", "-q"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Args.Verbosity == nil || *res.Args.Verbosity != 2 {
		t.Fatalf("verbosity = %v, want 2", res.Args.Verbosity)
	}

	res, err = Parse([]string{"-qq"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Args.Verbosity == nil || *res.Args.Verbosity != -2 {
		t.Fatalf("verbosity = %v, want -2", res.Args.Verbosity)
	}
}

func TestParse_UnknownCommand(t *testing.T) {
	if _, err := Parse([]string{"sls"}); err == nil {
		t.Fatal("unknown command accepted")
	}
}

func TestParse_TrailingArgumentAfterTLS(t *testing.T) {
	if _, err := Parse([]string{"tls", "-c", "a", "-k", "b", "extra"}); err == nil {
		t.Fatal("trailing argument accepted")
	}
}

func TestParse_Help(t *testing.T) {
	_, err := Parse([]string{"--help"})
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("err = %v, want pflag.ErrHelp", err)
	}
}

func TestParse_Version(t *testing.T) {
	res, err := Parse([]string{"-V"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.ShowVersion {
		t.Fatal("-V did not request the version")
	}
}

func TestUsage_MentionsBothFlagSets(t *testing.T) {
	u := Usage()
	for _, want := range []string{"--port", "--cert", "--redirect-http"} {
		if !strings.Contains(u, want) {
			t.Fatalf("usage text lacks %q:\n%s", want, u)
		}
	}
}
