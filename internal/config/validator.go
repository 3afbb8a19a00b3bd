// internal/config/validator.go
//
// Central validation and its mapping onto the error taxonomy.
//
// Context
// -------
// `Resolve` calls `validateStruct` on the materialized Config after merging
// and defaulting.  All checks run here at startup, never at request time:
// the binary either runs with a fully coherent configuration or not at all.
//
// The struct tags on Config carry the rules, including the filesystem
// checks (`dir`, `file`).  go-playground/validator reports tag failures as
// a ValidationErrors list; `classify` translates the first failure into the
// sentinel taxonomy so callers keep a stable errors.Is surface.
//
// Notes
// -----
//   • `required_if=OK true` on NotFound encodes the ok/not_found coupling.
//   • Messages use the keys users type (`tls.cert`), not Go field names.

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns nil or the first rule violation, classified.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		// InvalidValidationError: a bug in the model, not in user input.
		return err
	}
	return classify(verrs[0])
}

// classify maps one field failure onto the sentinel taxonomy.
func classify(fe validator.FieldError) error {
	field := keyForNamespace(fe.StructNamespace())

	switch fe.Tag() {
	case "required_if":
		// The only conditional rule: ok = true without not_found.
		return fieldErr("ok", "", ErrInvalidCombination)
	case "required":
		if field == "tls.cert" || field == "tls.key" {
			return fieldErr(field, "", ErrIncompleteTLS)
		}
		return fieldErr(field, "", ErrInvalidCombination)
	case "file", "dir":
		path, _ := fe.Value().(string)
		return fieldErr(field, path, ErrPathNotFound)
	default:
		// ip, oneof, gte, hostname_port: malformed values.
		return fieldErr(field, fmt.Sprint(fe.Value()), ErrParse)
	}
}

// keyForNamespace turns validator namespaces (Config.TLS.Cert) into the
// config keys users actually type (tls.cert).
func keyForNamespace(ns string) string {
	switch ns {
	case "Config.Path":
		return "path"
	case "Config.Addr":
		return "addr"
	case "Config.NotFound":
		return "not_found"
	case "Config.OK":
		return "ok"
	case "Config.LogLevel":
		return "log_level"
	case "Config.LogPath":
		return "log_path"
	case "Config.LogMaxFiles":
		return "log_max_files"
	case "Config.MetricsAddr":
		return "metrics_addr"
	case "Config.TLS.Cert":
		return "tls.cert"
	case "Config.TLS.Key":
		return "tls.key"
	case "Config.TLS.RedirectHTTP":
		return "tls.redirect_http"
	default:
		return ns
	}
}
