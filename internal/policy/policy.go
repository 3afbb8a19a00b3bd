// internal/policy/policy.go
//
// Request-disposition engine.
//
// Context
// -------
// Policy answers one question: given the URL path of a request, what
// should the response be?  The answer is a Disposition, a closed set of
// four outcomes decided from the filesystem plus two knobs (not_found,
// ok).  The decision is pure apart from os.Stat, carries no HTTP types,
// and holds no mutable state, so one Policy value serves every request
// concurrently.
//
// The security invariant lives here too: no resolved path ever escapes
// the serving root.  Any dot-dot path segment is refused before the
// filesystem is consulted, and a post-join prefix check backs that up.

package policy

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutOfRoot marks a request path that tries to escape the serving
// root.  Answered per request with a 400-class response, never fatal.
var ErrOutOfRoot = errors.New("request path escapes the serving root")

// Kind enumerates the closed set of outcomes.
type Kind int

const (
	// ServeFile: Path names an existing regular file under the root.
	ServeFile Kind = iota
	// NotFoundEmpty: nothing to serve, respond 404 with an empty body.
	NotFoundEmpty
	// NotFoundWithBody: respond 404 with the configured fallback body.
	NotFoundWithBody
	// OKOverride: respond 200 with the configured fallback body, the
	// single-page-application routing pattern.
	OKOverride
)

// String is also the metrics label for the outcome.
func (k Kind) String() string {
	switch k {
	case ServeFile:
		return "serve"
	case NotFoundEmpty:
		return "not_found_empty"
	case NotFoundWithBody:
		return "not_found_with_body"
	case OKOverride:
		return "ok_override"
	default:
		return "unknown"
	}
}

// Disposition is the decided outcome for one request.
type Disposition struct {
	Kind Kind
	Path string // file to send; empty for NotFoundEmpty
}

// Policy decides dispositions for one serving root.
type Policy struct {
	root       string // absolute
	notFound   string // empty when no fallback is configured
	okOverride bool
}

// New builds a Policy rooted at root.  Root existence and the
// ok/not_found coupling are already enforced by the config layer.
func New(root, notFound string, okOverride bool) (*Policy, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Policy{root: abs, notFound: notFound, okOverride: okOverride}, nil
}

// Root returns the absolute serving root.
func (p *Policy) Root() string { return p.root }

// Decide resolves urlPath against the root and picks the outcome.
//
// Directories resolve to their index.html without redirecting, so /docs
// serves /docs/index.html when that exists and otherwise falls through
// to the miss chain.
func (p *Policy) Decide(urlPath string) (Disposition, error) {
	if containsDotDot(urlPath) {
		return Disposition{}, ErrOutOfRoot
	}

	rel := path.Clean("/" + urlPath)
	fsPath := filepath.Join(p.root, filepath.FromSlash(rel))

	// Clean on a rooted path cannot climb out; this keeps the invariant
	// independent of how the join above evolves.
	if fsPath != p.root && !strings.HasPrefix(fsPath, p.root+string(os.PathSeparator)) {
		return Disposition{}, ErrOutOfRoot
	}

	st, err := os.Stat(fsPath)
	switch {
	case err == nil && st.Mode().IsRegular():
		return Disposition{Kind: ServeFile, Path: fsPath}, nil
	case err == nil && st.IsDir():
		idx := filepath.Join(fsPath, "index.html")
		if ist, ierr := os.Stat(idx); ierr == nil && ist.Mode().IsRegular() {
			return Disposition{Kind: ServeFile, Path: idx}, nil
		}
	}

	return p.miss(), nil
}

// miss is the not-found chain: 200 override, then 404 with body, then
// bare 404.
func (p *Policy) miss() Disposition {
	switch {
	case p.okOverride:
		return Disposition{Kind: OKOverride, Path: p.notFound}
	case p.notFound != "":
		return Disposition{Kind: NotFoundWithBody, Path: p.notFound}
	default:
		return Disposition{Kind: NotFoundEmpty}
	}
}

// containsDotDot reports whether any slash- or backslash-delimited
// segment of v is "..", the same refusal the net/http file server uses.
func containsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, ent := range strings.FieldsFunc(v, isSlashRune) {
		if ent == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }
