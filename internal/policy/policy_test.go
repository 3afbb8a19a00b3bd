// internal/policy/policy_test.go
//
// Disposition engine tests.
//
// Context
// -------
// Behaviours covered:
//
//   • existing regular file → ServeFile with the resolved path
//   • directory → its index.html, with and without trailing slash
//   • miss chain: ok override, then fallback body, then empty 404
//   • dot-dot traversal in any spelling → ErrOutOfRoot, never ServeFile
//
// The fixture tree: index.html, assets/app.js, docs/index.html, and a
// bare/ directory with no index.

package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	write("index.html", "<html>home</html>")
	write("assets/app.js", "console.log(1)")
	write("docs/index.html", "<html>docs</html>")
	if err := os.MkdirAll(filepath.Join(root, "bare"), 0o755); err != nil {
		t.Fatalf("mkdir bare: %v", err)
	}
	return root
}

func TestDecide_ServesExistingFile(t *testing.T) {
	root := newRoot(t)
	p, err := New(root, "", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := p.Decide("/assets/app.js")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != ServeFile {
		t.Fatalf("kind = %v, want ServeFile", d.Kind)
	}
	if want := filepath.Join(root, "assets", "app.js"); d.Path != want {
		t.Fatalf("path = %q, want %q", d.Path, want)
	}
}

func TestDecide_DirectoryResolvesIndex(t *testing.T) {
	root := newRoot(t)
	p, err := New(root, "", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, urlPath := range []string{"/", "/docs", "/docs/"} {
		d, err := p.Decide(urlPath)
		if err != nil {
			t.Fatalf("Decide(%q): %v", urlPath, err)
		}
		if d.Kind != ServeFile {
			t.Fatalf("Decide(%q) kind = %v, want ServeFile", urlPath, d.Kind)
		}
		if filepath.Base(d.Path) != "index.html" {
			t.Fatalf("Decide(%q) path = %q, want an index.html", urlPath, d.Path)
		}
	}
}

func TestDecide_DirectoryWithoutIndexIsAMiss(t *testing.T) {
	root := newRoot(t)
	p, err := New(root, "", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := p.Decide("/bare/")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != NotFoundEmpty {
		t.Fatalf("kind = %v, want NotFoundEmpty", d.Kind)
	}
}

func TestDecide_MissChain(t *testing.T) {
	root := newRoot(t)
	nf := filepath.Join(root, "index.html")

	bare, err := New(root, "", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err := bare.Decide("/nope")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != NotFoundEmpty || d.Path != "" {
		t.Fatalf("disposition = %+v, want empty NotFoundEmpty", d)
	}

	withBody, err := New(root, nf, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err = withBody.Decide("/nope")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != NotFoundWithBody || d.Path != nf {
		t.Fatalf("disposition = %+v, want NotFoundWithBody %q", d, nf)
	}

	spa, err := New(root, nf, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err = spa.Decide("/client/route")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != OKOverride || d.Path != nf {
		t.Fatalf("disposition = %+v, want OKOverride %q", d, nf)
	}
}

func TestDecide_HitWinsOverOverride(t *testing.T) {
	root := newRoot(t)
	nf := filepath.Join(root, "index.html")

	p, err := New(root, nf, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err := p.Decide("/assets/app.js")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != ServeFile {
		t.Fatalf("kind = %v, want ServeFile for an existing file", d.Kind)
	}
}

func TestDecide_TraversalRefused(t *testing.T) {
	root := newRoot(t)
	p, err := New(root, "", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, urlPath := range []string{
		"/../../etc/passwd",
		"/assets/../../secret",
		"..",
		"/..\\..\\boot.ini",
		"/docs/../..",
	} {
		_, err := p.Decide(urlPath)
		if !errors.Is(err, ErrOutOfRoot) {
			t.Fatalf("Decide(%q) err = %v, want ErrOutOfRoot", urlPath, err)
		}
	}
}

func TestKind_MetricsLabels(t *testing.T) {
	want := map[Kind]string{
		ServeFile:        "serve",
		NotFoundEmpty:    "not_found_empty",
		NotFoundWithBody: "not_found_with_body",
		OKOverride:       "ok_override",
	}
	for k, s := range want {
		if k.String() != s {
			t.Fatalf("Kind(%d).String() = %q, want %q", int(k), k.String(), s)
		}
	}
}
