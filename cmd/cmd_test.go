package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-wiring/framework/app"
	"github.com/km-arc/go-wiring/framework/inspect"
	"github.com/km-arc/go-wiring/framework/registry"
)

// run executes the command line in args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	o := &options{}
	root := newRootCmd(o)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file", "testdata/empty.env"}, args...))

	err := root.Execute()
	o.shutdown()
	return stdout.String(), stderr.String(), err
}

// ── lint ──────────────────────────────────────────────────────────────────────

func TestLint_Valid(t *testing.T) {
	out, _, err := run(t, "lint", "testdata/valid.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "testdata/valid.yaml")
}

func TestLint_ReportsEveryProblem(t *testing.T) {
	out, _, err := run(t, "lint", "testdata/invalid.yaml")
	require.ErrorIs(t, err, ErrDiagnostics)

	assert.Contains(t, out, "[arity-mismatch] server")
	assert.Contains(t, out, "[silent-override] port")
	assert.Contains(t, out, "2 problems")
}

func TestLint_PlainOutput(t *testing.T) {
	out, _, err := run(t, "lint", "--no-color", "testdata/invalid.yaml")
	require.ErrorIs(t, err, ErrDiagnostics)

	want := `[arity-mismatch] server
    di: definition "server" has 1 argument sources but its factory requires 2
[silent-override] port
    di: definition "port" overrides 1 earlier registration(s)
2 problems
`
	assert.Equal(t, want, out)
}

func TestLint_ManifestStandsAlone(t *testing.T) {
	out, _, err := run(t, "lint", "--no-color", "testdata/framework_ids.yaml")
	require.ErrorIs(t, err, ErrDiagnostics)

	want := `[unresolved-dependency] svc
    di: definition "svc" depends on "config", which is neither a definition nor a group
1 problem
`
	assert.Equal(t, want, out)
}

func TestLint_JSON(t *testing.T) {
	out, _, err := run(t, "lint", "--format", "json", "testdata/invalid.yaml")
	require.ErrorIs(t, err, ErrDiagnostics)

	var rep inspect.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.False(t, rep.Valid)
	require.Len(t, rep.Errors, 2)
	assert.Equal(t, registry.KindArityMismatch, rep.Errors[0].Kind)
	assert.Equal(t, registry.KindSilentOverride, rep.Errors[1].Kind)
}

func TestLint_AllowOverrides(t *testing.T) {
	_, _, err := run(t, "lint", "testdata/override.yaml")
	require.ErrorIs(t, err, ErrDiagnostics)

	_, _, err = run(t, "lint", "--allow-overrides", "testdata/override.yaml")
	require.NoError(t, err)
}

func TestLint_Strict(t *testing.T) {
	t.Setenv("WIRING_STRICT", "false")

	_, _, err := run(t, "lint", "testdata/cycle.hcl")
	require.NoError(t, err)

	out, _, err := run(t, "lint", "--strict", "testdata/cycle.hcl")
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Contains(t, out, "[dependency-cycle]")
}

func TestLint_MissingFile(t *testing.T) {
	out, _, err := run(t, "lint", filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Contains(t, out, "[invalid-declaration]")
	assert.Contains(t, out, "read manifest")
}

func TestLint_UnknownFormat(t *testing.T) {
	_, _, err := run(t, "lint", "--format", "xml", "testdata/valid.yaml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDiagnostics)
}

func TestLint_RequiresFiles(t *testing.T) {
	_, _, err := run(t, "lint")
	require.Error(t, err)
}

func TestLint_LogLevelFlag(t *testing.T) {
	_, stderr, err := run(t, "--log-level", "debug", "lint", "testdata/valid.yaml")
	require.NoError(t, err)
	assert.Contains(t, stderr, "declared group")
}

// ── version ───────────────────────────────────────────────────────────────────

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wiring "+app.Version+"\n", out)
}

// ── inspect ───────────────────────────────────────────────────────────────────

func newTestOptions(t *testing.T) *options {
	t.Helper()
	o := &options{envFiles: []string{"testdata/empty.env"}}
	root := newRootCmd(o)
	root.SetErr(&bytes.Buffer{})
	require.NoError(t, o.init(root))
	return o
}

func TestInspectServer_ServesManifest(t *testing.T) {
	o := newTestOptions(t)

	srv, err := o.newInspectServer(o.cfg, []string{"testdata/valid.yaml"})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/definitions/server", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"args":["config","port","handlers"]`)

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/diagnostics", nil))
	assert.Contains(t, rr.Body.String(), `"valid":true`)

	assert.Equal(t, []string{"config", "health", "port", "server"}, srv.Registry().Snapshot().DefinitionIDs())
}

func TestInspectServer_LintUsesEmptyRegistry(t *testing.T) {
	o := newTestOptions(t)

	srv, err := o.newInspectServer(o.cfg, []string{"testdata/valid.yaml"})
	require.NoError(t, err)

	body, err := os.ReadFile("testdata/framework_ids.yaml")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/lint", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var rep inspect.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, registry.KindUnresolvedDependency, rep.Errors[0].Kind)
	assert.Equal(t, "svc", rep.Errors[0].Subject)
}

func TestInspectServer_RejectsBrokenManifest(t *testing.T) {
	o := newTestOptions(t)

	_, err := o.newInspectServer(o.cfg, []string{filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestReload_SwapsOnlyWhenManifestApplies(t *testing.T) {
	o := newTestOptions(t)

	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte("definitions:\n  - id: port\n    value: 1\n"), 0o644))

	srv, err := o.newInspectServer(o.cfg, []string{path})
	require.NoError(t, err)
	rev := srv.Revision()

	require.NoError(t, os.WriteFile(path, []byte("definitions:\n  - id: port\n    value: 1\n  - id: addr\n    value: x\n"), 0o644))
	require.NoError(t, o.reload(srv, []string{path}))
	assert.NotEqual(t, rev, srv.Revision())
	assert.True(t, srv.Registry().Snapshot().HasDefinition("addr"))

	rev = srv.Revision()
	require.NoError(t, os.WriteFile(path, []byte("definitions:\n  - id: \"\"\n"), 0o644))
	require.Error(t, o.reload(srv, []string{path}))
	assert.Equal(t, rev, srv.Revision())
}
