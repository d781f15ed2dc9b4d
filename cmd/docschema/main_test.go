package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docschema/internal/metrics"
)

const sampleHTML = `<html><body>
<h1>County Employees</h1>
<table>
  <tr><th>Employee No</th><th>Full Name</th><th>Salary</th><th>Hired</th></tr>
  <tr><td>1001</td><td>Jane Doe</td><td>55000.00</td><td>2021-03-01</td></tr>
  <tr><td>1002</td><td>John Roe</td><td>61000.50</td><td></td></tr>
</table>
</body></html>`

// TestHelperProcess is a subprocess entrypoint used by tests that need to
// observe main()'s real exit code. The parent re-runs the test binary with
// -test.run=TestHelperProcess and GO_WANT_HELPER_PROCESS=1; arguments after a
// literal "--" become the command's arguments.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	i := 0
	for ; i < len(args); i++ {
		if args[i] == "--" {
			break
		}
	}
	if i < len(args) {
		os.Args = append([]string{args[0]}, args[i+1:]...)
	} else {
		os.Args = []string{args[0]}
	}

	main()
	os.Exit(0)
}

// runCmd executes main() in a subprocess and returns stdout, stderr and the
// exit code.
func runCmd(t *testing.T, dir string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	cmd := exec.Command(os.Args[0], append([]string{"-test.run=TestHelperProcess", "--"}, args...)...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	cmd.Dir = dir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if err == nil {
		return outBuf.String(), errBuf.String(), 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return outBuf.String(), errBuf.String(), ee.ExitCode()
	}
	t.Fatalf("unexpected run error: %T: %v", err, err)
	return "", "", 1
}

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "employees.html")
	require.NoError(t, os.WriteFile(path, []byte(sampleHTML), 0o644))
	return path
}

// TestMain_Success verifies a full run through main(): exit code, file list
// on stdout and summary on stderr.
func TestMain_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeSample(t, dir)
	out := filepath.Join(dir, "out")

	stdout, stderr, code := runCmd(t, dir, in, "-o", out, "-d", "postgres,mssql", "--summary", "--log-level", "warn")
	require.Equal(t, 0, code, "stderr=%s", stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{
		filepath.Join(out, "WordToExcel.xlsx"),
		filepath.Join(out, "employees.postgres.sql"),
		filepath.Join(out, "employees.mssql.sql"),
		filepath.Join(out, "employees.analysis.json"),
	}, lines)

	ddl, err := os.ReadFile(filepath.Join(out, "employees.mssql.sql"))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE employees (\n"+
		"  employee_no SMALLINT NOT NULL,\n"+
		"  full_name VARCHAR(8) NOT NULL,\n"+
		"  salary DECIMAL(7,2) NOT NULL,\n"+
		"  hired DATETIME2 NULL\n"+
		");\n", string(ddl))

	assert.Contains(t, stderr, "employee_no")
	assert.Contains(t, stderr, "Decimal(7,2)")
}

// TestMain_ExitCodes verifies usage and fatal exit codes.
func TestMain_ExitCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeSample(t, dir)

	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"missing input", nil, 2, "input document is required"},
		{"unknown flag", []string{"--bogus"}, 2, "unknown flag"},
		{"two inputs", []string{in, in}, 2, "usage"},
		{"input twice", []string{"-i", in, in}, 2, "not both"},
		{"unknown dialect", []string{in, "-d", "oracle"}, 2, "unknown dialect"},
		{"bad log level", []string{in, "--log-level", "loud"}, 2, "log level"},
		{"unsupported format", []string{filepath.Join(dir, "x.pdf"), "-o", filepath.Join(dir, "o1")}, 1, "unsupported document format"},
		{"missing file", []string{filepath.Join(dir, "missing.docx"), "-o", filepath.Join(dir, "o2")}, 1, "run failed"},
		{"help", []string{"--help"}, 0, "usage: docschema"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, stderr, code := runCmd(t, dir, tc.args...)
			assert.Equal(t, tc.code, code, "stderr=%s", stderr)
			assert.Contains(t, stderr, tc.want)
		})
	}
}

type fakeBackend struct {
	mu     sync.Mutex
	tables float64
	closed bool
}

func (b *fakeBackend) IncCounter(name string, delta float64, _ metrics.Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == metrics.TablesTotal {
		b.tables += delta
	}
}
func (b *fakeBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (b *fakeBackend) Flush() error                                     { return nil }
func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// TestRun_MetricsBackend verifies the backend factory receives the run id
// tag and is closed at the end. Not parallel: the metrics backend is
// process-wide.
func TestRun_MetricsBackend(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir)

	fb := &fakeBackend{}
	var gotTags []string
	var gotFlush time.Duration

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		in, "-o", filepath.Join(dir, "out"),
		"--metrics", "datadog", "--metrics-tag", "team:finance", "--metrics-flush", "2s",
		"--no-workbook", "--log-level", "error",
	}, deps{
		Stdout: &stdout,
		Stderr: &stderr,
		BackendFactory: func(_ context.Context, tags []string, flushEvery time.Duration) (metrics.Backend, error) {
			gotTags, gotFlush = tags, flushEvery
			return fb, nil
		},
		NewRunID: func() string { return "run-1" },
	})
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, []string{"run_id:run-1", "team:finance"}, gotTags)
	assert.Equal(t, 2*time.Second, gotFlush)
	assert.Equal(t, float64(1), fb.tables)
	assert.True(t, fb.closed)
	assert.NotContains(t, stdout.String(), "WordToExcel.xlsx")
	assert.Contains(t, stdout.String(), "employees.analysis.json")
}

// TestRun_BackendInitFailure verifies a failing backend factory is a
// configuration error.
func TestRun_BackendInitFailure(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir)

	var stderr bytes.Buffer
	code := run(context.Background(), []string{in, "-o", dir, "--metrics", "datadog"}, deps{
		Stderr: &stderr,
		BackendFactory: func(context.Context, []string, time.Duration) (metrics.Backend, error) {
			return nil, errors.New("no api key")
		},
	})
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "no api key")
}
