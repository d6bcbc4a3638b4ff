package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	oldStdout, oldStderr, oldNoColor := Stdout, Stderr, color.NoColor
	t.Cleanup(func() {
		Stdout, Stderr, color.NoColor = oldStdout, oldStderr, oldNoColor
	})

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	Stdout, Stderr = stdout, stderr
	color.NoColor = true
	return stdout, stderr
}

func TestMessages(t *testing.T) {
	stdout, stderr := capture(t)

	Successf("listening on %s", ":8080")
	Infof("shutting down")
	Warningf("no orchestrator token")
	Errorf("bind: %s", "address in use")

	assert.Equal(t, "✓ listening on :8080\n→ shutting down\n⚠ no orchestrator token\n", stdout.String())
	assert.Equal(t, "✗ bind: address in use\n", stderr.String())
}

func TestHeaderAndKeyValue(t *testing.T) {
	stdout, _ := capture(t)

	Header("Playbooks")
	KeyValue("Address", ":8080")
	Blank()

	assert.Equal(t, "\nPlaybooks\n─────────\n  Address: :8080\n\n", stdout.String())
}

func TestTable(t *testing.T) {
	stdout, _ := capture(t)

	Table([]string{"Method", "Path"}, [][]string{
		{"GET", "/health"},
		{"DELETE", "/v1/playbooks/{id}"},
		{"POST", "/v1/playbooks", "ignored"},
	})

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Method  Path                ",
		"──────  ──────────────────  ",
		"GET     /health             ",
		"DELETE  /v1/playbooks/{id}  ",
		"POST    /v1/playbooks       ",
	}, lines)
}

func TestTable_EmptyHeaders(t *testing.T) {
	stdout, _ := capture(t)

	Table(nil, [][]string{{"a"}})
	assert.Empty(t, stdout.String())
}

func TestVisibleLen(t *testing.T) {
	assert.Equal(t, 3, visibleLen("GET"))
	assert.Equal(t, 3, visibleLen("\x1b[34mGET\x1b[0m"))
	assert.Equal(t, 1, visibleLen("─"))
}

func TestMethodBadge(t *testing.T) {
	_, _ = capture(t)

	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"} {
		assert.Equal(t, m, MethodBadge(m))
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5*time.Minute + 3*time.Second, "5m 3s"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Duration(tt.in))
		})
	}
}
