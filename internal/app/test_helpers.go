package app

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/vk/devmaker/internal/executor"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// TestOutput collects everything an App under test writes.
type TestOutput struct {
	Out  *SafeBuffer // dry-run report
	Logs *SafeBuffer
	Jobs *SafeBuffer // stdout and stderr of job processes
}

// fixedEnvironment pins the invoking user's details for test runs.
type fixedEnvironment struct{}

func (fixedEnvironment) HomeDir() (string, error)  { return "/home/tester", nil }
func (fixedEnvironment) Username() (string, error) { return "tester", nil }

// SetupAppTest creates a new app instance for system testing. Job processes
// run with a fixed HOME and USER, no stdin, and a per-test temp root.
func SetupAppTest(t *testing.T, cfg *Config, opts ...Option) (*App, *TestOutput) {
	t.Helper()

	out := &TestOutput{Out: &SafeBuffer{}, Logs: &SafeBuffer{}, Jobs: &SafeBuffer{}}
	cfg.LogLevel = "debug"
	cfg.NoColor = true

	opts = append([]Option{
		WithRunnerOptions(
			executor.WithEnvironment(fixedEnvironment{}),
			executor.WithIO(strings.NewReader(""), out.Jobs, out.Jobs),
			executor.WithTempRoot(t.TempDir()),
		),
	}, opts...)
	testApp := NewApp(out.Out, out.Logs, cfg, opts...)

	t.Cleanup(func() {
		if os.Getenv("DEVMAKER_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.Logs.String())
		}
	})

	return testApp, out
}
