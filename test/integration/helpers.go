//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/fivetwenty-io/cms-client/pkg/cmsclient"
	"github.com/joho/godotenv"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Service     string
	APIKey      string
	WriteAPIKey string
	Endpoint    string
	CmsPath     string
	Verbose     bool
}

// LoadTestConfig loads configuration from the environment, reading a .env
// file first when one exists.
func LoadTestConfig() *TestConfig {
	_ = godotenv.Load("../../.env", ".env")

	endpoint := os.Getenv("CMS_TEST_ENDPOINT")
	if endpoint == "" {
		endpoint = "contents"
	}

	return &TestConfig{
		Service:     os.Getenv("CMS_SERVICE"),
		APIKey:      os.Getenv("CMS_API_KEY"),
		WriteAPIKey: os.Getenv("CMS_WRITE_API_KEY"),
		Endpoint:    endpoint,
		CmsPath:     getCmsPath(),
		Verbose:     os.Getenv("CMS_VERBOSE") == "true",
	}
}

// getCmsPath determines the path to the cms binary
func getCmsPath() string {
	if path := os.Getenv("CMS_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../cms",
		"./cms",
		"../cms",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "cms"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Service == "" || config.APIKey == "" || config.WriteAPIKey == "" {
		t.Skip("CMS_SERVICE, CMS_API_KEY and CMS_WRITE_API_KEY must be set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the cms binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.CmsPath); err != nil {
		t.Skipf("cms binary not found at %s, skipping integration test", config.CmsPath)
	}
}

// NewClient builds a live client from the test configuration.
func (config *TestConfig) NewClient(t *testing.T) cms.Client {
	t.Helper()

	client, err := cmsclient.New(&cms.Config{
		Service:     config.Service,
		APIKey:      config.APIKey,
		WriteAPIKey: config.WriteAPIKey,
		HTTPTimeout: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return client
}

// CommandRunner provides utilities for running cms commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a cms command and returns output. Credentials are passed
// through the environment.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.CmsPath, args...)
	cmd.Env = append(os.Environ(),
		"CMS_SERVICE="+runner.config.Service,
		"CMS_API_KEY="+runner.config.APIKey,
		"CMS_WRITE_API_KEY="+runner.config.WriteAPIKey,
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.CmsPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique test value
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
