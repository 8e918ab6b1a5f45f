package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/eventide-gm/internal/api"
	"github.com/mcoot/eventide-gm/internal/config"
	"github.com/mcoot/eventide-gm/internal/factory"
	"github.com/mcoot/eventide-gm/internal/testutil"
)

const webhookSecret = "e2e-secret"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	dataDir    string
}

func newCLIRunner(t *testing.T, serverURL, dataDir string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "gmbot-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gmbot")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		dataDir:    dataDir,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--data-dir", r.dataDir,
		"--env-file", filepath.Join(r.dataDir, "none.env"),
		"--output", "json",
	}, args...)

	// Offline commands log missing data files to stderr; only stdout is parsed
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String() + stderr.String(), err
	}
	return stdout.String(), nil
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the bot in webhook mode with a fake messenger
type testServer struct {
	addr     string
	messages *testutil.FakeMessenger
	shutdown func()
}

func startTestServer(t *testing.T, dataDir string) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	settings, err := config.FromMap(map[string]string{
		"BOT_TOKEN":      "e2e",
		"DM_CHAT_ID":     "1000",
		"DATA_DIR":       dataDir,
		"HTTP_ADDR":      addr,
		"WEBHOOK_SECRET": webhookSecret,
	})
	require.NoError(t, err)

	messages := testutil.NewFakeMessenger()
	app, err := factory.New(context.Background(), factory.Config{
		Settings:  settings,
		Logger:    testutil.NopLogger(),
		Messenger: messages,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		Stats:         app.Store,
		Clock:         app.Clock,
		StartedAt:     app.StartedAt,
		Mode:          api.ModeWebhook,
		Updates:       app.Events,
		WebhookSecret: app.WebhookSecret,
	})
	server := api.NewServer(router, api.DefaultServerConfig(addr), testutil.NopLogger())

	// Start server
	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/healthz")

	return &testServer{
		addr:     serverURL,
		messages: messages,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func postUpdate(t *testing.T, serverURL, body string) {
	t.Helper()

	resp, err := http.Post(serverURL+"/webhook/"+webhookSecret, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// Response types for JSON parsing
type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Mode       string `json:"mode"`
	Players    int    `json:"players"`
	Recipients int    `json:"recipients"`
}

type playerRow struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	dataDir := t.TempDir()
	ts := startTestServer(t, dataDir)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr, dataDir)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_WebhookRegistrationIsVisibleOffline(t *testing.T) {
	dataDir := t.TempDir()
	ts := startTestServer(t, dataDir)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr, dataDir)

	// A new user writes /start through the webhook
	postUpdate(t, ts.addr, `{"update_id": 1, "message": {"message_id": 5,
		"from": {"id": 42, "is_bot": false, "first_name": "Rook", "username": "rook"},
		"chat": {"id": 42, "type": "private"}, "date": 0, "text": "/start"}}`)

	texts := ts.messages.Texts(1000)
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[len(texts)-1], "New player registered: Rook (ID: 42, @rook)")

	// The running bot reports the player
	output, err := cli.run("status")
	require.NoError(t, err, "output: %s", output)

	var status statusResponse
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, "webhook", status.Mode)
	assert.Equal(t, 1, status.Players)

	// The offline listing reads the same player file
	output, err = cli.run("players", "list")
	require.NoError(t, err, "output: %s", output)

	var rows []playerRow
	require.NoError(t, json.Unmarshal([]byte(output), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(42), rows[0].ID)
	assert.Equal(t, "New Player Rook", rows[0].Name)
	assert.False(t, rows[0].Active)
	assert.Equal(t, "Undefined", rows[0].Status)
}

func TestCLI_RecipientCommands(t *testing.T) {
	dataDir := t.TempDir()
	cli := newCLIRunner(t, "http://127.0.0.1:0", dataDir)

	output, err := cli.run("recipients", "add", "ELLI")
	require.NoError(t, err, "output: %s", output)

	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Recipient 'ELLI' added.", msg.Message)

	output, err = cli.run("recipients", "list")
	require.NoError(t, err, "output: %s", output)

	var list struct {
		Recipients []string `json:"recipients"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	assert.Equal(t, []string{"ELLI"}, list.Recipients)

	data, err := os.ReadFile(filepath.Join(dataDir, "data", "recipients_data.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ELLI"`)
}

func TestCLI_WrongWebhookSecretIsNotFound(t *testing.T) {
	dataDir := t.TempDir()
	ts := startTestServer(t, dataDir)
	defer ts.shutdown()

	resp, err := http.Post(ts.addr+"/webhook/guess", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
