package factory

import (
	"time"

	"github.com/mcoot/eventide-gm/internal/config"
	"github.com/mcoot/eventide-gm/internal/dependencies/mocks"
	sessionmemory "github.com/mcoot/eventide-gm/internal/session/memory"
	"github.com/mcoot/eventide-gm/internal/storage/memory"
	"github.com/mcoot/eventide-gm/internal/testutil"
)

// TestAdminID is the game master account used by NewTestApp
const TestAdminID = 1000

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MemoryStorage *memory.Storage
	Messages      *testutil.FakeMessenger
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Documents are empty until seeded on MemoryStorage and loaded with Store.Load.
func NewTestApp(baseDir string) *TestApp {
	st := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockRandom.QueueString("test-webhook-secret")
	msgr := testutil.NewFakeMessenger()

	settings := config.Config{
		AdminID:          TestAdminID,
		DataDir:          baseDir,
		WelcomeImagePath: "assets/welcome.png",
		SessionStore:     config.SessionStoreMemory,
		SessionTTL:       300 * time.Second,
	}
	sessions := sessionmemory.New(mockClock, settings.SessionTTL)

	app := newWithDependencies(settings, st, sessions, msgr, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MemoryStorage: st,
		Messages:      msgr,
	}
}
