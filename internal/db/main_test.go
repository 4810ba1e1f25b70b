package db

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/api/option"
)

const emulatorImage = "gcr.io/google.com/cloudsdktool/google-cloud-cli:emulators"

var (
	emulatorOnce      sync.Once
	emulatorHost      string
	emulatorErr       error
	emulatorContainer testcontainers.Container
	projectCounter    atomic.Int64
)

func TestMain(m *testing.M) {
	code := m.Run()

	if emulatorContainer != nil {
		_ = emulatorContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

// startEmulator reuses FIRESTORE_EMULATOR_HOST when it is set and starts a container otherwise.
func startEmulator(t *testing.T) {
	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		emulatorHost = host
		return
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        emulatorImage,
			ExposedPorts: []string{"8080/tcp"},
			Cmd:          []string{"gcloud", "emulators", "firestore", "start", "--host-port=0.0.0.0:8080"},
			WaitingFor:   wait.ForLog("Dev App Server is now running").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		emulatorErr = fmt.Errorf("failed to start firestore emulator: %w", err)
		return
	}
	emulatorContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		emulatorErr = err
		return
	}

	port, err := container.MappedPort(ctx, "8080")
	if err != nil {
		emulatorErr = err
		return
	}

	emulatorHost = net.JoinHostPort(host, port.Port())
}

// newTestStore connects to the emulator under a fresh project, so every test sees empty collections.
func newTestStore(t *testing.T) *FirestoreStore {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping firestore emulator test in short mode")
	}

	emulatorOnce.Do(func() { startEmulator(t) })
	require.NoError(t, emulatorErr)
	if emulatorHost == "" {
		t.Skip("firestore emulator is not available")
	}

	t.Setenv("FIRESTORE_EMULATOR_HOST", emulatorHost)

	projectID := fmt.Sprintf("sheep-market-test-%d", projectCounter.Add(1))
	client, err := firestore.NewClient(context.Background(), projectID, option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return &FirestoreStore{
		client: client,
		now:    func() time.Time { return testNow },
	}
}
