package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/storage/redis/v3"
)

const testRedisAddr = "localhost:6379"

type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)          {}
func (m *mockLogger) Info(_ string, _ ...any)           {}
func (m *mockLogger) Warn(_ string, _ ...any)           {}
func (m *mockLogger) Error(_ string, _ ...any)          {}
func (m *mockLogger) With(_ ...any) types.Logger        { return m }
func (m *mockLogger) WithModule(_ string) types.Logger  { return m }
func (m *mockLogger) WithError(_ error) types.Logger    { return m }

// checkRedisAvailable skips the test when Redis is not reachable.
func checkRedisAvailable(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", testRedisAddr, 2*time.Second)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	conn.Close()
}

func setupTestCacheService(t *testing.T, prefix string) CacheService {
	t.Helper()
	checkRedisAvailable(t)

	store := redis.New(redis.Config{Host: "localhost", Port: 6379})
	svc := NewCacheService(store, prefix, time.Minute)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestCacheService_SetGet(t *testing.T) {
	svc := setupTestCacheService(t, "test:profile:")
	ctx := context.Background()

	type profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	want := profile{ID: "u1", Email: "alice@example.com"}
	if err := svc.Set(ctx, "u1", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got profile
	found, err := svc.Get(ctx, "u1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || got != want {
		t.Fatalf("Get() = %+v, %v; want %+v, true", got, found, want)
	}

	found, err = svc.Get(ctx, "u2", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("expected a miss for a key that was never set")
	}
}

func TestPluginModule_StartFailsWithoutRedis(t *testing.T) {
	m := NewPluginModule("127.0.0.1:1", "test:", time.Minute, &mockLogger{})
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected Start() to fail for an unreachable address")
	}
	if m.Port() != nil {
		t.Error("Port() should be nil when Start() failed")
	}
	if h := m.Health(context.Background()); h.Healthy {
		t.Error("Health() should be unhealthy before storage is initialized")
	}
}

func TestPluginModule_Lifecycle(t *testing.T) {
	checkRedisAvailable(t)

	m := NewPluginModule(testRedisAddr, "test:lifecycle:", time.Minute, &mockLogger{})
	if m.Name() != "cache" {
		t.Errorf("Name() = %q, want %q", m.Name(), "cache")
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if m.Port() == nil {
		t.Fatal("Port() returned nil after Start()")
	}
	if h := m.Health(context.Background()); !h.Healthy {
		t.Errorf("Health() = %+v, want healthy", h)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestParseRedisAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
	}{
		{"localhost:6380", "localhost", 6380},
		{":6379", "127.0.0.1", 6379},
		{"garbage", "127.0.0.1", 6379},
		{"redis:abc", "redis", 6379},
	}
	for _, tt := range tests {
		host, port := parseRedisAddr(tt.addr)
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("parseRedisAddr(%q) = %s:%d, want %s:%d", tt.addr, host, port, tt.wantHost, tt.wantPort)
		}
	}
}
