package tshopbe

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taiphan74/tshop-be/password"
)

// bcrypt at the minimum cost keeps the suite fast.
const testHashCost = 4

// memoryDirectory is an in-memory UserDirectory for tests.
type memoryDirectory struct {
	mu     sync.Mutex
	hasher *password.Hasher
	users  map[string]UserRecord
}

func newMemoryDirectory(t *testing.T) *memoryDirectory {
	t.Helper()
	hasher, err := password.NewHasher(testHashCost)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return &memoryDirectory{
		hasher: hasher,
		users:  make(map[string]UserRecord),
	}
}

func (d *memoryDirectory) Create(_ context.Context, email, passwordPlain string) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[email]; ok {
		return UserRecord{}, ErrEmailAlreadyRegistered
	}

	hash, err := d.hasher.Hash(passwordPlain)
	if err != nil {
		return UserRecord{}, err
	}

	user := UserRecord{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         "user",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	d.users[email] = user
	return user, nil
}

func (d *memoryDirectory) FindByEmail(_ context.Context, email string) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (d *memoryDirectory) VerifyPassword(plain, hash string) bool {
	return d.hasher.Verify(plain, hash)
}

func (d *memoryDirectory) SetEmailVerified(_ context.Context, email string, verified bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[email]
	if !ok {
		return ErrUserNotFound
	}
	user.EmailVerified = verified
	d.users[email] = user
	return nil
}

func (d *memoryDirectory) SetPasswordHash(_ context.Context, email, newHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[email]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = newHash
	d.users[email] = user
	return nil
}

var mailCodeRe = regexp.MustCompile(`\b(\d{6})\b`)

// captureMailer records outbound mail instead of sending it.
type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

type capturedMail struct {
	to, subject, text string
}

func (m *captureMailer) Send(_ context.Context, to, subject, text, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{to: to, subject: subject, text: text})
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	match := mailCodeRe.FindStringSubmatch(m.sent[len(m.sent)-1].text)
	if match == nil {
		t.Fatalf("no code in mail body %q", m.sent[len(m.sent)-1].text)
	}
	return match[1]
}

type testEnv struct {
	redis     *miniredis.Miniredis
	directory *memoryDirectory
	mailer    *captureMailer
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = "access-secret-for-tests"
	cfg.JWT.RefreshSecret = "refresh-secret-for-tests"
	cfg.Password.Cost = testHashCost
	return cfg
}

// newTestEngine builds an engine on a fresh miniredis with an in-memory
// directory and a capturing mailer. mutate, when non-nil, adjusts the
// config before Build.
func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *testEnv) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	env := &testEnv{
		redis:     mr,
		directory: newMemoryDirectory(t),
		mailer:    &captureMailer{},
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserDirectory(env.directory).
		WithMailer(env.mailer).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, env
}

func mustSignup(t *testing.T, e *Engine, email, pass string) *SignupResult {
	t.Helper()
	res, err := e.Signup(context.Background(), email, pass)
	if err != nil {
		t.Fatalf("Signup(%s) failed: %v", email, err)
	}
	return res
}
