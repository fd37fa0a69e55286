package tshopbe

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBuildUsesConfiguredPasswordCost(t *testing.T) {
	engine, env := newTestEngine(t, func(cfg *Config) {
		cfg.Password.Cost = testHashCost
	})
	ctx := context.Background()

	mustSignup(t, engine, "alice@example.com", "hunter2!")
	if err := engine.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	code := env.mailer.lastCode(t)

	// The reset hash comes from the engine's hasher at the configured cost
	// and must still verify through the directory.
	if ok, err := engine.ResetPassword(ctx, "alice@example.com", code, "new-pass-9"); err != nil || !ok {
		t.Fatalf("ResetPassword = (%v, %v)", ok, err)
	}
	if _, err := engine.Signin(ctx, "alice@example.com", "new-pass-9"); err != nil {
		t.Fatalf("signin with reset password failed: %v", err)
	}
}

func TestBuildRejectsPasswordCostOutOfRange(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.Password.Cost = 99

	_, err = New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserDirectory(newMemoryDirectory(t)).
		Build()
	if err == nil {
		t.Fatal("Build accepted a bcrypt cost out of range")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserDirectory(newMemoryDirectory(t))

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("second Build on the same builder succeeded")
	}
}
