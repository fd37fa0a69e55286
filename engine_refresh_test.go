package tshopbe

import (
	"context"
	"errors"
	"testing"
)

func TestRefreshRotates(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	res := mustSignup(t, engine, "alice@example.com", "hunter2!")

	pair, err := engine.Refresh(ctx, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.RefreshToken == res.Tokens.RefreshToken {
		t.Fatal("refresh returned the same refresh token")
	}

	stored, err := engine.sessions.Get(ctx, res.User.ID)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if stored != pair.RefreshToken {
		t.Fatal("store does not hold the rotated token")
	}
}

func TestRefreshReuseDetected(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	res := mustSignup(t, engine, "alice@example.com", "hunter2!")

	if _, err := engine.Refresh(ctx, res.Tokens.RefreshToken); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// The original token was rotated away; presenting it again is reuse.
	if _, err := engine.Refresh(ctx, res.Tokens.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("reused token = %v, want ErrRefreshInvalid", err)
	}
}

func TestRefreshFailuresAreUniform(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	res := mustSignup(t, engine, "alice@example.com", "hunter2!")

	// Garbage token, valid-but-unstored token, and stale token must all
	// produce the identical error value.
	garbage := "not.a.token"

	engine.Logout(ctx, res.Tokens.RefreshToken)
	unstored := res.Tokens.RefreshToken

	for name, tok := range map[string]string{
		"garbage":  garbage,
		"unstored": unstored,
	} {
		_, err := engine.Refresh(ctx, tok)
		if !errors.Is(err, ErrRefreshInvalid) {
			t.Fatalf("%s token = %v, want ErrRefreshInvalid", name, err)
		}
		if err.Error() != ErrRefreshInvalid.Error() {
			t.Fatalf("%s token leaks cause in message %q", name, err.Error())
		}
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	res := mustSignup(t, engine, "alice@example.com", "hunter2!")

	if _, err := engine.Refresh(ctx, res.Tokens.AccessToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("access token accepted for refresh: %v", err)
	}
}

func TestRefreshStoreDown(t *testing.T) {
	engine, env := newTestEngine(t, nil)
	ctx := context.Background()

	res := mustSignup(t, engine, "alice@example.com", "hunter2!")
	env.redis.Close()

	_, err := engine.Refresh(ctx, res.Tokens.RefreshToken)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("refresh with store down = %v, want ErrStoreUnavailable", err)
	}
	if errors.Is(err, ErrRefreshInvalid) {
		t.Fatal("infra failure must not read as an invalid token")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	res := mustSignup(t, engine, "alice@example.com", "hunter2!")

	engine.Logout(ctx, res.Tokens.RefreshToken)

	if _, err := engine.Refresh(ctx, res.Tokens.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("refresh after logout = %v, want ErrRefreshInvalid", err)
	}
}

func TestLogoutNeverFails(t *testing.T) {
	engine, env := newTestEngine(t, nil)
	ctx := context.Background()

	res := mustSignup(t, engine, "alice@example.com", "hunter2!")

	// Garbage input, expired-style garbage, and a dead store: all silent.
	engine.Logout(ctx, "")
	engine.Logout(ctx, "not.a.token")

	env.redis.Close()
	engine.Logout(ctx, res.Tokens.RefreshToken)
}
