package token

import (
	"errors"
	"testing"
	"time"
)

func testCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *Codec {
	t.Helper()

	c, err := NewCodec(Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		AccessTTL:     accessTTL,
		RefreshSecret: []byte("refresh-secret-for-tests"),
		RefreshTTL:    refreshTTL,
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return c
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	c := testCodec(t, 15*time.Minute, 7*24*time.Hour)
	id := Identity{Subject: "u-1", Email: "alice@example.com", Role: "user"}

	access, err := c.SignAccess(id)
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}
	refresh, err := c.SignRefresh(id)
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}
	if access == refresh {
		t.Fatal("access and refresh tokens must differ")
	}

	ac, err := c.VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if got := ac.Identity(); got != id {
		t.Fatalf("access identity = %+v, want %+v", got, id)
	}

	rc, err := c.VerifyRefresh(refresh)
	if err != nil {
		t.Fatalf("VerifyRefresh failed: %v", err)
	}
	if rc.Subject != "u-1" {
		t.Fatalf("refresh subject = %q, want u-1", rc.Subject)
	}
}

func TestSignedTokensAreUnique(t *testing.T) {
	t.Parallel()

	c := testCodec(t, 15*time.Minute, 7*24*time.Hour)
	id := Identity{Subject: "u-7", Email: "alice@example.com", Role: "user"}

	// Back-to-back signatures land in the same wall-clock second; the jti
	// must still make every issuance distinct, or rotation could replace a
	// token with itself.
	first, err := c.SignRefresh(id)
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}
	second, err := c.SignRefresh(id)
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}
	if first == second {
		t.Fatal("two tokens for the same identity are byte-identical")
	}

	fc, err := c.VerifyRefresh(first)
	if err != nil {
		t.Fatalf("VerifyRefresh failed: %v", err)
	}
	sc, err := c.VerifyRefresh(second)
	if err != nil {
		t.Fatalf("VerifyRefresh failed: %v", err)
	}
	if fc.ID == "" || fc.ID == sc.ID {
		t.Fatalf("token ids %q and %q must be distinct and non-empty", fc.ID, sc.ID)
	}
}

func TestVerifyRejectsCrossClass(t *testing.T) {
	t.Parallel()

	c := testCodec(t, time.Minute, time.Hour)
	id := Identity{Subject: "u-2", Email: "bob@example.com", Role: "user"}

	access, err := c.SignAccess(id)
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}

	if _, err := c.VerifyRefresh(access); !errors.Is(err, ErrSignature) {
		t.Fatalf("VerifyRefresh(access token) = %v, want ErrSignature", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	c := testCodec(t, -time.Second, -time.Second)
	id := Identity{Subject: "u-3", Email: "eve@example.com", Role: "user"}

	access, err := c.SignAccess(id)
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}
	if _, err := c.VerifyAccess(access); !errors.Is(err, ErrExpired) {
		t.Fatalf("VerifyAccess(expired) = %v, want ErrExpired", err)
	}

	refresh, err := c.SignRefresh(id)
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}
	if _, err := c.VerifyRefresh(refresh); !errors.Is(err, ErrExpired) {
		t.Fatalf("VerifyRefresh(expired) = %v, want ErrExpired", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	t.Parallel()

	c := testCodec(t, time.Minute, time.Hour)
	refresh, err := c.SignRefresh(Identity{Subject: "u-4"})
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}

	tampered := refresh[:len(refresh)-2] + "xx"
	if _, err := c.VerifyRefresh(tampered); !errors.Is(err, ErrSignature) {
		t.Fatalf("VerifyRefresh(tampered) = %v, want ErrSignature", err)
	}
}

func TestDecodeUnverified(t *testing.T) {
	t.Parallel()

	c := testCodec(t, -time.Second, -time.Second)
	refresh, err := c.SignRefresh(Identity{Subject: "u-5", Email: "x@example.com"})
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}

	// Expired and unverifiable, but the subject must still be recoverable.
	claims, err := c.DecodeUnverified(refresh)
	if err != nil {
		t.Fatalf("DecodeUnverified failed: %v", err)
	}
	if claims.Subject != "u-5" {
		t.Fatalf("subject = %q, want u-5", claims.Subject)
	}

	if _, err := c.DecodeUnverified("not-a-token"); err == nil {
		t.Fatal("DecodeUnverified(garbage) should fail")
	}
}

func TestNewCodecRejectsSharedSecret(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(Config{
		AccessSecret:  []byte("same"),
		RefreshSecret: []byte("same"),
	})
	if err == nil {
		t.Fatal("NewCodec should reject identical secrets")
	}
}
