package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewKeyEncodings(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, 32)
	cases := map[string]string{
		"hex":     strings.Repeat("42", 32),
		"base64":  base64.StdEncoding.EncodeToString(raw),
		"raw":     strings.Repeat("k!", 16),
		"rawbase": base64.RawStdEncoding.EncodeToString(raw),
	}
	for name, key := range cases {
		svc, err := New(key)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if !svc.Configured() {
			t.Fatalf("%s: expected configured service", name)
		}
	}

	if _, err := New("too-short"); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	svc, err := New(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := svc.Seal([]byte("30000.00"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("30000")) {
		t.Fatalf("sealed value leaks plaintext")
	}
	again, _ := svc.Seal([]byte("30000.00"))
	if bytes.Equal(sealed, again) {
		t.Fatalf("expected distinct nonces per seal")
	}
	plain, err := svc.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(plain) != "30000.00" {
		t.Fatalf("unexpected plaintext %q", plain)
	}

	if _, err := svc.Open([]byte{1, 2}); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Open(sealed); err == nil {
		t.Fatalf("expected tampered ciphertext to fail")
	}
}

func TestAmountRoundTrip(t *testing.T) {
	svc, err := New(strings.Repeat("cd", 32))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := svc.SealAmount(decimal.RequireFromString("45000.50"))
	if err != nil {
		t.Fatalf("seal amount: %v", err)
	}
	amount, err := svc.OpenAmount(sealed)
	if err != nil {
		t.Fatalf("open amount: %v", err)
	}
	if amount.StringFixed(2) != "45000.50" {
		t.Fatalf("unexpected amount %s", amount.StringFixed(2))
	}
}

func TestPassThroughWithoutKey(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if svc.Configured() {
		t.Fatalf("expected unconfigured service")
	}
	out, err := svc.Seal([]byte("plain"))
	if err != nil || string(out) != "plain" {
		t.Fatalf("expected pass-through, got %q %v", out, err)
	}
	var nilSvc *Service
	if nilSvc.Configured() {
		t.Fatalf("nil service must report unconfigured")
	}
}
