package crypto

import (
	"strings"
	"testing"
)

// Well-known throwaway key pair (hardhat account #0).
const (
	testKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNewSigner_AddressDerivation(t *testing.T) {
	s, err := NewSigner(testKey, 137)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	if got := s.Address().Hex(); got != testAddress {
		t.Errorf("address = %s, want %s", got, testAddress)
	}

	// 0x prefix must be accepted too.
	s2, err := NewSigner("0x"+testKey, 137)
	if err != nil {
		t.Fatalf("NewSigner with prefix: %v", err)
	}
	if s2.Address() != s.Address() {
		t.Error("prefixed key derived a different address")
	}
}

func TestNewSigner_RejectsGarbage(t *testing.T) {
	if _, err := NewSigner("not-a-key", 137); err == nil {
		t.Error("expected error for invalid key")
	}
}

func TestSignAuthMessage(t *testing.T) {
	s, err := NewSigner(testKey, 137)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	sig, err := s.SignAuthMessage(1700000000, 0)
	if err != nil {
		t.Fatalf("SignAuthMessage: %v", err)
	}
	if !strings.HasPrefix(sig, "0x") || len(sig) != 2+130 {
		t.Errorf("signature %q: want 0x-prefixed 65 bytes", sig)
	}

	// Deterministic for identical inputs.
	sig2, err := s.SignAuthMessage(1700000000, 0)
	if err != nil {
		t.Fatalf("SignAuthMessage: %v", err)
	}
	if sig2 != sig {
		t.Error("same auth message signed differently")
	}

	sig3, _ := s.SignAuthMessage(1700000001, 0)
	if sig3 == sig {
		t.Error("different timestamp produced identical signature")
	}
}

func TestSignOrder_InvalidNumeric(t *testing.T) {
	s, err := NewSigner(testKey, 137)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	payload := OrderPayload{
		Salt:        "not-a-number",
		Maker:       testAddress,
		Signer:      testAddress,
		Taker:       "0x0000000000000000000000000000000000000000",
		TokenID:     "1",
		MakerAmount: "1000000",
		TakerAmount: "2000000",
		Expiration:  "0",
		Nonce:       "0",
		FeeRateBps:  "0",
	}
	if _, err := s.SignOrder(payload); err == nil {
		t.Error("expected error for non-numeric salt")
	}
}
