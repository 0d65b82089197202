package crypto

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptKey_RoundTrip(t *testing.T) {
	blob, err := EncryptKey("0x"+testKey, "hunter2")
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}

	got, err := DecryptKey(blob, "hunter2")
	if err != nil {
		t.Fatalf("DecryptKey: %v", err)
	}
	if got != testKey {
		t.Errorf("round trip = %s, want %s", got, testKey)
	}

	if _, err := DecryptKey(blob, "wrong"); err == nil {
		t.Error("expected failure with wrong password")
	}
}

func TestEncryptKey_Validation(t *testing.T) {
	if _, err := EncryptKey(testKey, ""); err == nil {
		t.Error("expected error for empty password")
	}
	if _, err := EncryptKey("abcd", "pw"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestLoadKey(t *testing.T) {
	t.Run("raw key wins", func(t *testing.T) {
		got, err := LoadKey(KeySource{RawPrivateKey: "0x" + testKey})
		if err != nil {
			t.Fatalf("LoadKey: %v", err)
		}
		if got != testKey {
			t.Errorf("got %s", got)
		}
	})

	t.Run("encrypted file", func(t *testing.T) {
		blob, err := EncryptKey(testKey, "pw")
		if err != nil {
			t.Fatalf("EncryptKey: %v", err)
		}
		path := filepath.Join(t.TempDir(), "key.json")
		if err := os.WriteFile(path, blob, 0o600); err != nil {
			t.Fatalf("write keyfile: %v", err)
		}

		got, err := LoadKey(KeySource{EncryptedKeyPath: path, KeyPassword: "pw"})
		if err != nil {
			t.Fatalf("LoadKey: %v", err)
		}
		if got != testKey {
			t.Errorf("got %s", got)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		if _, err := LoadKey(KeySource{}); err == nil {
			t.Error("expected error for empty source")
		}
	})
}
