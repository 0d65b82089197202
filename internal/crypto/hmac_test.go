package crypto

import "testing"

func TestAPICreds_AuthHeadersAt(t *testing.T) {
	creds := &APICreds{
		Key:        "api-key-1",
		Secret:     "dG9wc2VjcmV0", // base64("topsecret")
		Passphrase: "pass",
	}

	headers := creds.AuthHeadersAt("0xabc", "POST", "/order", `{"orderID":"abc"}`, 1700000000)

	if headers["POLY_ADDRESS"] != "0xabc" {
		t.Errorf("POLY_ADDRESS = %q", headers["POLY_ADDRESS"])
	}
	if headers["POLY_API_KEY"] != "api-key-1" {
		t.Errorf("POLY_API_KEY = %q", headers["POLY_API_KEY"])
	}
	if headers["POLY_TIMESTAMP"] != "1700000000" {
		t.Errorf("POLY_TIMESTAMP = %q", headers["POLY_TIMESTAMP"])
	}
	if headers["POLY_PASSPHRASE"] != "pass" {
		t.Errorf("POLY_PASSPHRASE = %q", headers["POLY_PASSPHRASE"])
	}
	// HMAC-SHA256("topsecret", "1700000000POST/order{\"orderID\":\"abc\"}")
	want := "lQbiStSeb30xcVxbxujHF/CPdEq7F2nZBm0fhle1L4U="
	if headers["POLY_SIGNATURE"] != want {
		t.Errorf("POLY_SIGNATURE = %q, want %q", headers["POLY_SIGNATURE"], want)
	}
}

func TestAPICreds_AuthHeadersAt_NonBase64SecretFallsBack(t *testing.T) {
	creds := &APICreds{Key: "k", Secret: "key", Passphrase: "p"}

	headers := creds.AuthHeadersAt("0xabc", "GET", "/orders", "", 1700000000)

	// "key" is not valid base64, so the raw bytes are used as the HMAC key.
	want := "yElTLt+7mheZN9S0p6f0JSgz2zdcJF94t3Yo1CdPb5Y="
	if headers["POLY_SIGNATURE"] != want {
		t.Errorf("POLY_SIGNATURE = %q, want %q", headers["POLY_SIGNATURE"], want)
	}
}

func TestAPICreds_StringRedacts(t *testing.T) {
	creds := &APICreds{Key: "abcdef", Secret: "0123456789"}
	s := creds.String()
	if s != "APICreds{key=abcd****, secret=0123****}" {
		t.Errorf("String() = %q", s)
	}
}
