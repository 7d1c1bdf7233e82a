package credential

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, iterations, err := HashPassword("S3cure!passphrase")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if iterations != DefaultIterations {
		t.Errorf("iterations = %d, want %d", iterations, DefaultIterations)
	}
	if hash == "" || salt == "" {
		t.Fatal("hash and salt must be non-empty")
	}

	if !VerifyPassword("S3cure!passphrase", hash, salt, iterations) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong-password", hash, salt, iterations) {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("S3cure!passphrase", hash, salt, iterations-1) {
		t.Error("wrong iteration count accepted")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	hash1, salt1, _, err := HashPassword("S3cure!passphrase")
	if err != nil {
		t.Fatal(err)
	}
	hash2, salt2, _, err := HashPassword("S3cure!passphrase")
	if err != nil {
		t.Fatal(err)
	}
	if salt1 == salt2 {
		t.Error("two hashes of the same password share a salt")
	}
	if hash1 == hash2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestNewTokenAndDigest(t *testing.T) {
	a, err := NewToken(SessionTokenBytes)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewToken(SessionTokenBytes)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two tokens are identical")
	}
	if len(a) != SessionTokenBytes*2 {
		t.Errorf("token length = %d, want %d hex chars", len(a), SessionTokenBytes*2)
	}

	if Digest(a) == a {
		t.Error("digest must not equal the raw token")
	}
	if !DigestEqual(Digest(a), Digest(a)) {
		t.Error("equal digests compare unequal")
	}
	if DigestEqual(Digest(a), Digest(b)) {
		t.Error("different digests compare equal")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		email    string
		wantOK   bool
	}{
		{"acceptable", "Gr0wth!spurt", "fern@example.com", true},
		{"too short", "Ab1!x", "fern@example.com", false},
		{"no uppercase", "gr0wth!spurt", "fern@example.com", false},
		{"no lowercase", "GR0WTH!SPURT", "fern@example.com", false},
		{"no digit", "Growth!spurt", "fern@example.com", false},
		{"no symbol", "Gr0wthspurt1", "fern@example.com", false},
		{"whitespace", "Gr0wth! spurt", "fern@example.com", false},
		{"contains local part", "MyFern1!pass", "fern@example.com", false},
		{"short local part ignored", "Ab1!defghij", "ab@example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidatePassword(tt.password, tt.email)
			if (msg == "") != tt.wantOK {
				t.Errorf("ValidatePassword(%q) = %q, wantOK %v", tt.password, msg, tt.wantOK)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Fern@Example.COM "); got != "fern@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
	if got := EmailLocalPart("fern@example.com"); got != "fern" {
		t.Errorf("EmailLocalPart = %q", got)
	}
}

func TestNormalizeDeviceID(t *testing.T) {
	if got := NormalizeDeviceID("  "); got != "unknown" {
		t.Errorf("empty device id = %q, want unknown", got)
	}
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	if got := NormalizeDeviceID(string(long)); len(got) != 128 {
		t.Errorf("long device id length = %d, want 128", len(got))
	}
}
