package password

import "golang.org/x/crypto/bcrypt"

// Cost 10 keeps interactive login under ~100ms while staying expensive for
// offline brute force. Changing it only affects newly hashed passwords.
const Cost = 10

func Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A mismatch or a malformed hash
// is an ordinary false, never an error: failed verification is a normal
// outcome, not an exceptional path.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
