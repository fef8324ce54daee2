package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a plain password for storage in
// users.password_hash. The cost comes from BCRYPT_COST so deployments
// can trade hashing latency against brute-force resistance.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether the plain password matches the stored
// bcrypt hash. The comparison is constant-time inside bcrypt; callers
// only see a boolean so no error detail leaks into login responses.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
