package security

import "golang.org/x/crypto/bcrypt"

// bcrypt cost stays at the library default; raising it is a config change
// for another day, existing hashes keep working either way.
const hashCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext password for storage. The plaintext is
// never persisted anywhere.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a stored hash against a login attempt. A non-nil
// error means the password does not match.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
