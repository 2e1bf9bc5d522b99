package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = bcrypt.DefaultCost

// Hashes a plaintext password with a fresh random salt.
func HashPassword(password string) (string, error) {
	bts, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

// Reports whether password matches the stored bcrypt hash. The comparison is constant time.
func VerifyPassword(password string, hashedPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
