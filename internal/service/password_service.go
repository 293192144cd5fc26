package service

type PasswordService interface {
	Hash(password string) (string, error)
	// Verify never errors: a malformed hash simply does not match.
	Verify(password, hash string) bool
}
