package application

import "errors"

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// login responses do not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnauthorized means the caller is authenticated but is not the owner
	// of the resource being mutated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrWrongPassword is returned when a password change supplies an old
	// password that does not match.
	ErrWrongPassword = errors.New("wrong password")
)
