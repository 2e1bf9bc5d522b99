package sessions

import "errors"

var ErrInvalidToken = errors.New("The session token is malformed, expired or has an invalid signature")

var ErrMissingSecret = errors.New("A signing secret is required to issue session tokens")

var ErrUserNotFound = errors.New("The user was not found with that id or email")

var ErrUserExists = errors.New("A user with that username or email already exists")
