package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	MsgPasswordMismatch   = "Passwords do not match"
	MsgInvalidEmail       = "Please use a valid BITS Goa email address"
	MsgUsernameRequired   = "Username is required"
	MsgPasswordRequired   = "Password is required"
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgSomethingWentWrong = "Something went wrong"
)

// EmailPattern accepts institute addresses for the 2019 to 2025 batches, e.g.
// f20224321@goa.bits-pilani.ac.in.
var EmailPattern = regexp.MustCompile(`^f20(19|2[0-5])\d{4}@goa\.bits-pilani\.ac\.in$`)

// SignupForm is the signup form payload.
type SignupForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func SignupFormFromRequest(r *http.Request) SignupForm {
	return SignupForm{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
}

// Validate checks the passwords first, then the email, then the remaining
// required fields. The returned error message is meant for the user.
func (f SignupForm) Validate() error {
	if err := validation.Validate(f.ConfirmPassword, validation.By(stringEquals(f.Password, MsgPasswordMismatch))); err != nil {
		return err
	}
	if err := validation.Validate(f.Email,
		validation.Required.Error(MsgInvalidEmail),
		validation.Match(EmailPattern).Error(MsgInvalidEmail),
	); err != nil {
		return err
	}
	if err := validation.Validate(f.Username, validation.Required.Error(MsgUsernameRequired)); err != nil {
		return err
	}
	return validation.Validate(f.Password, validation.Required.Error(MsgPasswordRequired))
}

// LoginForm is the login form payload.
type LoginForm struct {
	Email    string
	Password string
}

func LoginFormFromRequest(r *http.Request) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

// Validate only checks that both fields are present. Callers show the same
// generic message for a failed validation as for a failed login.
func (f LoginForm) Validate() error {
	return validation.Errors{
		"email":    validation.Validate(f.Email, validation.Required),
		"password": validation.Validate(f.Password, validation.Required),
	}.Filter()
}

func stringEquals(str, message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return errors.New(message)
		}
		return nil
	}
}
