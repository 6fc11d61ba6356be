package user

import (
	"fmt"
	"unicode"
)

const (
	MinLoginLen    = 3
	MaxLoginLen    = 32
	MinPasswordLen = 8
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLen = 72
)

type Validator interface {
	ValidateRegister(login, password string) error
	ValidateLogin(login string) error
	ValidatePassword(password string) error
}

type PasswordValidator struct {
	requireDigit  bool
	requireLetter bool
}

func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		requireDigit:  true,
		requireLetter: true,
	}
}

func (v *PasswordValidator) ValidateRegister(login, password string) error {
	if err := v.ValidateLogin(login); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := v.ValidatePassword(password); err != nil {
		return fmt.Errorf("password: %w", err)
	}
	return nil
}

func (v *PasswordValidator) ValidateLogin(login string) error {
	n := len([]rune(login))
	if n < MinLoginLen {
		return fmt.Errorf("must be at least %d characters", MinLoginLen)
	}
	if n > MaxLoginLen {
		return fmt.Errorf("must be at most %d characters", MaxLoginLen)
	}
	for _, r := range login {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' && r != '@' {
			return fmt.Errorf("may only contain letters, digits and '_', '-', '.', '@'")
		}
	}
	return nil
}

func (v *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("must be at most %d bytes", MaxPasswordLen)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if v.requireLetter && !hasLetter {
		return fmt.Errorf("must contain a letter")
	}
	if v.requireDigit && !hasDigit {
		return fmt.Errorf("must contain a digit")
	}
	return nil
}
