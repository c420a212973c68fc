package validation

import (
	"fmt"
	"unicode"
)

// MaxPasswordBytes предел bcrypt: длиннее пароль молча обрезается.
const MaxPasswordBytes = 72

// ValidatePassword требует не менее 8 символов, заглавную и строчную букву и цифру.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен быть не менее 8 символов")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("пароль должен быть не длиннее %d байт", MaxPasswordBytes)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("пароль должен содержать хотя бы одну заглавную букву")
	case !hasLower:
		return fmt.Errorf("пароль должен содержать хотя бы одну строчную букву")
	case !hasNumber:
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	return nil
}
