package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinNameLength        = 2
	MaxNameLength        = 100
	MinPhoneDigits       = 10
	MaxPhoneDigits       = 13
	MaxProfileTextLength = 2000
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}
	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}
	return nil
}

// ValidateName проверяет имя пользователя: буквы любого алфавита, пробелы, дефис, апостроф и точка.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("имя обязательно")
	}
	if err := ValidateLength("имя", name, MinNameLength, MaxNameLength); err != nil {
		return err
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsSpace(r) || strings.ContainsRune("-'.", r) {
			continue
		}
		return fmt.Errorf("имя содержит недопустимые символы")
	}
	return nil
}

// ValidatePhone принимает номер с кодом страны или без; учитываются только цифры.
func ValidatePhone(phone string) error {
	digits := 0
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune("+()- ", r):
		default:
			return fmt.Errorf("телефон содержит недопустимые символы")
		}
	}
	if digits < MinPhoneDigits || digits > MaxPhoneDigits {
		return fmt.Errorf("телефон должен содержать от %d до %d цифр", MinPhoneDigits, MaxPhoneDigits)
	}
	return nil
}

// ValidateProfileText проверяет необязательные текстовые поля профиля.
func ValidateProfileText(fieldName string, value *string) error {
	if value == nil {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, MaxProfileTextLength)
}
