// Package validate holds the syntactic rules for form fields and the result
// types shared by every validation stage.
package validate

import (
	"regexp"
	"unicode/utf8"
)

const (
	ReasonEmailFormat    = "Please enter correct email address"
	ReasonUsernameLength = "username should have 3 or more characters"
	ReasonUsernameChars  = "username should contain only alphanumeric characters"
	ReasonPhoneFormat    = "Phone should be exactly 10 numbers"
)

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9+._%-]{1,256}@[a-zA-Z0-9]{1,64}\.[a-zA-Z0-9]{1,25}`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z._0-9]{2,19}$`)
	phonePattern    = regexp.MustCompile(`^[7-9][0-9]{9}$`)

	phoneInTextPattern = regexp.MustCompile(`[7-9][0-9]{9}`)
	digitRunPattern    = regexp.MustCompile(`[0-9]{5,}`)
)

// Email checks that text contains an email address anywhere in it.
func Email(text string) Result[string] {
	if text == "" {
		return Failure("", text)
	}
	if !emailPattern.MatchString(text) {
		return Failure(ReasonEmailFormat, text)
	}
	return Success(text)
}

// Username checks length and charset of a username.
func Username(text string) Result[string] {
	if text == "" {
		return Failure("", text)
	}
	if utf8.RuneCountInString(text) < 3 {
		return Failure(ReasonUsernameLength, text)
	}
	if !usernamePattern.MatchString(text) {
		return Failure(ReasonUsernameChars, text)
	}
	return Success(text)
}

// Phone checks for a ten digit mobile number starting with 7, 8 or 9.
func Phone(text string) Result[string] {
	if text == "" {
		return Failure("", text)
	}
	if !phonePattern.MatchString(text) {
		return Failure(ReasonPhoneFormat, text)
	}
	return Success(text)
}

// Syntax runs the rule for kind against text.
func Syntax(kind Kind, text string) Result[string] {
	switch kind {
	case Email:
		return Email(text)
	case Username:
		return Username(text)
	case Phone:
		return Phone(text)
	default:
		return Failure("unsupported field "+kind.String(), text)
	}
}

// ContainsPhoneNumber reports whether a mobile number appears anywhere in text.
func ContainsPhoneNumber(text string) bool {
	return phoneInTextPattern.MatchString(text)
}

// ContainsDigitRun reports whether text holds five or more consecutive digits.
func ContainsDigitRun(text string) bool {
	return digitRunPattern.MatchString(text)
}
