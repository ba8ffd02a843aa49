package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"guestbook/internal/model"
)

// validateContent trims content and checks it against the length limit.
// Length is counted in code points so emoji count as one character.
func validateContent(content string, maxLength int) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", model.ErrContentRequired
	}
	if !model.IsStorableText(content) {
		return "", model.ErrInvalidText
	}
	if n := utf8.RuneCountInString(content); n > maxLength {
		return "", fmt.Errorf("%w: %d characters, max %d", model.ErrContentTooLong, n, maxLength)
	}
	return content, nil
}

// validateUsername trims a username. The limit matches the identity cookie,
// so whoever can post can also be remembered and like.
func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", model.ErrUsernameRequired
	}
	if !model.IsStorableText(username) {
		return "", model.ErrInvalidText
	}
	if utf8.RuneCountInString(username) > model.MaxUsernameLength {
		return "", model.ErrUsernameTooLong
	}
	return username, nil
}

// validateAuthored checks a username/content pair for messages and replies.
func validateAuthored(username, content string, maxLength int) (string, string, error) {
	username, err := validateUsername(username)
	if err != nil {
		return "", "", err
	}
	content, err = validateContent(content, maxLength)
	if err != nil {
		return "", "", err
	}
	return username, content, nil
}

// validateSearchTerm trims a search term. Any other character is matched literally.
func validateSearchTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if !model.IsStorableText(term) {
		return "", model.ErrInvalidText
	}
	return term, nil
}

// validateID rejects ids that are not UUIDs before they reach the database.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.ErrInvalidID
	}
	return nil
}
