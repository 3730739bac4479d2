package usecase

import "errors"

var (
	ErrThemeNotFound  = errors.New("theme not found")
	ErrDuplicateTheme = errors.New("theme slug already exists")
)
