package repository

import "errors"

var (
	// ErrSessionAlreadyCompleted означает попытку повторной отправки ответов
	// для уже завершённой сессии.
	ErrSessionAlreadyCompleted = errors.New("session is already completed")
	// ErrDuplicateAnswer означает, что ответ по паре (сессия, эпизод) уже сохранён.
	ErrDuplicateAnswer = errors.New("answer for this clip already exists")
)
