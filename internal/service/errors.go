package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrTestNotAvailable — тест неактивен или недоступен данному пользователю
	ErrTestNotAvailable = errors.New("test is not available")
	// ErrTestHasNoClips — попытка начать сессию теста без эпизодов
	ErrTestHasNoClips = errors.New("test has no clips")
	// ErrViewLimitExceeded — исчерпан лимит просмотров эпизода в рамках сессии
	ErrViewLimitExceeded = errors.New("view limit for this clip exceeded")
	// ErrNotEnoughQuestions — в базе недостаточно активных вопросов для теста по Правилам
	ErrNotEnoughQuestions = errors.New("not enough active law questions")
)
