package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены (сессия, вопрос).
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных (никнейм, ответ).
	ErrValidation = errors.New("validation failed")

	// ErrModelCall используется при сбое обращения к LLM (сеть, авторизация, парсинг).
	// Наружу из сервиса оценивания не выходит: после исчерпания попыток
	// возвращается безопасный fallback-вердикт.
	ErrModelCall = errors.New("model call failed")

	// ErrStyleCompliance используется, когда сгенерированный фидбек не прошел
	// стилистическую проверку (похож на список/словарик, мало терминов из пула).
	// Внутренняя ошибка: один строгий повтор, затем локальный ремонт.
	ErrStyleCompliance = errors.New("feedback failed style compliance")

	// ErrCorpus используется, когда вопрос в корпусе поврежден (пустой текст).
	ErrCorpus = errors.New("invalid question in corpus")
)
