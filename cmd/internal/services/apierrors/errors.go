package apierrors

import "fmt"

// ValidationError представляет ошибку валидации входных данных.
// Используется для разделения ошибок валидации (HTTP 400) от серверных ошибок (HTTP 500).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError formats its arguments using format and returns a *ValidationError whose Message field is set to the formatted string.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundError представляет ошибку "ресурс не найден".
// Используется для возврата HTTP 404 Not Found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFoundError creates a NotFoundError whose Message is the result of formatting the given format string with the provided args.
func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{
		Message: fmt.Sprintf(format, args...),
	}
}

// DataUnavailableError - внешний табличный источник не удалось получить.
// Расчёт с частичными данными не допускается (HTTP 503).
type DataUnavailableError struct {
	Source string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("источник данных %q недоступен", e.Source)
	}
	return fmt.Sprintf("источник данных %q недоступен: %v", e.Source, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// NewDataUnavailableError оборачивает причину недоступности источника.
func NewDataUnavailableError(source string, err error) error {
	return &DataUnavailableError{Source: source, Err: err}
}

// SchemaMismatchError - в таблице источника нет обязательных колонок (HTTP 502).
type SchemaMismatchError struct {
	Source  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("таблица %q не содержит обязательных колонок: %v", e.Source, e.Missing)
}

// NewSchemaMismatchError creates a SchemaMismatchError for the given source and missing columns.
func NewSchemaMismatchError(source string, missing []string) error {
	return &SchemaMismatchError{Source: source, Missing: missing}
}

// PrerequisiteMissingError - этап вызван раньше, чем готов результат предыдущего (HTTP 409).
type PrerequisiteMissingError struct {
	Message string
}

func (e *PrerequisiteMissingError) Error() string {
	return e.Message
}

// NewPrerequisiteMissingError formats a user-facing "complete the previous step first" message.
func NewPrerequisiteMissingError(format string, args ...interface{}) error {
	return &PrerequisiteMissingError{
		Message: fmt.Sprintf(format, args...),
	}
}

// ConflictError - состояние изменилось, пока выполнялся расчёт (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// TemplateNotFoundError - шаблон выгрузки отсутствует или не содержит нужного листа.
type TemplateNotFoundError struct {
	Path   string
	Detail string
}

func (e *TemplateNotFoundError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("шаблон %q: %s", e.Path, e.Detail)
	}
	return fmt.Sprintf("шаблон %q не найден", e.Path)
}

func NewTemplateNotFoundError(path, detail string) error {
	return &TemplateNotFoundError{Path: path, Detail: detail}
}
