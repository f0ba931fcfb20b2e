package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Violation - нарушение правила валидации для конкретного поля
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SelfValidator реализуют типы с собственными правилами поверх тегов validate
type SelfValidator interface {
	Validate() []Violation
}

// ValidationError содержит все нарушения, найденные при проверке значения
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields группирует сообщения по полям для ответа клиенту
func (e *ValidationError) Fields() map[string][]string {
	fields := make(map[string][]string, len(e.Violations))
	for _, v := range e.Violations {
		fields[v.Field] = append(fields[v.Field], v.Message)
	}
	return fields
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Имена полей в ошибках совпадают с именами в JSON
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimal.Decimal проверяется как число
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// Validate проверяет статические теги validate, а затем собственные правила значения
// Возвращает *ValidationError если найдено хотя бы одно нарушение
func Validate(value interface{}) error {
	var violations []Violation

	if err := validate.Struct(value); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return fmt.Errorf("failed to validate: %w", err)
		}
		for _, fe := range fieldErrors {
			violations = append(violations, Violation{Field: fe.Field(), Message: describe(fe)})
		}
	}

	if sv, ok := value.(SelfValidator); ok {
		violations = append(violations, sv.Validate()...)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a valid URL"
	default:
		return fe.Field() + " is invalid"
	}
}
