package utils

import (
	"errors"
	"html"
	"reflect"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"

	"library-admin/internal/schemas"
)

type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
	policy      *bluemonday.Policy
}

var (
	instance      *Validator
	once          sync.Once
	configuration *truemail.Configuration
)

// verifierEmail is the sender address truemail uses for its SMTP handshake.
const verifierEmail = "library@example.org"

func GetValidator() *Validator {
	once.Do(func() {
		configuration, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         verifierEmail,
			ValidationTypeDefault: "mx",
			SmtpFailFast:          true,
		})

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: validateEmail,
			policy:      bluemonday.StrictPolicy(),
		}

		registerCustomValidators(instance.Validate)
	})

	return instance
}

func validateEmail(email string) bool {
	if configuration == nil {
		return false
	}
	return truemail.IsValid(email, configuration)
}

func registerCustomValidators(v *validator.Validate) {
	err := v.RegisterValidation("member_type", memberTypeValidation)
	if err != nil {
		return
	}

	err = v.RegisterValidation("fine_status", fineStatusValidation)
	if err != nil {
		return
	}

	err = v.RegisterValidation("not_future_year", notFutureYearValidation)
	if err != nil {
		return
	}
}

func memberTypeValidation(fl validator.FieldLevel) bool {
	switch schemas.MemberType(fl.Field().String()) {
	case schemas.MemberTypeStudent, schemas.MemberTypeFaculty:
		return true
	}
	return false
}

func fineStatusValidation(fl validator.FieldLevel) bool {
	switch schemas.FineStatus(fl.Field().String()) {
	case schemas.FineStatusPaid, schemas.FineStatusUnpaid:
		return true
	}
	return false
}

func notFutureYearValidation(fl validator.FieldLevel) bool {
	return fl.Field().Int() <= int64(time.Now().Year())
}

// SanitizeData strips markup from every exported string field of the struct obj points to.
// Fields tagged `sanitize:"-"` (passwords) are left untouched. Entities are unescaped again
// afterwards, since the templates escape on output.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return errors.New("sanitize: expected a pointer to a struct")
	}

	value = value.Elem()
	structType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() || field.Kind() != reflect.String {
			continue
		}
		if structType.Field(i).Tag.Get("sanitize") == "-" {
			continue
		}
		field.SetString(v.Sanitize(field.String()))
	}

	return nil
}

// Sanitize removes all HTML from s.
func (v *Validator) Sanitize(s string) string {
	return html.UnescapeString(v.policy.Sanitize(s))
}
