package devserver

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Metadata is appended to every payload by the submission controller.
type Metadata struct {
	SubmitTime string `json:"submitTime" validate:"required,submit_time"`
	PageURL    string `json:"pageUrl" validate:"omitempty,url"`
}

// ContactRequest is the body accepted by the contact endpoint.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,valid_phone"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
	Metadata
}

// NewsletterRequest is the body accepted by the newsletter endpoint.
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=120"`
	Metadata
}

// AppointmentRequest is the body accepted by the appointment endpoint.
type AppointmentRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,valid_phone"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"omitempty,datetime=15:04"`
	Service string `json:"service" validate:"omitempty,max=120"`
	Notes   string `json:"notes" validate:"omitempty,max=2000"`
	Metadata
}

func requestFor(category model.Category) any {
	switch category {
	case model.CategoryNewsletter:
		return &NewsletterRequest{}
	case model.CategoryAppointment:
		return &AppointmentRequest{}
	default:
		return &ContactRequest{}
	}
}

var fieldMessages = map[string]string{
	"required":    "This field is required",
	"email":       "Please enter a valid email address",
	"valid_phone": "Please enter a valid phone number",
	"url":         "Please enter a valid URL",
	"min":         "Please enter at least %s characters",
	"max":         "Please enter no more than %s characters",
	"datetime":    "The format is not valid",
	"submit_time": "The format is not valid",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	phone := regexp2.MustCompile(validation.DefaultPhonePattern, regexp2.ECMAScript)
	_ = v.RegisterValidation("valid_phone", func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		if val == "" {
			return true
		}
		ok, err := phone.MatchString(val)
		return err == nil && ok
	})
	_ = v.RegisterValidation("submit_time", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339Nano, fl.Field().String())
		return err == nil
	})
	return v
}

// fieldErrors converts validator failures into messages keyed by the json
// name of each field.
func fieldErrors(err error) (map[string][]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		template, ok := fieldMessages[fe.Tag()]
		if !ok {
			template = "The format is not valid"
		}
		message := template
		if strings.Contains(template, "%s") {
			message = strings.Replace(template, "%s", fe.Param(), 1)
		}
		out[fe.Field()] = append(out[fe.Field()], message)
	}
	return out, true
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
