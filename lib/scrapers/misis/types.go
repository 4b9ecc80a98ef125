package misis

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their json names so validation failures
	// match the CLI's serialized output
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return newErrorf(
			KindValidation,
			"field %q failed on the %q rule",
			fe.Field(), fe.Tag(),
		)
	}
	return classify(err, KindValidation, "invalid data")
}

// Credentials holds one login attempt. It is never persisted and only
// lives for the duration of a single Authenticate call.
type Credentials struct {
	Login      string `json:"login" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

func NewCredentials(login, password string, rememberMe bool) (Credentials, error) {
	c := Credentials{
		Login:      strings.TrimSpace(login),
		Password:   password,
		RememberMe: rememberMe,
	}
	if err := validate.Struct(c); err != nil {
		return Credentials{}, validationError(err)
	}
	return c, nil
}

// Session records authenticated access to the portal. An
// authenticated session always carries a non-empty account id and
// anti-forgery token.
type Session struct {
	AccountID     string `json:"account_id" validate:"required"`
	CSRFToken     string `json:"csrf_token" validate:"required"`
	Authenticated bool   `json:"authenticated"`
}

func NewSession(accountID, csrfToken string) (Session, error) {
	s := Session{
		AccountID:     strings.TrimSpace(accountID),
		CSRFToken:     strings.TrimSpace(csrfToken),
		Authenticated: true,
	}
	if err := validate.Struct(s); err != nil {
		return Session{}, validationError(err)
	}
	return s, nil
}

// StudentInfo is the structured result of scraping the profile page.
// Immutable once constructed, validation happens in NewStudentInfo.
type StudentInfo struct {
	FullName         string `json:"full_name" validate:"required"`
	RecordBookNumber string `json:"record_book_number" validate:"required"`
	StudyForm        string `json:"study_form" validate:"required"`
	PreparationLevel string `json:"preparation_level" validate:"required"`
	Specialization   string `json:"specialization,omitempty"`
	Specialty        string `json:"specialty" validate:"required"`
	Faculty          string `json:"faculty" validate:"required"`
	Course           string `json:"course" validate:"required"`
	Group            string `json:"group" validate:"required"`
	FinancingForm    string `json:"financing_form" validate:"required"`
	Dormitory        string `json:"dormitory" validate:"required"`
	EndDate          string `json:"end_date" validate:"required"`
	PersonalEmail    string `json:"personal_email,omitempty" validate:"omitempty,contains=@"`
	PersonalPhone    string `json:"personal_phone,omitempty"`
	CorporateEmail   string `json:"corporate_email,omitempty" validate:"omitempty,contains=@"`
}

func NewStudentInfo(info StudentInfo) (StudentInfo, error) {
	v := reflect.ValueOf(&info).Elem()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		field.SetString(strings.TrimSpace(field.String()))
	}
	if err := validate.Struct(info); err != nil {
		return StudentInfo{}, validationError(err)
	}
	return info, nil
}
