package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Educational stages a school may enable.
var Stages = []string{"kindergarten", "primary", "middle", "secondary"}

var (
	// custom validation tags & texts
	stageTag  = "stage"
	stageText = "must be one of: kindergarten, primary, middle, secondary"

	semesterTag  = "semester"
	semesterText = "must be 1 or 2"

	loginCodeTag   = "logincode"
	loginCodeText  = "must be at least 4 alphanumeric characters or dashes"
	loginCodeRegex = regexp.MustCompile(`^[\w-]{4,}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// Translator is the app-wide error message translator, set by InitValidators.
var Translator ut.Translator

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	Translator = translator
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(stageTag, stageValidation)
	RegisterCustomTranslation(validate, translator, stageTag, stageText)

	_ = validate.RegisterValidation(semesterTag, semesterValidation)
	RegisterCustomTranslation(validate, translator, semesterTag, semesterText)

	_ = validate.RegisterValidation(loginCodeTag, loginCodeValidation)
	RegisterCustomTranslation(validate, translator, loginCodeTag, loginCodeText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func stageValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, stage := range Stages {
		if val == stage {
			return true
		}
	}
	return false
}

func semesterValidation(fl validator.FieldLevel) bool {
	sem := fl.Field().Int()
	return sem == 1 || sem == 2
}

func loginCodeValidation(fl validator.FieldLevel) bool {
	return loginCodeRegex.MatchString(fl.Field().String())
}
