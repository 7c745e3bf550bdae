package validator

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hospital-api/pkg/errors"
)

var messages = map[string]string{
	"required": "is required",
	"min":      "is too short",
	"max":      "is too long",
	"gte":      "is below the minimum",
	"lte":      "is above the maximum",
	"dive":     "contains an invalid entry",
}

// JSONTagName makes validator report fields by their json names.
func JSONTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// Validator validates structs tagged with `validate`.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(JSONTagName)
	return &Validator{v: v}
}

// Register adds a custom validation tag.
func (v *Validator) Register(tag string, fn validator.Func) error {
	return v.v.RegisterValidation(tag, fn)
}

func (v *Validator) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return Translate(err)
	}
	return nil
}

// Translate turns request decoding and validation failures into a
// validation *errors.AppError naming the offending field.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fieldPath(fe)
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("has invalid value %v", fe.Value())
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("has invalid value %q", fe.Value())
			}
		}
		return errors.Validation(field, fmt.Sprintf("%s %s", field, msg))
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		field := typeErr.Field
		return errors.Validation(field, fmt.Sprintf("%s must be %s", field, typeErr.Type.String()))
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) || stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.BadRequest("malformed JSON body", err)
	}

	return errors.BadRequest("invalid request", err)
}

// fieldPath drops the struct name prefix validator puts on namespaces.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
