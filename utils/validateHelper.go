package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the tag-declared rules of an input struct. Used by
// ingestion on each spreadsheet row before it touches the database.
func ValidateStruct(input any) error {
	return validate.Struct(input)
}
