package dmerror

import (
	"errors"
	"fmt"
)

// Error codes follow PostgreSQL SQLSTATE values so callers running inside
// the database can surface them unchanged.
const (
	DM_NULL_ARGUMENT            = "22004"
	DM_UNDEFINED_OBJECT         = "42704"
	DM_UNDEFINED_COLUMN         = "42703"
	DM_INVALID_COLUMN_REFERENCE = "42P10"
	DM_NO_DATA                  = "02000"
	DM_INVALID_PARAMETER        = "22023"
	DM_UNEXPECTED               = "XX000"
	DM_METADATA_CORRUPTION      = "XX001"
)

var existingErrorCodeMap = map[string]string{
	DM_NULL_ARGUMENT:            "null value not allowed",
	DM_UNDEFINED_OBJECT:         "undefined object",
	DM_UNDEFINED_COLUMN:         "undefined column",
	DM_INVALID_COLUMN_REFERENCE: "invalid column reference",
	DM_NO_DATA:                  "no data",
	DM_INVALID_PARAMETER:        "invalid parameter value",
	DM_METADATA_CORRUPTION:      "metadata corruption",
}

func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "unexpected error"
}

var _ error = &DMError{}

type DMError struct {
	Err error

	ErrorCode string
}

func New(errorCode string, errorMsg string) *DMError {
	return &DMError{
		Err:       errors.New(errorMsg),
		ErrorCode: errorCode,
	}
}

func Newf(errorCode string, format string, a ...any) *DMError {
	return &DMError{
		Err:       fmt.Errorf(format, a...),
		ErrorCode: errorCode,
	}
}

func (er *DMError) Error() string {
	return er.Err.Error()
}

func (er *DMError) Unwrap() error {
	return er.Err
}

// Code returns the SQLSTATE of the first DMError in err's chain, or
// DM_UNEXPECTED when there is none.
func Code(err error) string {
	var de *DMError
	if errors.As(err, &de) {
		return de.ErrorCode
	}
	return DM_UNEXPECTED
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	if err == nil {
		return false
	}
	return Code(err) == code
}
