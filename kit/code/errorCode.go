package code

import (
	"encoding/json"
	"fmt"
	httpPKG "net/http"

	"github.com/pkg/errors"
)

type errorCode struct {
	GeneralCode int    `json:"-"`
	Code        int    `json:"code"`
	Message     string `json:"message"`
	OriginError error  `json:"-"`
	CallStack   string `json:"-"`
}

func CreateHTTPError(err *errorCode) *httpErrorCode {
	return &httpErrorCode{
		Status:    "error",
		HTTPCode:  err.GeneralCode,
		errorCode: err,
	}
}

type httpErrorCode struct {
	Status   string `json:"status"`
	HTTPCode int    `json:"-"`
	*errorCode
}

func (e errorCode) Error() string {
	errorStr, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}
	return string(errorStr)
}

func (e *errorCode) AddErrorMetaData(err error) *errorCode {
	e.OriginError = err
	e.CallStack = fmt.Sprintf("%+v", err)
	return e
}

func (e *errorCode) AddCode(code int, args ...any) *errorCode {
	if httpErrorCodes, ok := errorCodes[e.GeneralCode]; ok {
		if errorCodes, ok := httpErrorCodes[code]; ok {
			e.Code = code
			e.Message = fmt.Sprintf(errorCodes, args...)
		}
	}
	return e
}

const (
	Default = iota
	RateLimit
	InvalidBody
	Validation
	DuplicateAccount
	InvalidCredential
	NoToken
	InvalidToken
	NoSession
	AccountNotFound
	AccessDenied
	InvalidCSRF
	OriginNotAllowed
)

var errorCodes = map[int]map[int]string{
	httpPKG.StatusTooManyRequests: {
		Default:   "too many requests",
		RateLimit: "Too many login attempts. Please try again in %d seconds.",
	},
	httpPKG.StatusNotFound: {
		Default:         "not found",
		AccountNotFound: "User not found",
	},
	httpPKG.StatusInternalServerError: {
		Default: "Something went wrong!",
	},
	httpPKG.StatusBadRequest: {
		Default:           "bad request",
		InvalidBody:       "invalid body",
		Validation:        "%s",
		DuplicateAccount:  "User already exists",
		InvalidCredential: "Invalid email or password",
	},
	httpPKG.StatusUnauthorized: {
		Default:         "unauthorized",
		NoToken:         "Not authorized, no token",
		InvalidToken:    "Not authorized, token invalid",
		NoSession:       "Not authorized, session not found",
		AccountNotFound: "Not authorized, user not found",
	},
	httpPKG.StatusForbidden: {
		Default:          "forbidden",
		AccessDenied:     "Access denied",
		InvalidCSRF:      "invalid csrf token",
		OriginNotAllowed: "origin not allowed",
	},
	httpPKG.StatusRequestEntityTooLarge: {
		Default: "request entity too large",
	},
	httpPKG.StatusMethodNotAllowed: {
		Default: "method not allowed",
	},
}

type errorCodeOption func(*errorCode)

func CreateErrorCode(code int, options ...errorCodeOption) *errorCode {
	resCode := httpPKG.StatusInternalServerError
	resMessage := errorCodes[httpPKG.StatusInternalServerError][Default]
	if codes, ok := errorCodes[code]; ok {
		resCode = code

		if errorCodes, ok := codes[Default]; ok {
			resMessage = errorCodes
		}
	}

	errorCode := errorCode{
		GeneralCode: resCode,
		Code:        Default,
		Message:     resMessage,
	}

	for _, option := range options {
		option(&errorCode)
	}

	return &errorCode
}

// ParseErrorCode returns the coded error carried by err. Anything else is
// reported as an internal error so no detail leaks to the client.
func ParseErrorCode(err error) *errorCode {
	causeErr := errors.Cause(err)
	switch errorCode := causeErr.(type) {
	case *errorCode:
		return errorCode
	}

	errorCode := CreateErrorCode(httpPKG.StatusInternalServerError).AddErrorMetaData(err)

	return errorCode
}
