package code

import httpPKG "net/http"

type SuccessCode struct {
	HTTPCode int
}

type successHTTPCoder interface {
	SuccessHTTPCode() int
}

func ParseResponseSuccessCode(res interface{}) *SuccessCode {
	switch successCode := res.(type) {
	case SuccessCode:
		return &successCode
	case successHTTPCoder:
		return &SuccessCode{HTTPCode: successCode.SuccessHTTPCode()}
	case nil:
		return &SuccessCode{HTTPCode: httpPKG.StatusNoContent}
	}
	return &SuccessCode{HTTPCode: httpPKG.StatusOK}
}
