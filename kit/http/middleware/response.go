package middleware

import (
	"context"
	"net/http"

	"github.com/superj80820/session-auth/kit/code"
)

type successCodeWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (s *successCodeWriter) WriteHeader(statusCode int) {
	if s.wroteHeader {
		return
	}
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(statusCode)
}

func (s *successCodeWriter) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(s.code)
	}
	return s.ResponseWriter.Write(b)
}

// EncodeResponseSetSuccessHTTPCode makes next answer with the status the
// response asks for through code.ParseResponseSuccessCode.
func EncodeResponseSetSuccessHTTPCode(next func(ctx context.Context, w http.ResponseWriter, response interface{}) error) func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	return func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
		writer := &successCodeWriter{
			ResponseWriter: w,
			code:           code.ParseResponseSuccessCode(response).HTTPCode,
		}
		if err := next(ctx, writer, response); err != nil {
			return err
		}
		if !writer.wroteHeader {
			writer.WriteHeader(writer.code)
		}
		return nil
	}
}
