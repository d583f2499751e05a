package http

import (
	"net/http"

	"github.com/pkg/errors"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
)

// ErrResponded tells the pipeline a guard already wrote the response.
var ErrResponded = errors.New("stage responded")

// Stage is one named step of the request pipeline. It wraps everything that
// runs after it.
type Stage struct {
	Name string
	Wrap func(next http.Handler) http.Handler
}

// GuardFunc either passes the request on, possibly replacing the writer or
// the request, or returns an error that ends the pipeline.
type GuardFunc func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, error)

// Guard builds a stage out of a pass or fail check. Failures are rendered
// with the shared JSON error body.
func Guard(name string, guard GuardFunc, logger *loggerKit.Logger) Stage {
	return Stage{
		Name: name,
		Wrap: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextW, nextR, err := guard(w, r)
				if errors.Is(err, ErrResponded) {
					return
				} else if err != nil {
					if logger != nil {
						logger.Info("pipeline stage rejected request",
							loggerKit.String("stage", name),
							loggerKit.String("method", r.Method),
							loggerKit.String("path", r.URL.Path),
							loggerKit.String("ip", ReadUserIP(r)),
							loggerKit.String("error", err.Error()),
						)
					}
					WriteErrorResponse(w, err)
					return
				}
				next.ServeHTTP(nextW, nextR)
			})
		},
	}
}

type Pipeline struct {
	stages []Stage
}

func CreatePipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Then runs the stages in declaration order before handler.
func (p *Pipeline) Then(handler http.Handler) http.Handler {
	for i := len(p.stages) - 1; i >= 0; i-- {
		handler = p.stages[i].Wrap(handler)
	}
	return handler
}

func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names = append(names, stage.Name)
	}
	return names
}
