package website

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/vanguardtable/vanguard/src/oops"
	"github.com/vanguardtable/vanguard/src/utils"
)

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func logRequestsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		start := time.Now()
		res := h(c)

		status := res.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		c.Logger.Info().
			Str("method", c.Req.Method).
			Str("path", c.Req.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("served request")

		return res
	}
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return c.ErrorResponse(http.StatusUnauthorized, NewSafeError(nil, "you must be logged in"))
		}

		return h(c)
	}
}

func corsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.Req.Method == http.MethodOptions {
			var res ResponseData
			res.StatusCode = http.StatusNoContent
			res.Header().Add("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			res.Header().Add("Access-Control-Allow-Headers", "Content-Type")
			addCORSHeaders(c, &res)
			return res
		}

		res := h(c)
		addCORSHeaders(c, &res)
		return res
	}
}

// Will make sure that the request takes at least `duration` to finish. Adds a
// 10% random duration.
func securityTimerMiddleware(duration time.Duration, h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		additionalDuration := time.Duration(rand.Int63n(utils.Max(1, int64(duration)/10)))
		timer := time.NewTimer(duration + additionalDuration)
		res := h(c)
		select {
		case <-c.Done():
		case <-timer.C:
		}
		return res
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.FullUrl()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}
