package website

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")
	err2 := errors.New("test error 2")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) (res ResponseData) {
					c.Logger = &logger
					return h(c)
				}
			},
			logContextErrorsMiddleware,
		},
	}

	routes.GET(regexp.MustCompile("^/test$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, err1, err2)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		t.Logf("Log contents: %s", buf.String())

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		assert.Contains(t, buf.String(), err1.Error())
		assert.Contains(t, buf.String(), err2.Error())
	}
}

func TestRouterPathParams(t *testing.T) {
	router := &Router{}
	routes := RouteBuilder{Router: router}

	routes.GET(regexp.MustCompile(`^/widgets/(?P<id>[^/]+)/parts/(?P<partId>[^/]+)$`), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.WriteJson(c.PathParams)
		return res
	})
	routes.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	srv := httptest.NewServer(router)
	defer srv.Close()

	t.Run("params are captured", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/widgets/abc/parts/123")
		require.NoError(t, err)
		defer res.Body.Close()

		var params map[string]string
		require.NoError(t, json.NewDecoder(res.Body).Decode(&params))
		assert.Equal(t, "abc", params["id"])
		assert.Equal(t, "123", params["partId"])
	})

	t.Run("trailing slashes are ignored", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/widgets/abc/parts/123/")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("unmatched paths hit the wildcard", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/nope")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		body, _ := io.ReadAll(res.Body)
		assert.Contains(t, string(body), "not found")
	})
}

func TestErrorResponseUsesSafeMessages(t *testing.T) {
	router := &Router{}
	routes := RouteBuilder{Router: router}

	secretErr := errors.New("secret database detail")
	routes.GET(regexp.MustCompile(`^/unsafe$`), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, secretErr)
	})
	routes.GET(regexp.MustCompile(`^/safe$`), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(secretErr, "your widget is malformed"))
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	t.Run("plain errors are not leaked", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/unsafe")
		require.NoError(t, err)
		defer res.Body.Close()

		body, _ := io.ReadAll(res.Body)
		assert.NotContains(t, string(body), "secret database detail")
	})

	t.Run("safe errors surface their message", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/safe")
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		body, _ := io.ReadAll(res.Body)
		assert.Contains(t, string(body), "your widget is malformed")
	})
}
