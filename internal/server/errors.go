package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/internal/digest"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps pipeline failures to HTTP statuses.
func statusFor(kind digest.Kind) int {
	switch kind {
	case digest.KindInvalidInput:
		return http.StatusBadRequest
	case digest.KindNoSourcesFound, digest.KindNoReadableContent:
		return http.StatusNotFound
	case digest.KindSummarization:
		return http.StatusInternalServerError
	case digest.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(e *digest.Error) string {
	switch e.Kind {
	case digest.KindNoSourcesFound:
		return "No sources found for this topic."
	case digest.KindNoReadableContent:
		return "No content found for this topic."
	case digest.KindSummarization:
		return fmt.Sprintf("AI failed: %v", e.Err)
	default:
		return e.Error()
	}
}

// errorHandler renders every error as {"error", "kind"} JSON.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		body := errorResponse{Error: err.Error()}

		var de *digest.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &de):
			code = statusFor(de.Kind)
			body = errorResponse{Error: messageFor(de), Kind: string(de.Kind)}
		case errors.As(err, &he):
			code = he.Code
			if he.Message != nil {
				body.Error = fmt.Sprint(he.Message)
			}
		}

		req := c.Request()
		fields := []zap.Field{
			zap.Int("status", code),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("remote_ip", c.RealIP()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		}
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Info("request rejected", fields...)
		}
		if !c.Response().Committed {
			if req.Method == http.MethodHead {
				_ = c.NoContent(code)
				return
			}
			_ = c.JSON(code, body)
		}
	}
}
