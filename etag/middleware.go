package etag

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config configures Middleware.
type Config struct {
	Skipper middleware.Skipper
	Options Options
}

// bufferedWriter holds the response until the handler returns so the body
// can be hashed before anything reaches the client.
type bufferedWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

// Flush is a no-op; the body is released when the handler returns.
func (w *bufferedWriter) Flush() {}

// Middleware returns ETag middleware with opts.
func Middleware(opts Options) echo.MiddlewareFunc {
	return MiddlewareWithConfig(Config{Options: opts})
}

// MiddlewareWithConfig buffers GET and HEAD responses, tags eligible ones
// and turns matching conditional requests into an empty 304 that keeps the
// response headers.
func MiddlewareWithConfig(cfg Config) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = middleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if cfg.Skipper(c) || (req.Method != http.MethodGet && req.Method != http.MethodHead) {
				return next(c)
			}

			res := c.Response()
			orig := res.Writer
			buf := &bufferedWriter{ResponseWriter: orig}
			res.Writer = buf
			err := next(c)
			res.Writer = orig

			if !buf.wroteHeader {
				// nothing written; the error handler responds directly
				return err
			}

			if Apply(req, buf.status, res.Header(), buf.body.Bytes(), cfg.Options) {
				res.Header().Del(echo.HeaderContentLength)
				orig.WriteHeader(http.StatusNotModified)
				res.Status = http.StatusNotModified
				res.Size = 0
				return err
			}

			orig.WriteHeader(buf.status)
			if _, werr := orig.Write(buf.body.Bytes()); werr != nil && err == nil {
				err = werr
			}
			return err
		}
	}
}
