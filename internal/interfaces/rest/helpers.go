package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/nv0skar/Noisier/pkg/errors"
	"github.com/nv0skar/Noisier/pkg/utils"
	"github.com/sirupsen/logrus"
)

const maxMultipartMemory = 32 << 20

// Responder writes JSON error responses. Server-side failures are logged and,
// unless Debug is set, their details are hidden from the client.
type Responder struct {
	L     *logrus.Entry
	Debug bool
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func (r *Responder) RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	entry := r.L.WithFields(logrus.Fields{
		"status": code,
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).WithError(err)

	switch {
	case code >= 500:
		entry.Error("❌ ERROR")
	case errors.IsUnauthorized(err), errors.IsPermission(err):
		entry.Warn("⚠️ Access denied")
	case errors.IsNotFound(err), errors.IsValidation(err), errors.IsConflict(err):
		entry.Debug("request rejected")
	}

	c.AbortWithStatusJSON(code, errors.ToResponse(err, r.Debug))
}

// ReadBody returns the request parameters sent as JSON or as a form. An empty
// body yields an empty map.
func ReadBody(c *gin.Context) (map[string]any, error) {
	body := make(map[string]any)
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return body, nil
	}

	switch c.ContentType() {
	case binding.MIMEJSON:
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, errors.NewValidationError("body", err.Error())
		}
		return utils.NormalizeNumbers(body), nil
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, errors.NewValidationError("body", err.Error())
		}
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, errors.NewValidationError("body", err.Error())
		}
	}

	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			body[k] = v[0]
		}
	}
	return body, nil
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete
}
