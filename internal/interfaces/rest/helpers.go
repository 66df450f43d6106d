package rest

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
)

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	code := appErrors.GetHTTPStatus(err)
	resp := appErrors.ToResponse(err)

	if code >= 500 {
		log.Printf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, resp.Message)
	} else if len(resp.Details) > 0 {
		log.Printf("⚠️  %d %s %s: %v", code, c.Request.Method, c.Request.URL.Path, appErrors.SortedKeys(resp.Details))
	}

	c.JSON(code, gin.H{
		"error":   resp.Message,
		"message": resp.Message,
		"code":    resp.Code,
		"details": resp.Details,
	})
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, appErrors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// BindJSONNumbers decodes the body keeping numbers as json.Number, so values
// reach the field rules exactly as submitted
func BindJSONNumbers(c *gin.Context, obj interface{}) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(obj); err != nil {
		RespondAppError(c, appErrors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// ParseID reads a positive integer path parameter. Anything else cannot
// name a stored resource and is reported as not found.
func ParseID(c *gin.Context, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		RespondAppError(c, appErrors.NewNotFoundError(resource, c.Param(name)))
		return 0, false
	}
	return id, true
}

// parseOptionalID reads an optional positive integer query parameter
func parseOptionalID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		RespondAppError(c, appErrors.NewValidationError(name, "A valid integer is required."))
		return nil, false
	}
	return &id, true
}

// requestOrigin returns scheme://host of the request, honouring a proxy's
// X-Forwarded-Proto
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// HandleGet executes a read action and returns the result as the body
func HandleGet(c *gin.Context, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
