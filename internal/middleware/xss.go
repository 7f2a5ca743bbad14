package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kindergarten-canvas/backend/internal/pkg/helpers"
)

// xssSkipFields are left untouched. content is rich-text HTML produced by the
// editor, displayOrder is numeric.
var xssSkipFields = map[string]struct{}{
	"content":      {},
	"displayOrder": {},
}

// XSS escapes "<" in every string of JSON bodies and query parameters and
// trims surrounding whitespace.
func XSS() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.RawQuery != "" {
			c.Request.URL.RawQuery = sanitizeQuery(c.Request.URL.Query()).Encode()
		}

		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
			body, err := io.ReadAll(c.Request.Body)
			_ = c.Request.Body.Close()
			if err == nil {
				body = sanitizeJSON(body)
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Request.ContentLength = int64(len(body))
		}

		c.Next()
	}
}

// sanitizeJSON returns body unchanged when it is not valid JSON, so the
// handler reports the syntax error itself.
func sanitizeJSON(body []byte) []byte {
	if len(bytes.TrimSpace(body)) == 0 {
		return body
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return body
	}

	out, err := json.Marshal(sanitizeValue(v))
	if err != nil {
		return body
	}
	return out
}

func sanitizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return helpers.SanitizeText(val)
	case map[string]interface{}:
		for k, inner := range val {
			if _, skip := xssSkipFields[k]; skip {
				continue
			}
			val[k] = sanitizeValue(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = sanitizeValue(inner)
		}
		return val
	default:
		return v
	}
}

func sanitizeQuery(values url.Values) url.Values {
	for k, vs := range values {
		if _, skip := xssSkipFields[k]; skip {
			continue
		}
		for i, v := range vs {
			vs[i] = helpers.SanitizeText(v)
		}
	}
	return values
}
