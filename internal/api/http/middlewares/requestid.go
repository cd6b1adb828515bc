package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader — заголовок с идентификатором запроса (входящий или сгенерированный).
const RequestIDHeader = "X-Request-ID"

const requestIDGinKey = "request_id"

// maxRequestIDLen — входящие id длиннее отбрасываются и заменяются своим.
const maxRequestIDLen = 128

// RequestID берёт X-Request-ID из запроса или генерирует UUID, кладёт его в gin.Context
// и в заголовок ответа. Его читают логгер запросов и тела ошибок.
func RequestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" || len(id) > maxRequestIDLen {
		id = uuid.NewString()
	}
	c.Set(requestIDGinKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// RequestIDFrom возвращает request id текущего запроса или пустую строку.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDGinKey)
}
