package http

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID は呼び出し元ユーザーを識別するリクエストヘッダーです。
	HeaderUserID = "X-User-ID"
	// DefaultUserID はヘッダーが無い場合のユーザーIDです。
	DefaultUserID = "demo"
)

// UserID はリクエストからユーザーIDを取り出します。
// 認証ではなく識別のみを目的とし、未指定時はDefaultUserIDを返します。
func UserID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if id == "" {
		return DefaultUserID
	}
	return id
}
