package middleware

import "github.com/gin-gonic/gin"

// CacheControl 返回一个 Gin 中间件，在所有响应上禁用共享缓存。
// 防止注销或切换账号后，浏览器或代理继续提供已认证内容的缓存副本。
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, max-age=0")
		c.Next()
	}
}
