package http

import "github.com/gin-gonic/gin"

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// ValidationErrorResponse 返回 400 并指出出错的表单字段
func ValidationErrorResponse(c *gin.Context, field, message string) {
	c.JSON(400, gin.H{"error": message, "field": field})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

func MessageResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}
