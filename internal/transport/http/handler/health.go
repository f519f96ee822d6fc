package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "user-service/internal/transport/http/response"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   MsgServiceRunning,
		"status":    resp.StatusSuccess,
		"timestamp": time.Now().Unix(),
	})
}
