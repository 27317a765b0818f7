package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-sale-ledger/internal/api/shared/constants"
)

// SetupCORS configures CORS for the given origins; an empty list allows every origin
func SetupCORS(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", constants.HEADER_REQUEST_ID},
		ExposeHeaders:    []string{"Content-Length", constants.HEADER_REQUEST_ID},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}
