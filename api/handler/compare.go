package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spamsum/models"
	"github.com/use-agent/spamsum/spamsum"
)

// Compare returns a handler for POST /api/v1/compare.
//
// Unlike the library's lenient score, a malformed signature is a 400.
func Compare(cmpr *spamsum.Comparator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		score, err := cmpr.Compare(req.SignatureA, req.SignatureB)
		if err != nil {
			respondError(c, models.NewAPIError(models.ErrCodeInvalidSignature, err.Error(), err))
			return
		}

		c.JSON(http.StatusOK, models.CompareResponse{
			Success: true,
			Score:   score,
		})
	}
}
