package handler

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spamsum/models"
	"github.com/use-agent/spamsum/spamsum"
)

// Match returns a handler for POST /api/v1/match.
//
// The probe must parse. Candidates that do not parse are listed under
// rejected and never fail the request.
func Match(cmpr *spamsum.Comparator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.MatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		req.Defaults()

		probe, err := spamsum.Parse(req.Signature)
		if err != nil {
			respondError(c, models.NewAPIError(models.ErrCodeInvalidSignature, err.Error(), err))
			return
		}

		resp := models.MatchResponse{
			Success: true,
			Matches: []models.Match{},
			Total:   len(req.Candidates),
		}
		for i, candidate := range req.Candidates {
			sig, err := spamsum.Parse(candidate)
			if err != nil {
				resp.Rejected = append(resp.Rejected, models.Match{Index: i, Signature: candidate, Error: err.Error()})
				continue
			}
			if score := cmpr.Score(probe, sig); score >= req.Threshold {
				resp.Matches = append(resp.Matches, models.Match{Index: i, Signature: candidate, Score: score})
			}
		}

		slices.SortStableFunc(resp.Matches, func(a, b models.Match) int {
			return cmp.Compare(b.Score, a.Score)
		})

		c.JSON(http.StatusOK, resp)
	}
}
