package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Miandari/dailygrit/pkg/models"
	"github.com/Miandari/dailygrit/pkg/utils"
)

// respondError writes err in the response envelope with its mapped status
func respondError(c *gin.Context, err error) {
	c.JSON(models.StatusFor(err), models.Fail(err))
}

// actor returns the authenticated user or aborts with 401
func actor(c *gin.Context) (string, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		abortUnauthenticated(c, "unauthorized")
	}
	return userID, ok
}

func bindBody(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, models.ValidationError("body", "invalid request body: %v", err))
		return false
	}
	return true
}

// createChallenge handles challenge creation; the creator joins automatically
func (s *Server) createChallenge(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	var req models.CreateChallengeRequest
	if !bindBody(c, &req) {
		return
	}

	challenge, err := s.services.Challenges.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(challenge)
	resp.Message = "challenge created"
	c.JSON(http.StatusCreated, resp)
}

// getChallenge returns one challenge
func (s *Server) getChallenge(c *gin.Context) {
	if _, ok := actor(c); !ok {
		return
	}

	challenge, err := s.services.Challenges.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if challenge.CreatorID != c.GetString(userIDKey) {
		// invite codes are only shown to the creator
		challenge.InviteCode = nil
	}

	c.JSON(http.StatusOK, models.OK(challenge))
}

// updateScoring replaces scoring rules and recalculates every participant
func (s *Server) updateScoring(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	var req models.UpdateScoringRequest
	if !bindBody(c, &req) {
		return
	}

	ctx, cancel := utils.WithLongTimeout(c.Request.Context())
	defer cancel()

	result, err := s.services.Challenges.UpdateScoring(ctx, userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(result)
	resp.Message = "scoring updated"
	c.JSON(http.StatusOK, resp)
}

// recalculate rescores every participant of a challenge
func (s *Server) recalculate(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	ctx, cancel := utils.WithLongTimeout(c.Request.Context())
	defer cancel()

	result, err := s.services.Recalculation.Recalculate(ctx, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(result))
}

// joinChallenge enrolls the caller; the body is only needed for private challenges
func (s *Server) joinChallenge(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	var req models.JoinChallengeRequest
	if c.Request.ContentLength > 0 && !bindBody(c, &req) {
		return
	}

	participant, err := s.services.Participants.Join(c.Request.Context(), userID, c.Param("id"), req.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(participant)
	resp.Message = "joined challenge"
	c.JSON(http.StatusCreated, resp)
}

// deleteChallenge lets the creator remove a challenge and everything in it
func (s *Server) deleteChallenge(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	if err := s.services.Challenges.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(nil)
	resp.Message = "challenge deleted"
	c.JSON(http.StatusOK, resp)
}

// leaveChallenge removes the caller's own membership
func (s *Server) leaveChallenge(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	if err := s.services.Participants.Leave(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(nil)
	resp.Message = "left challenge"
	c.JSON(http.StatusOK, resp)
}

// removeParticipant lets the creator remove another participant
func (s *Server) removeParticipant(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	err := s.services.Participants.Remove(c.Request.Context(), userID, c.Param("id"), c.Param("participant_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(nil)
	resp.Message = "participant removed"
	c.JSON(http.StatusOK, resp)
}

// getLeaderboard ranks participants by points or completion
func (s *Server) getLeaderboard(c *gin.Context) {
	if _, ok := actor(c); !ok {
		return
	}

	board, err := s.services.Participants.Leaderboard(c.Request.Context(), c.Param("id"), c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(board))
}
