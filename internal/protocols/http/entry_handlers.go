package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Miandari/dailygrit/pkg/models"
)

// submitEntry scores and stores a daily entry for the caller's participant
func (s *Server) submitEntry(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	var req models.SubmitEntryRequest
	if !bindBody(c, &req) {
		return
	}
	req.ParticipantID = c.Param("id")

	result, err := s.services.Entries.Submit(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(result)
	resp.Message = "entry saved"
	c.JSON(http.StatusOK, resp)
}

// listEntries returns all of a participant's entries, oldest first
func (s *Server) listEntries(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	entries, err := s.services.Entries.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*models.DailyEntry{}
	}

	c.JSON(http.StatusOK, models.OK(entries))
}

// getEntry returns the entry for one yyyy-MM-dd date
func (s *Server) getEntry(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	entry, err := s.services.Entries.Get(c.Request.Context(), userID, c.Param("id"), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(entry))
}

// getProgress returns streaks, points and completion rate to a member of the participant's challenge
func (s *Server) getProgress(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	progress, err := s.services.Participants.Progress(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(progress))
}
