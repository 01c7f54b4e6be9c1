package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Miandari/dailygrit/pkg/models"
)

// requestJoin asks the creator of a private challenge for membership
func (s *Server) requestJoin(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	request, err := s.services.Participants.RequestJoin(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(request)
	resp.Message = "join request submitted"
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) listJoinRequests(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	requests, err := s.services.Participants.ListRequests(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(requests))
}

// approveJoinRequest enrolls the requester
func (s *Server) approveJoinRequest(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	participant, err := s.services.Participants.ApproveRequest(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(participant)
	resp.Message = "join request approved"
	c.JSON(http.StatusOK, resp)
}

func (s *Server) rejectJoinRequest(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	request, err := s.services.Participants.RejectRequest(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OK(request)
	resp.Message = "join request rejected"
	c.JSON(http.StatusOK, resp)
}
