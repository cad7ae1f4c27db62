package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"business-assistant/internal/orchestrator"
)

func (s *Server) rpc(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	out, respond := s.dispatcher.ServeJSON(ctx, body)
	if !respond {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "application/json", out)
}

type askRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	answer, err := s.assistant.Answer(ctx, req.Query)
	if errors.Is(err, orchestrator.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "query must not be empty"})
		return
	}
	if err != nil {
		s.logger.Error("Answer failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	c.JSON(http.StatusOK, answer)
}

// health always answers 200 while the process serves: a failing primary
// store degrades answers to the snapshot rather than failing them.
func (s *Server) health(c *gin.Context) {
	status := "ok"
	checks := make(map[string]string, len(s.opts.Checks))
	for name, check := range s.opts.Checks {
		if err := check(c.Request.Context()); err != nil {
			status = "degraded"
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "checks": checks})
}
