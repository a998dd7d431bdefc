package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studypath/internal/quiz"
)

type studentQuery struct {
	StudentID string `form:"student_id" binding:"required"`
}

func mode(c *gin.Context) quiz.Mode {
	return quiz.ParseMode(c.DefaultQuery("mode", string(quiz.ModeComprehensive)))
}

func (s *Server) summary(c *gin.Context) {
	res, err := s.deps.Quiz.Summarize(c.Request.Context(), c.Param("course_id"), c.Param("concept_id"), mode(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) verifyQuiz(c *gin.Context) {
	vq, err := s.deps.Quiz.GenerateVerification(c.Request.Context(), c.Param("course_id"), c.Param("concept_id"), mode(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vq)
}

func (s *Server) complete(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.deps.Quiz.SubmitVerification(c.Request.Context(), req.StudentID,
		c.Param("course_id"), c.Param("concept_id"), mode(c), req.Answers)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) markSkimmed(c *gin.Context) {
	var q studentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.deps.Progress.MarkSkimmed(c.Request.Context(), q.StudentID, c.Param("course_id"), c.Param("concept_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) quickOverview(c *gin.Context) {
	var q studentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.deps.Progress.Quick(c.Request.Context(), q.StudentID, c.Param("course_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
