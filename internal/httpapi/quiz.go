package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studypath/internal/quiz"
)

type generateRequest struct {
	ConceptID  string `json:"concept_id"`
	N          int    `json:"num_questions" binding:"omitempty,min=1,max=20"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

func (s *Server) generateQuiz(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	qs, err := s.deps.Quiz.Generate(c.Request.Context(), quiz.GenerateRequest{
		CourseID:   c.Param("course_id"),
		ConceptID:  req.ConceptID,
		N:          req.N,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": qs})
}

type submitRequest struct {
	StudentID string        `json:"student_id" binding:"required"`
	Answers   []quiz.Answer `json:"answers" binding:"dive"`
}

func (s *Server) submitQuiz(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.deps.Quiz.Submit(c.Request.Context(), req.StudentID, req.Answers)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
