package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type courseQuery struct {
	CourseID string `form:"course_id" binding:"required"`
}

func (s *Server) bindCourse(c *gin.Context) (string, bool) {
	var q courseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return "", false
	}
	return q.CourseID, true
}

func (s *Server) recommendations(c *gin.Context) {
	courseID, ok := s.bindCourse(c)
	if !ok {
		return
	}
	res, err := s.deps.Recommend.Recommend(c.Request.Context(), c.Param("student_id"), courseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) weakTopics(c *gin.Context) {
	courseID, ok := s.bindCourse(c)
	if !ok {
		return
	}
	studentID := c.Param("student_id")
	topics, err := s.deps.Recommend.WeakTopics(c.Request.Context(), studentID, courseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": studentID, "course_id": courseID, "weak_topics": topics})
}

func (s *Server) masteryOverview(c *gin.Context) {
	courseID, ok := s.bindCourse(c)
	if !ok {
		return
	}
	ov, err := s.deps.Recommend.MasteryOverview(c.Request.Context(), s.deps.Progress, c.Param("student_id"), courseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}
