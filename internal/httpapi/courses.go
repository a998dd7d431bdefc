package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studypath/internal/conceptgraph"
)

type courseView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) listCourses(c *gin.Context) {
	courses, err := s.deps.Store.Repos().Courses.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]courseView, 0, len(courses))
	for _, co := range courses {
		out = append(out, courseView{ID: co.ID, Name: co.Name})
	}
	c.JSON(http.StatusOK, gin.H{"courses": out})
}

type ingestRequest struct {
	CourseID   string `json:"course_id" binding:"required"`
	CourseName string `json:"course_name"`
	SourceName string `json:"source_name" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

func (s *Server) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	name := req.CourseName
	if name == "" {
		name = req.CourseID
	}
	res, err := s.deps.Ingester.Ingest(c.Request.Context(), req.CourseID, name, req.SourceName, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) extractConcepts(c *gin.Context) {
	res, err := s.deps.Extractor.Extract(c.Request.Context(), s.deps.Store, c.Param("course_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type graphNode struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Importance      float64 `json:"importance"`
	DependencyCount int     `json:"dependency_count"`
}

type graphEdge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Relation   string  `json:"relation"`
	Confidence float64 `json:"confidence"`
}

type graphReport struct {
	OK        bool     `json:"ok"`
	Cycle     []string `json:"cycle,omitempty"`
	Dangling  []string `json:"dangling,omitempty"`
	SelfEdges []string `json:"self_edges,omitempty"`
}

type graphView struct {
	CourseID string      `json:"course_id"`
	Nodes    []graphNode `json:"nodes"`
	Edges    []graphEdge `json:"edges"`
	// Order is the prerequisite-first learning order.
	Order      []string    `json:"learning_order"`
	Validation graphReport `json:"validation"`
}

func (s *Server) conceptGraph(c *gin.Context) {
	courseID := c.Param("course_id")
	g, err := conceptgraph.Load(c.Request.Context(), s.deps.Store.Repos(), courseID)
	if err != nil {
		fail(c, err)
		return
	}
	deps := g.DependencyCounts()
	view := graphView{CourseID: courseID, Nodes: []graphNode{}, Edges: []graphEdge{}, Order: []string{}}
	for _, co := range g.Concepts() {
		view.Nodes = append(view.Nodes, graphNode{
			ID:              co.ID,
			Name:            co.Name,
			Description:     co.Description,
			Importance:      co.Importance,
			DependencyCount: deps[co.ID],
		})
	}
	for _, e := range g.Edges() {
		view.Edges = append(view.Edges, graphEdge{
			Source:     e.SourceID,
			Target:     e.TargetID,
			Relation:   string(e.Relation),
			Confidence: e.Confidence,
		})
	}
	for _, co := range g.TopoOrder() {
		view.Order = append(view.Order, co.ID)
	}
	rep := g.Validate()
	view.Validation = graphReport{OK: rep.OK(), Cycle: rep.Cycle, Dangling: rep.Dangling, SelfEdges: rep.SelfEdges}
	c.JSON(http.StatusOK, view)
}
