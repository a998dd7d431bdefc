// Package httpapi exposes the study services over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/studypath/internal/conceptgraph"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/progress"
	"github.com/abhisek/studypath/internal/quiz"
	"github.com/abhisek/studypath/internal/recommend"
	"github.com/abhisek/studypath/internal/retrieval"
	"github.com/abhisek/studypath/internal/store"
)

// Deps are the services the API serves.
type Deps struct {
	Store     store.UnitOfWork
	Quiz      *quiz.Service
	Recommend *recommend.Service
	Progress  *progress.Service
	Extractor *conceptgraph.Extractor
	Ingester  *retrieval.Ingester
	Log       *logger.Logger
}

// Server holds the router and its dependencies.
type Server struct {
	deps   Deps
	log    *logger.Logger
	router *gin.Engine
}

// New builds the router. Call gin.SetMode before New to pick the mode.
func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{deps: d, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), s.observe())
	s.routes(r)
	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/courses", s.listCourses)
	r.POST("/ingest", s.ingest)

	courses := r.Group("/courses/:course_id")
	{
		courses.POST("/extract-concepts", s.extractConcepts)
		courses.GET("/concept-graph", s.conceptGraph)
		courses.POST("/quiz", s.generateQuiz)
		courses.POST("/quiz/submit", s.submitQuiz)
		courses.GET("/quick-overview", s.quickOverview)

		concept := courses.Group("/concepts/:concept_id")
		concept.GET("/summary", s.summary)
		concept.POST("/verify-quiz", s.verifyQuiz)
		concept.POST("/complete", s.complete)
		concept.POST("/mark-skimmed", s.markSkimmed)
	}

	students := r.Group("/students/:student_id")
	{
		students.GET("/recommendations", s.recommendations)
		students.GET("/weak-topics", s.weakTopics)
		students.GET("/mastery", s.masteryOverview)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
