package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/abhisek/studypath/internal/quiz"
	"github.com/abhisek/studypath/internal/store"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details []FieldProblem `json:"details,omitempty"`
}

// FieldProblem is one failed validation rule.
type FieldProblem struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Error: APIError{Code: code, Message: message}})
}

// badRequest reports a binding failure, listing validator rule failures
// when there are any.
func badRequest(c *gin.Context, err error) {
	body := APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Message = "request validation failed"
		for _, fe := range verrs {
			body.Details = append(body.Details, FieldProblem{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorEnvelope{Error: body})
}

// fail maps a service error onto a status code.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	var ge *quiz.GenerationError
	switch {
	case errors.Is(err, quiz.ErrConceptNotFound):
		respondError(c, http.StatusNotFound, "CONCEPT_NOT_FOUND", err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &ge):
		switch ge.Reason {
		case quiz.ReasonNoPassages:
			respondError(c, http.StatusUnprocessableEntity, "NO_SOURCE_MATERIAL", err.Error())
		case quiz.ReasonLLMUnavailable:
			respondError(c, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", err.Error())
		case quiz.ReasonRetrievalUnavailable:
			respondError(c, http.StatusServiceUnavailable, "RETRIEVAL_UNAVAILABLE", err.Error())
		default:
			respondError(c, http.StatusBadGateway, "GENERATION_FAILED", err.Error())
		}
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
