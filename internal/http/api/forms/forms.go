// Package forms wires the form service HTTP surface onto a gin engine.
package forms

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formbridge/formbridge/internal/engine"
	"github.com/formbridge/formbridge/internal/http/api/forms/handlers"
	"github.com/formbridge/formbridge/internal/store"
)

// RegisterFormRoutes registers the definition, evaluation, session, and
// submission endpoints. debounce is the auto-fill quiet period for hosted
// sessions; non-positive means the engine default.
func RegisterFormRoutes(r *gin.Engine, defs *store.Definitions, subs *store.Submissions, source engine.TabularSource, debounce time.Duration) {
	if r == nil || defs == nil || subs == nil {
		return
	}

	r.GET("/healthz", handlers.Health)

	v0 := r.Group("/v0")

	formHandler := handlers.NewFormHandler(defs)
	v0.GET("/forms", formHandler.List)
	v0.GET("/forms/:id", formHandler.Get)
	v0.POST("/forms", formHandler.Save)
	v0.POST("/forms/:id/publish", formHandler.Publish)
	v0.DELETE("/forms/:id", formHandler.Delete)

	evaluateHandler := handlers.NewEvaluateHandler(defs, source)
	v0.POST("/forms/:id/visibility", evaluateHandler.Visibility)
	v0.POST("/forms/:id/autofill", evaluateHandler.AutoFill)

	submissionHandler := handlers.NewSubmissionHandler(defs, subs)
	v0.POST("/forms/:id/submissions", submissionHandler.Create)
	v0.GET("/forms/:id/submissions", submissionHandler.List)

	sessionHandler := handlers.NewSessionHandler(defs, subs, source, debounce)
	v0.POST("/forms/:id/sessions", sessionHandler.Create)
	v0.GET("/sessions/:sid", sessionHandler.Get)
	v0.POST("/sessions/:sid/answers", sessionHandler.SetAnswer)
	v0.POST("/sessions/:sid/submit", sessionHandler.Submit)
	v0.DELETE("/sessions/:sid", sessionHandler.Close)
}
