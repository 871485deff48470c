package api

import (
	"errors"
	"net/http"

	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"github.com/chenBenjamin97/lunge-classifier/pkg/store"
	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//ClassifyRequest is the body of POST /api/pose/classify: the landmarks of one person, indexed by body part
type ClassifyRequest struct {
	Landmarks pose.LandmarkSet `json:"landmarks"`
}

//ClassifyResponse is returned by POST /api/pose/classify. Result is only set when Classified is true.
type ClassifyResponse struct {
	Classified bool         `json:"classified"`
	Result     *pose.Result `json:"result,omitempty"`
}

//ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type Handler struct {
	classifier *pose.Classifier
	results    store.ResultStore
	sessionID  string
}

func NewHandler(classifier *pose.Classifier, results store.ResultStore, sessionID string) *Handler {
	return &Handler{
		classifier: classifier,
		results:    results,
		sessionID:  sessionID,
	}
}

//SetRouter builds the gin engine serving the classifier and the live session's results
func SetRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Logger())

	r.GET("/health", h.Health)

	apiRoutes := r.Group("/api")
	apiRoutes.POST("/pose/classify", h.Classify)
	apiRoutes.GET("/pose/latest", h.LatestOfCurrentSession)
	apiRoutes.GET("/sessions/:id/pose", h.Latest)

	return r
}

func (h *Handler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"session": h.sessionID,
	})
}

//Classify labels a landmark set sent by the client. An empty set is not an error, nobody was detected.
func (h *Handler) Classify(ctx *gin.Context) {
	var req ClassifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid landmarks body", Error: err.Error()})
		return
	}

	if len(req.Landmarks) == 0 {
		ctx.JSON(http.StatusOK, ClassifyResponse{Classified: false})
		return
	}

	res, err := h.classifier.Classify(req.Landmarks)
	if err != nil {
		if errors.Is(err, pose.ErrMissingLandmark) {
			ctx.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "incomplete landmark set", Error: err.Error()})
			return
		}
		utils.Logger.Error("api/Classify: unexpected error", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Message: "classification failed", Error: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, ClassifyResponse{Classified: true, Result: &res})
}

func (h *Handler) LatestOfCurrentSession(ctx *gin.Context) {
	h.writeLatest(ctx, h.sessionID)
}

func (h *Handler) Latest(ctx *gin.Context) {
	h.writeLatest(ctx, ctx.Param("id"))
}

func (h *Handler) writeLatest(ctx *gin.Context, sessionID string) {
	if sessionID == "" {
		ctx.JSON(http.StatusNotFound, ErrorResponse{Message: "no live session"})
		return
	}

	rec, err := h.results.Latest(ctx.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Message: "no classification yet", Error: err.Error()})
			return
		}
		utils.Logger.Error("api/Latest: could not read result store", zap.String("session", sessionID), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Message: "could not read results", Error: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, rec)
}
