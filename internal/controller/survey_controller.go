package controller

import (
	"errors"
	"net/http"

	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/service"
	"hilfo_survey_backend/internal/util"
	"hilfo_survey_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	Registry *service.SessionRegistry
	Cfg      *config.Config
}

func NewSurveyController(registry *service.SessionRegistry, cfg *config.Config) *SurveyController {
	return &SurveyController{Registry: registry, Cfg: cfg}
}

type StartSessionRequest struct {
	Locale string `json:"locale" binding:"required"`
}

type StartSessionResponse struct {
	SessionID string            `json:"sessionId"`
	Token     string            `json:"token"`
	Page      *service.PageView `json:"page"`
}

type SubmitRequest struct {
	PageID       string            `json:"pageId" binding:"required"`
	Answers      map[string]int    `json:"answers"`
	Demographics map[string]string `json:"demographics"`
}

type SetLocaleRequest struct {
	Locale string `json:"locale" binding:"required"`
}

// @Summary Start a survey session
// @Tags survey
// @Accept json
// @Produce json
// @Param body body StartSessionRequest true "initial locale"
// @Success 201 {object} util.Response
// @Router /api/sessions [post]
func (c *SurveyController) StartSession(ctx *gin.Context) {
	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sessionID, page, err := c.Registry.Create(ctx.Request.Context(), model.Locale(req.Locale))
	if err != nil {
		c.respondFlowError(ctx, err)
		return
	}

	token, err := util.GenerateSessionJWT(sessionID, c.Cfg.JWT.Secret, c.Cfg.JWT.ExpireTime)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, StartSessionResponse{
		SessionID: sessionID,
		Token:     token,
		Page:      page,
	})
}

// @Summary Current page of a session
// @Tags survey
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "session id"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/page [get]
func (c *SurveyController) GetPage(ctx *gin.Context) {
	page, err := c.Registry.Enter(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondFlowError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary Submit answers for the current page
// @Tags survey
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "session id"
// @Param body body SubmitRequest true "page answers"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/submit [post]
func (c *SurveyController) Submit(ctx *gin.Context) {
	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	page, err := c.Registry.Submit(ctx.Request.Context(), ctx.Param("id"), req.PageID, req.Answers, req.Demographics)
	if err != nil {
		c.respondFlowError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary Toggle the session's display language
// @Tags survey
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "session id"
// @Param body body SetLocaleRequest true "requested locale"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/locale [post]
func (c *SurveyController) SetLocale(ctx *gin.Context) {
	var req SetLocaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Registry.SetLocale(ctx.Request.Context(), ctx.Param("id"), model.Locale(req.Locale)); err != nil {
		c.respondFlowError(ctx, err)
		return
	}

	// Return the re-rendered current page in the new language.
	page, err := c.Registry.Enter(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondFlowError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary Score feedback for a completed session
// @Tags survey
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "session id"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/results [get]
func (c *SurveyController) Results(ctx *gin.Context) {
	page, err := c.Registry.Results(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondFlowError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// respondFlowError maps the flow error taxonomy onto HTTP. Every error
// here concerns exactly one session and leaks nothing about any other.
func (c *SurveyController) respondFlowError(ctx *gin.Context, err error) {
	var verr *util.ValidationError
	switch {
	case errors.As(err, &verr):
		monitoring.ValidationFailures.Inc()
		util.ErrorWithData(ctx, http.StatusUnprocessableEntity, "validation failed", gin.H{"fields": verr.Fields})
	case errors.Is(err, util.ErrConsentRequired):
		util.Error(ctx, http.StatusUnprocessableEntity, "consent required")
	case errors.Is(err, util.ErrStaleSubmission):
		// Client resyncs silently against the actual current page.
		page, enterErr := c.Registry.Enter(ctx.Request.Context(), ctx.Param("id"))
		if enterErr != nil {
			util.Error(ctx, http.StatusConflict, "stale submission")
			return
		}
		util.ErrorWithData(ctx, http.StatusConflict, "stale submission", gin.H{"currentPage": page})
	case errors.Is(err, util.ErrSessionComplete):
		util.Error(ctx, http.StatusConflict, "session already complete")
	case errors.Is(err, service.ErrResultsNotReady):
		util.Error(ctx, http.StatusConflict, "results not available yet")
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrUnsupportedLocale):
		util.BadRequest(ctx, "unsupported locale")
	default:
		util.LogInternalError(ctx, err)
	}
}
