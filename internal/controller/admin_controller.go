package controller

import (
	"errors"
	"fmt"
	"net/http"

	"hilfo_survey_backend/internal/catalog"
	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/internal/service"
	"hilfo_survey_backend/internal/util"
	"hilfo_survey_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Auth   *service.AuthService
	Export *service.ExportService
	Flow   *service.FlowService
	Cfg    *config.Config
}

func NewAdminController(auth *service.AuthService, export *service.ExportService, flow *service.FlowService, cfg *config.Config) *AdminController {
	return &AdminController{Auth: auth, Export: export, Flow: flow, Cfg: cfg}
}

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param body body AdminLoginRequest true "credentials"
// @Success 200 {object} util.Response
// @Router /api/admin/login [post]
func (c *AdminController) Login(ctx *gin.Context) {
	var req AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.Auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Unauthorized(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"token": token})
}

// @Summary Archived responses of the study
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/responses [get]
func (c *AdminController) ListResponses(ctx *gin.Context) {
	records, err := c.Export.ListRecords()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": len(records), "records": records})
}

// @Summary Full study export as CSV
// @Description Streams the delimited export; upload=1 also pushes it to the configured storage.
// @Tags admin
// @Produce text/csv
// @Security ApiKeyAuth
// @Param upload query bool false "also upload to storage"
// @Success 200 {string} string "csv"
// @Router /api/admin/export [get]
func (c *AdminController) ExportCSV(ctx *gin.Context) {
	data, err := c.Export.StudyCSV()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if ctx.Query("upload") == "1" {
		url, err := c.Export.UploadStudyCSV(ctx.Request.Context())
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		logger.Log.Info("study export uploaded", zap.String("url", url))
	}

	filename := fmt.Sprintf("%s_export.csv", c.Cfg.Study.Key)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv", data)
}

// @Summary Reload and swap the study catalogs
// @Description Revalidates the catalog sources and atomically swaps them in; running sessions keep a consistent snapshot.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/catalog/reload [post]
func (c *AdminController) ReloadCatalog(ctx *gin.Context) {
	cat, err := catalog.Load(c.Cfg.Study.ItemBankPath, c.Cfg.Study.PagePlanPath, c.Cfg.Study.FieldsPath)
	if err != nil {
		if errors.Is(err, util.ErrMalformedItemBank) || errors.Is(err, util.ErrDanglingReference) {
			util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	c.Flow.SwapCatalog(cat)
	logger.Log.Info("catalogs reloaded",
		zap.Int("items", cat.Items.Len()),
		zap.Int("pages", len(cat.Plan.Pages)),
		zap.Int("fields", len(cat.Fields)))
	util.Success(ctx, gin.H{
		"items":  cat.Items.Len(),
		"pages":  len(cat.Plan.Pages),
		"fields": len(cat.Fields),
	})
}
