package controller

import (
	"net/http"

	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// An EnforcementController contains a group name and an `EnforcementServiceInterface` instance. It also implements the interface `Controller`.
type EnforcementController struct {
	GroupName      string
	EnforcementSvc service.EnforcementServiceInterface
}

// GetGroupName returns the group name.
func (c *EnforcementController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by EnforcementController.
func (c *EnforcementController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{":id/accept", "POST"}: []gin.HandlerFunc{c.handleAccept},
		urlMethodPair{":id/use", "POST"}:    []gin.HandlerFunc{c.handleUse},
	}
}

func (c *EnforcementController) handleAccept(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	id := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("id"), "wrap 令牌 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	err := c.EnforcementSvc.Accept(id)
	if err == nil {
		ctx.Writer.WriteHeader(http.StatusOK)
	} else {
		writeClassifiedEnforcementError(ctx, err)
	}
}

func (c *EnforcementController) handleUse(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	id := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("id"), "wrap 令牌 ID 不能为空。")

	purpose := ctx.PostForm("purpose")
	purpose = pel.AppendIfEmptyOrBlankSpaces(purpose, "用途标签不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	outputHash, err := c.EnforcementSvc.Use(id, purpose)
	if err == nil {
		info := UsageOutputInfo{
			OutputHash: outputHash,
		}
		ctx.JSON(http.StatusOK, info)
	} else {
		writeClassifiedEnforcementError(ctx, err)
	}
}

// writeClassifiedEnforcementError 将执行会话管理器的已分类错误映射为 HTTP 状态码。
func writeClassifiedEnforcementError(ctx *gin.Context, err error) {
	if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else if errors.Cause(err) == errorcode.ErrorForbidden {
		ctx.Writer.WriteHeader(http.StatusForbidden)
	} else if errors.Cause(err) == errorcode.ErrorNotReady {
		ctx.Writer.WriteHeader(http.StatusTooEarly)
	} else if errors.Cause(err) == errorcode.ErrorRevoked || errors.Cause(err) == errorcode.ErrorExpired {
		ctx.Writer.WriteHeader(http.StatusGone)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}
