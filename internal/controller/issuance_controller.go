package controller

import (
	"net/http"

	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/request"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// An IssuanceController contains a group name and an `IssuanceServiceInterface` instance. It also implements the interface `Controller`.
type IssuanceController struct {
	GroupName   string
	IssuanceSvc service.IssuanceServiceInterface
}

// GetGroupName returns the group name.
func (c *IssuanceController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by IssuanceController.
func (c *IssuanceController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"request", "POST"}:       []gin.HandlerFunc{c.handleAccessRequest},
		urlMethodPair{"wrap/:id", "GET"}:       []gin.HandlerFunc{c.handleGetWrap},
		urlMethodPair{"wrap/:id/fetch", "GET"}: []gin.HandlerFunc{c.handleFetchForSession},
		urlMethodPair{"finalize", "POST"}:      []gin.HandlerFunc{c.handleFinalizePending},
	}
}

func (c *IssuanceController) handleAccessRequest(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}

	sessionHostID := ctx.Query("sessionHostId")
	sessionHostID = pel.AppendIfEmptyOrBlankSpaces(sessionHostID, "会话主机 ID 不能为空。")

	var req request.AccessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		*pel = append(*pel, "访问请求体无法解析。")
	}

	// Early return after extracting common parameters if the error list is not empty
	if len(*pel) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	wrapID, accepted, err := c.IssuanceSvc.HandleRequest(&req, sessionHostID)

	// Check error type and generate the corresponding response
	if err == nil {
		info := WrapIssuanceInfo{
			Accepted: accepted,
			WrapID:   wrapID,
		}
		ctx.JSON(http.StatusOK, info)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else if _, ok := err.(*service.ErrorBadRequest); ok {
		ctx.String(http.StatusBadRequest, err.Error())
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *IssuanceController) handleGetWrap(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	id := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("id"), "wrap 令牌 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	token, err := c.IssuanceSvc.GetWrap(id)
	if err == nil {
		ctx.JSON(http.StatusOK, token)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *IssuanceController) handleFetchForSession(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	id := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("id"), "wrap 令牌 ID 不能为空。")

	sessionHostID := ctx.Query("sessionHostId")
	sessionHostID = pel.AppendIfEmptyOrBlankSpaces(sessionHostID, "会话主机 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	token, err := c.IssuanceSvc.FetchForSession(id, sessionHostID)
	if err == nil {
		ctx.JSON(http.StatusOK, token)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else if errors.Cause(err) == errorcode.ErrorForbidden {
		ctx.Writer.WriteHeader(http.StatusForbidden)
	} else if errors.Cause(err) == errorcode.ErrorNotReady {
		// 令牌尚未完成签发，客户端可稍后重试
		ctx.Writer.WriteHeader(http.StatusTooEarly)
	} else if errors.Cause(err) == errorcode.ErrorRevoked || errors.Cause(err) == errorcode.ErrorExpired {
		ctx.Writer.WriteHeader(http.StatusGone)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *IssuanceController) handleFinalizePending(ctx *gin.Context) {
	finalized, err := c.IssuanceSvc.FinalizePending()
	if err == nil {
		ctx.JSON(http.StatusOK, gin.H{"finalized": finalized})
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}
