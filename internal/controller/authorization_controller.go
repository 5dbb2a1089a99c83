package controller

import (
	"net/http"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/ledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// An AuthorizationController contains a group name, an `IAuthLedger` instance and an `IssuanceServiceInterface` instance.
// It also implements the interface `Controller`. Revocation is propagated to the issuance coordinator so that
// the wrap tokens bound to the revoked authorization are revoked in the same call.
type AuthorizationController struct {
	GroupName   string
	AuthLedger  ledger.IAuthLedger
	IssuanceSvc service.IssuanceServiceInterface
}

// GetGroupName returns the group name.
func (c *AuthorizationController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by AuthorizationController.
func (c *AuthorizationController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"", "POST"}:           []gin.HandlerFunc{c.handlePublishAuthorization},
		urlMethodPair{":id", "GET"}:         []gin.HandlerFunc{c.handleGetAuthorization},
		urlMethodPair{":id/revoke", "POST"}: []gin.HandlerFunc{c.handleRevokeAuthorization},
	}
}

func (c *AuthorizationController) handlePublishAuthorization(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}

	resourceID := ctx.PostForm("resourceId")
	resourceID = pel.AppendIfEmptyOrBlankSpaces(resourceID, "资源 ID 不能为空。")

	granteeDid := ctx.PostForm("granteeDid")
	granteeDid = pel.AppendIfEmptyOrBlankSpaces(granteeDid, "被授权方 DID 不能为空。")

	ttlSeconds := ctx.PostForm("ttlSeconds")
	ttlSecondsInt := pel.AppendIfNotPositiveInt(ttlSeconds, "有效期秒数须为正整数。")

	// Early return after extracting common parameters if the error list is not empty
	if len(*pel) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	authorizationID, err := c.AuthLedger.PublishAuthorization(resourceID, granteeDid, time.Duration(ttlSecondsInt)*time.Second)

	// Check error type and generate the corresponding response
	if err == nil {
		info := AuthorizationCreationInfo{
			AuthorizationID: authorizationID,
		}
		ctx.JSON(http.StatusOK, info)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *AuthorizationController) handleGetAuthorization(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	id := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("id"), "授权 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	record, err := c.AuthLedger.GetAuthorization(id)
	if err == nil {
		ctx.JSON(http.StatusOK, record)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *AuthorizationController) handleRevokeAuthorization(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	id := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("id"), "授权 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	if err := c.AuthLedger.RevokeAuthorization(id); err != nil {
		ctx.String(http.StatusInternalServerError, err.Error())
		return
	}

	// Fan the revocation out to the wrap tokens bound to this authorization
	revoked, err := c.IssuanceSvc.OnAuthorizationRevoked(id)
	if err == nil {
		info := RevocationInfo{
			RevokedWraps: revoked,
		}
		ctx.JSON(http.StatusOK, info)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}
