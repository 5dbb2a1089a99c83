package controller

import (
	"net/http"

	"gitee.com/czyczk/wrapdek-sharing/internal/ledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/sm2keyutils"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// An IdentityController contains a group name and an `IIdentityRegistry` instance. It also implements the interface `Controller`.
type IdentityController struct {
	GroupName        string
	IdentityRegistry ledger.IIdentityRegistry
}

// GetGroupName returns the group name.
func (c *IdentityController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by IdentityController.
func (c *IdentityController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"", "POST"}:    []gin.HandlerFunc{c.handleRegisterIdentity},
		urlMethodPair{":did", "GET"}: []gin.HandlerFunc{c.handleGetIdentity},
	}
}

func (c *IdentityController) handleRegisterIdentity(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}

	did := ctx.PostForm("did")
	did = pel.AppendIfEmptyOrBlankSpaces(did, "DID 不能为空。")

	publicKeyPem := ctx.PostForm("publicKey")
	publicKeyPem = pel.AppendIfEmptyOrBlankSpaces(publicKeyPem, "公钥 PEM 不能为空。")

	// Early return after extracting common parameters if the error list is not empty
	if len(*pel) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	publicKey, err := sm2keyutils.ConvertPEMToPublicKey([]byte(publicKeyPem))
	if err != nil {
		*pel = append(*pel, "公钥 PEM 无法解析。")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	receipt, err := c.IdentityRegistry.Register(did, cipherutils.GetSM2PublicKeyFingerprint(publicKey))

	// Check error type and generate the corresponding response
	if err == nil {
		ctx.JSON(http.StatusOK, receipt)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *IdentityController) handleGetIdentity(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	did := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("did"), "DID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	receipt, err := c.IdentityRegistry.Query(did)
	if err == nil {
		ctx.JSON(http.StatusOK, receipt)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}
