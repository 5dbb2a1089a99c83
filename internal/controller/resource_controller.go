package controller

import (
	"net/http"

	"gitee.com/czyczk/wrapdek-sharing/internal/store"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// A ResourceController contains a group name and an `IResourceStore` instance. It also implements the interface `Controller`.
type ResourceController struct {
	GroupName     string
	ResourceStore store.IResourceStore
}

// GetGroupName returns the group name.
func (c *ResourceController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by ResourceController.
func (c *ResourceController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"", "POST"}:   []gin.HandlerFunc{c.handleCreateResource},
		urlMethodPair{":id", "GET"}: []gin.HandlerFunc{c.handleGetResourceMetadata},
	}
}

func (c *ResourceController) handleCreateResource(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}

	resourceID := ctx.PostForm("resourceId")
	resourceID = pel.AppendIfEmptyOrBlankSpaces(resourceID, "资源 ID 不能为空。")

	contents := ctx.PostForm("contents")
	contents = pel.AppendIfEmptyOrBlankSpaces(contents, "资源内容不能为空。")

	// Early return after extracting common parameters if the error list is not empty
	if len(*pel) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	res, err := c.ResourceStore.CreateResource(resourceID, []byte(contents))

	// Check error type and generate the corresponding response
	if err == nil {
		info := ResourceCreationInfo{
			ResourceID:  res.ResourceID,
			Fingerprint: res.Fingerprint,
			IpfsCid:     res.IpfsCid,
		}
		ctx.JSON(http.StatusOK, info)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *ResourceController) handleGetResourceMetadata(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	id := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("id"), "资源 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	// The DEK field is excluded from serialization and never leaves the store boundary
	res, err := c.ResourceStore.GetResource(id)
	if err == nil {
		ctx.JSON(http.StatusOK, res)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}
