package controller

import (
	"net/http"

	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// An AuditController contains a group name and an `AuditServiceInterface` instance. It also implements the interface `Controller`.
type AuditController struct {
	GroupName string
	AuditSvc  service.AuditServiceInterface
}

// GetGroupName returns the group name.
func (c *AuditController) GetGroupName() string {
	return c.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by AuditController.
func (c *AuditController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"flush", "POST"}:                  []gin.HandlerFunc{c.handleFlushBatch},
		urlMethodPair{"receipt/latest", "GET"}:          []gin.HandlerFunc{c.handleGetLatestReceipt},
		urlMethodPair{"receipt/:batchId", "GET"}:        []gin.HandlerFunc{c.handleGetReceipt},
		urlMethodPair{"batch/:batchId/evidence", "GET"}: []gin.HandlerFunc{c.handleListBatchEvidence},
	}
}

func (c *AuditController) handleFlushBatch(ctx *gin.Context) {
	receipt, err := c.AuditSvc.FlushBatch()
	if err != nil {
		ctx.String(http.StatusInternalServerError, err.Error())
		return
	}

	// An empty queue produces no receipt
	if receipt == nil {
		ctx.Writer.WriteHeader(http.StatusNoContent)
		return
	}

	ctx.JSON(http.StatusOK, receipt)
}

func (c *AuditController) handleGetLatestReceipt(ctx *gin.Context) {
	receipt := c.AuditSvc.LatestReceipt()
	if receipt == nil {
		ctx.Writer.WriteHeader(http.StatusNotFound)
		return
	}

	ctx.JSON(http.StatusOK, receipt)
}

func (c *AuditController) handleGetReceipt(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	batchID := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("batchId"), "批次 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	receipt, err := c.AuditSvc.GetReceipt(batchID)
	if err == nil {
		ctx.JSON(http.StatusOK, receipt)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}

func (c *AuditController) handleListBatchEvidence(ctx *gin.Context) {
	// Validity check
	pel := &ParameterErrorList{}
	batchID := pel.AppendIfEmptyOrBlankSpaces(ctx.Param("batchId"), "批次 ID 不能为空。")

	// Early return if there's parameter error
	if len(*pel) != 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, *pel)
		return
	}

	batchEvidence, err := c.AuditSvc.ListBatchEvidence(batchID)
	if err == nil {
		ctx.JSON(http.StatusOK, batchEvidence)
	} else if errors.Cause(err) == errorcode.ErrorNotFound {
		ctx.Writer.WriteHeader(http.StatusNotFound)
	} else {
		ctx.String(http.StatusInternalServerError, err.Error())
	}
}
