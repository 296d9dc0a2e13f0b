package servehttp

import (
	"net/http"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"reliefops/common"
	"reliefops/domain"
	"reliefops/domain/approval"
	"reliefops/session"
)

func RegisterReplenishmentRequestHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/replenishment-requests", middleWares...)

	handler := &replenishmentRequestHandler{validator: validator.New()}
	g.POST("", handler.handleCreate)
	g.GET("", handler.handleQuery)
	g.GET(":id", handler.handleDetail)
	g.GET(":id/actions", handler.handleQueryActions)
}

type replenishmentRequestHandler struct {
	validator *validator.Validate
}

func (h *replenishmentRequestHandler) handleCreate(c *gin.Context) {
	creation := domain.ReplenishmentRequestCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	request, err := approval.CreateRequestFunc(c.Request.Context(), &creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, request)
}

func (h *replenishmentRequestHandler) handleDetail(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	request, err := approval.DetailRequestFunc(c.Request.Context(), id, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, request)
}

func (h *replenishmentRequestHandler) handleQuery(c *gin.Context) {
	query := domain.ReplenishmentRequestQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	requests, err := approval.QueryRequestsFunc(c.Request.Context(), &query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, requests)
}

func (h *replenishmentRequestHandler) handleQueryActions(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	actions, err := approval.QueryActionsFunc(c.Request.Context(), id, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, actions)
}

func parseID(raw string) (types.ID, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return types.ID(id), nil
}
