package servehttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"reliefops/authority"
	"reliefops/common"
	"reliefops/domain"
	"reliefops/domain/approval"
	"reliefops/session"
)

func RegisterApprovalHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &approvalHandler{validator: validator.New()}

	g := r.Group("/v1/approvals", middleWares...)
	g.POST("", handler.handleAttempt)

	p := r.Group("/v1/approval-policies", middleWares...)
	p.GET("", handler.handleEligibleRoles)
}

type approvalHandler struct {
	validator *validator.Validate
}

func (h *approvalHandler) handleAttempt(c *gin.Context) {
	attempt := domain.ApprovalAttempt{}
	if err := c.ShouldBindBodyWith(&attempt, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(attempt); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	var claims []authority.ExternalClaim
	if attempt.ClaimsToken != "" {
		parsed, err := authority.ParseClaimsToken(attempt.ClaimsToken)
		if err != nil {
			panic(err)
		}
		claims = parsed
	}

	result, err := approval.AttemptApprovalFunc(c.Request.Context(), attempt.RequestID,
		attempt.TargetStatus, claims, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

type eligibleRolesQuery struct {
	Method        domain.Method `form:"method" validate:"required,oneof=Transfer Donation Procurement"`
	SubmitterRole string        `form:"submitterRole" validate:"required"`
}

func (h *approvalHandler) handleEligibleRoles(c *gin.Context) {
	query := eligibleRolesQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	roles := approval.DefaultPolicyEngine.EligibleApproverRoles(query.Method, query.SubmitterRole)
	c.JSON(http.StatusOK, roles)
}
