package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"reliefops/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

var statusMappings = []struct {
	Err     error
	Status  int
	Code    string
	Message string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated", "unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden", "access forbidden"},
	{ErrInvalidPassword, http.StatusForbidden, "account.invalid_password", "invalid password"},
	{ErrUnrecognizedClaim, http.StatusBadRequest, "authority.unrecognized_claim", "external claim is not mapped to a canonical role"},
	{ErrUnknownIdentity, http.StatusForbidden, "authority.unknown_identity", "identity has no role assignment and no claims"},
	{ErrUnknownStatusCode, http.StatusBadRequest, "status.unknown_code", "status code is outside the method vocabulary"},
	{ErrIllegalTransition, http.StatusConflict, "status.illegal_transition", "status transition is not legal"},
	{ErrNotAuthorized, http.StatusForbidden, "approval.not_authorized", "actor is not an eligible approver"},
	{ErrRequestNotFound, http.StatusNotFound, "request.not_found", "replenishment request not found"},
	{ErrConcurrentModification, http.StatusConflict, "request.concurrent_modification", "request was modified concurrently, retry with fresh state"},
	{ErrUnsupportedMethod, http.StatusBadRequest, "request.unsupported_method", "no status vocabulary is defined for the request method"},
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(common.BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	for _, mapping := range statusMappings {
		if errors.Is(genericErr, mapping.Err) {
			c.JSON(mapping.Status, &common.ErrorBody{Code: mapping.Code, Message: mapping.Message})
			c.Abort()
			return
		}
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
