package servehttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"reliefops/account"
	"reliefops/common"
	"reliefops/session"
)

func RegisterUserHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/users", middleWares...)
	g.POST("", handleCreateUser)
	g.GET("", handleQueryUsers)
	g.PUT(":id", handleUpdateUser)

	b := r.Group("/v1/session-users", middleWares...)
	b.PUT("basic-auths", handleUpdateBasicAuth)

	a := r.Group("/v1/role-bindings", middleWares...)
	a.POST("", handleGrantRole)
	a.DELETE("", handleRevokeRole)

	roles := r.Group("/v1/roles", middleWares...)
	roles.GET("", handleQueryRoles)
	perms := r.Group("/v1/permissions", middleWares...)
	perms.GET("", handleQueryPermissions)
}

func handleCreateUser(c *gin.Context) {
	creation := account.UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	user, err := account.CreateUser(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func handleQueryUsers(c *gin.Context) {
	users, err := account.QueryUsers(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func handleUpdateUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	updating := account.UserUpdation{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := account.UpdateUser(id, &updating, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleUpdateBasicAuth(c *gin.Context) {
	updating := account.BasicAuthUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := account.UpdateBasicAuthSecret(&updating, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleGrantRole(c *gin.Context) {
	granting := account.RoleGranting{}
	if err := c.ShouldBindBodyWith(&granting, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	roleBinding, err := account.GrantRole(&granting, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, roleBinding)
}

func handleRevokeRole(c *gin.Context) {
	granting := account.RoleGranting{}
	if err := c.ShouldBindBodyWith(&granting, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := account.RevokeRole(&granting, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryRoles(c *gin.Context) {
	roles, err := account.QueryRoles(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, roles)
}

func handleQueryPermissions(c *gin.Context) {
	perms, err := account.QueryPermissions(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, perms)
}
