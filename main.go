package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"reliefops/account"
	"reliefops/authority"
	"reliefops/bizerror"
	"reliefops/common"
	"reliefops/domain"
	"reliefops/event"
	"reliefops/infra/tracing"
	"reliefops/persistence"
	"reliefops/servehttp"
	"reliefops/session"
	"reliefops/sessions"
)

func main() {
	logrus.Infoln("service start")

	closer, err := tracing.Bootstrap(common.GetServiceName())
	if err != nil {
		logrus.Warnf("tracing bootstrap failed %v", err)
	} else {
		defer closer.Close()
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{},
		&authority.Role{}, &authority.Permission{},
		&authority.UserRoleBinding{}, &authority.RolePermissionBinding{},
		&domain.ReplenishmentRequest{}, &domain.ApprovalAction{},
		&event.AuditRecord{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}

	if err := authority.DefaultSecurityConfiguration(); err != nil {
		logrus.Fatalf("default security configuration failed %v", err)
	}
	if err := account.DefaultAccountConfiguration(); err != nil {
		logrus.Fatalf("default account configuration failed %v", err)
	}

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "reliefops")
	})

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())

	servehttp.RegisterReplenishmentRequestHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterApprovalHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterUserHandler(engine, session.SimpleAuthFilter())

	if err := engine.Run(":80"); err != nil {
		panic(err)
	}
}
