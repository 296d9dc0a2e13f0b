package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_URL=root:root@(127.0.0.1:3306)/reliefops?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverType := os.Getenv("DATABASE_DRIVER")
	if driverType == "" {
		driverType = "mysql"
	}
	driverArgs := os.Getenv("DATABASE_URL")
	if driverArgs == "" {
		return nil, errors.New("environment variable DATABASE_URL is not set")
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

// PrepareMysqlDatabase create the database named in driverArgs when it is absent
func PrepareMysqlDatabase(driverArgs string) error {
	databaseName, baseArgs, err := splitDatabaseName(driverArgs)
	if err != nil {
		return err
	}

	db, err := sql.Open("mysql", baseArgs)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` CHARACTER SET utf8mb4")
	return err
}

func splitDatabaseName(driverArgs string) (string, string, error) {
	slash := strings.LastIndex(driverArgs, "/")
	if slash < 0 {
		return "", "", errors.New("database name not found in driver args")
	}
	name := driverArgs[slash+1:]
	query := ""
	if q := strings.Index(name, "?"); q >= 0 {
		query = name[q:]
		name = name[:q]
	}
	if name == "" {
		return "", "", errors.New("database name not found in driver args")
	}
	return name, driverArgs[:slash+1] + query, nil
}
