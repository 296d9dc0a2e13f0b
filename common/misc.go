package common

import "os"

var (
	serviceName     = "reliefops"
	serviceInstance = ""
)

func GetServiceName() string {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		return name
	}
	return serviceName
}

func GetServiceInstance() string {
	if serviceInstance != "" {
		return serviceInstance
	}
	if instance := os.Getenv("SERVICE_INSTANCE"); instance != "" {
		serviceInstance = instance
		return serviceInstance
	}
	hostname, err := os.Hostname()
	if err == nil {
		serviceInstance = hostname
	}
	return serviceInstance
}
