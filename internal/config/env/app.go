package env

import "run_the_numbers/internal/config"

const (
	serviceNameEnvName = "SERVICE_NAME"
	appEnvEnvName      = "APP_ENV"
	imageDirEnvName    = "IMAGE_DIR"
)

type appConfig struct {
	serviceName string
	env         string
	imageDir    string
}

func NewAppConfig() config.AppConfig {
	return &appConfig{
		serviceName: stringEnv(serviceNameEnvName, "run-the-numbers"),
		env:         stringEnv(appEnvEnvName, "local"),
		imageDir:    stringEnv(imageDirEnvName, "./data/prize-images"),
	}
}

func (cfg *appConfig) ServiceName() string { return cfg.serviceName }

func (cfg *appConfig) Env() string { return cfg.env }

func (cfg *appConfig) ImageDir() string { return cfg.imageDir }
