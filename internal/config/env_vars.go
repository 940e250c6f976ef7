package config

import (
	"os"
)

const (
	appNameVar        = "APP_NAME"
	folderEnvVar      = "ADMIN_DATA_FOLDER"
	downloadFolderVar = "ADMIN_DOWNLOAD_FOLDER"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Admin Client")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetDownloadFolder() string {
	return GetEnv(downloadFolderVar, "./downloads")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
