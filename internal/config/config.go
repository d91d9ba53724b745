package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/mockmart/techstore/pkg/logger"
	"github.com/spf13/viper"
)

// MustInit loads .env and config.yaml and installs the default logger.
// The service name ends up on every log line.
func MustInit(service string) {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/techstore")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}

	SetupLogger(service)
}

// SetupLogger installs the slog default for the given service.
func SetupLogger(service string) {
	handler := logger.NewHandler(&logger.Options{Service: service})
	log := slog.New(handler)
	slog.SetDefault(log)
}

// Issuer is the issuer string expected inside tokens. It is built from the
// public identity provider URL because that is what browser-issued tokens
// carry, even when services reach the provider over an internal address.
func Issuer() string {
	return viper.GetString("keycloak.public_url") +
		viper.GetString("keycloak.auth_path") +
		"/realms/" + viper.GetString("keycloak.realm")
}

// JWKSURL is the key-set endpoint, reached over the internal address.
func JWKSURL() string {
	return realmURL() + "/protocol/openid-connect/certs"
}

// TokenURL is the client-credentials token endpoint.
func TokenURL() string {
	return realmURL() + "/protocol/openid-connect/token"
}

func realmURL() string {
	return viper.GetString("keycloak.url") +
		viper.GetString("keycloak.auth_path") +
		"/realms/" + viper.GetString("keycloak.realm")
}
