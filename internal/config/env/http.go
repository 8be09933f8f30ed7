package env

import (
	"errors"
	"net"
	"run_the_numbers/internal/config"
)

const httpAddressEnvName = "HTTP_ADDRESS"

type httpConfig struct {
	address string
}

func NewHTTPConfig() (config.HTTPConfig, error) {
	address := stringEnv(httpAddressEnvName, "")
	if address == "" {
		return nil, errors.New("http address not found")
	}
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, err
	}
	return &httpConfig{address: address}, nil
}

func (cfg *httpConfig) Address() string {
	return cfg.address
}
