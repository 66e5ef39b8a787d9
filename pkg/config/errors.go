package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when a nil pointer is provided to Load
	ErrNilPointer = errors.New("nil pointer provided to config loader")

	// ErrEnvFileNotFound is returned when a named .env file does not exist
	ErrEnvFileNotFound = errors.New("env file not found")

	// ErrLoadingEnvFile is returned when a .env file exists but cannot be loaded
	ErrLoadingEnvFile = errors.New("failed to load env file")
)
