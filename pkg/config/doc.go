// Package config loads typed configuration structs from environment variables.
//
// It is a thin layer over github.com/caarlos0/env with .env file support from
// github.com/joho/godotenv. Each package that needs settings declares its own
// Config struct with `env` and `envDefault` tags; the service binary loads them
// at startup with Load or MustLoad.
package config
