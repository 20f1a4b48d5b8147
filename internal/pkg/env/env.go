package env

import (
	"os"

	"github.com/joho/godotenv"
)

// Env holds the key/value pairs loaded from the .env file.
var Env map[string]string

// GetEnv looks the key up in the loaded .env file first, then in the
// process environment (containers and CI set values there), then falls
// back to def.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the first .env file found relative to the working
// directory. The binaries under cmd/ run two levels below the project
// root, hence the relative candidates.
func SetupEnvFile() {
	candidates := []string{
		".env",
		"../../.env",
		"../../../.env",
	}

	var err error
	for _, path := range candidates {
		Env, err = godotenv.Read(path)
		if err == nil {
			return
		}
	}

	panic("no .env file found; copy .env.example to .env")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
