package env

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Env holds the key/value pairs loaded from the .env file. Lookups fall
// through to the process environment, so containerized deployments can run
// without any .env file at all.
var Env map[string]string

// envFiles are the locations probed for a .env file, in order. The
// relative entries cover running the linkpulse and migrate binaries from
// their cmd/ directories during development.
var envFiles = []string{
	".env",
	"../../.env",
	"../../../.env",
}

func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the first .env file found. Not finding one is fine:
// production instances are configured through the container environment.
func SetupEnvFile() {
	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}
	log.Println("No .env file found, using process environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
