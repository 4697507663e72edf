package properties

import (
	"os"
	"path/filepath"
	"strconv"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getenvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// OutputDir is where run artifacts are written. Artifacts are overwritten on every run.
func OutputDir() string {
	return getenv("GEODIFF_OUTPUT_DIR", "output")
}

// TempRoot holds the run-scoped scratch trees.
func TempRoot() string {
	return getenv("GEODIFF_TEMP_ROOT", filepath.Join(os.TempDir(), "geodiff"))
}

func Workers() int {
	return getenvInt("GEODIFF_WORKERS", 4)
}

func LogLevel() string {
	return getenv("GEODIFF_LOG_LEVEL", "info")
}

// Scale is the ground resolution in meters per pixel used for quadrant geometry.
func Scale() float64 {
	return getenvFloat("GEODIFF_SCALE", 100)
}

func MaxPixels() int {
	return getenvInt("GEODIFF_MAX_PIXELS", 100)
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
