package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort        string
	DataFilePath      string
	TesseractDataPath string
	VisionAPIURL      string
	VisionAPIKey      string
	VisionTimeout     time.Duration
	MaxFileSize       int64
}

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	dataFilePath := os.Getenv("DATA_FILE_PATH")
	if dataFilePath == "" {
		dataFilePath = "data/expenses.json"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata"
	}

	visionTimeout := 30 * time.Second
	if v := os.Getenv("VISION_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			visionTimeout = time.Duration(secs) * time.Second
		}
	}

	return &Config{
		ServerPort:        serverPort,
		DataFilePath:      dataFilePath,
		TesseractDataPath: tesseractDataPath,
		VisionAPIURL:      os.Getenv("VISION_API_URL"),
		VisionAPIKey:      os.Getenv("VISION_API_KEY"),
		VisionTimeout:     visionTimeout,
		MaxFileSize:       5 * 1024 * 1024, // 5 MB
	}
}
