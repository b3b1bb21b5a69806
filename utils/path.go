package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

func GetProjectRoot() string {
	if env := os.Getenv("CRUSHER_ROOT"); env != "" {
		return env
	}
	executable, err := os.Executable()
	if err != nil {
		log.Fatalf("Failed to get executable: %v", err)
	}
	dir := filepath.Dir(executable)
	return filepath.Clean(filepath.Join(dir, ".."))
}

func EnsureDirExists(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// LogToFile redirige le log stdlib vers <logDir>/<filename>.
// Un fichier déjà présent part en archives/ avec un suffixe daté.
func LogToFile(logDir, filename string) *os.File {
	if logDir == "" {
		logDir = filepath.Join(GetProjectRoot(), "log")
	}
	EnsureDirExists(logDir)
	logFileName := filepath.Join(logDir, filename)
	if _, err := os.Stat(logFileName); err == nil {
		EnsureDirExists(filepath.Join(logDir, "archives"))
		os.Rename(logFileName, filepath.Join(logDir, "archives", filename+"."+time.Now().Format("2006-01-02-15-04-05")))
	}

	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		panic(err)
	}
	log.SetOutput(io.MultiWriter(logFile, os.Stderr))
	return logFile
}
