package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"clinic/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// StaticHandler serves a single page app from dir when it exists. GET paths
// that match no file fall back to index.html, except under apiPrefixes.
func StaticHandler(router fiber.Router, dir string, apiPrefixes []string) {
	log := logger.New("handlers").File("static_handler").Function("StaticHandler")

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Info("No static directory, skipping frontend", "dir", dir)
		return
	}

	index := filepath.Join(dir, "index.html")
	router.Static("/static", dir)
	router.Get("/*", func(c *fiber.Ctx) error {
		path := "/" + c.Params("*")
		if isAPIPath(path, apiPrefixes) {
			return fiber.ErrNotFound
		}

		file := filepath.Join(dir, filepath.Clean(path))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return c.SendFile(file)
		}
		return c.SendFile(index)
	})
}

func isAPIPath(path string, apiPrefixes []string) bool {
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		return true
	}
	for _, prefix := range apiPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
