package main

import (
	"os"

	"github.com/culturallm/backend/internal/cli"
)

// @title CulturaLLM API
// @version 1.0
// @description Crowd-sourced Italian culture trivia. Users ask and answer questions, validate each other's answers and compare themselves with an LLM.
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
