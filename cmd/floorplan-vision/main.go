package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/planwise/floorplan-vision/internal/config"
	"github.com/planwise/floorplan-vision/internal/learning"
	"github.com/planwise/floorplan-vision/internal/pipeline"
	"github.com/planwise/floorplan-vision/internal/server"
	"github.com/planwise/floorplan-vision/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("floorplan-vision %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("floorplan-vision - MCP server for floor plan analysis")
			fmt.Println()
			fmt.Println("Usage: floorplan-vision [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  FLOORPLAN_LOG_LEVEL=debug      Enable debug logging")
			fmt.Println("  FLOORPLAN_DATA_DIR=<dir>       Learning data directory (default ./floorplan-data)")
			fmt.Println("  FLOORPLAN_HISTORY=file|sqlite  Session history backend (default file)")
			fmt.Println("  FLOORPLAN_BACKEND=standard|null")
			fmt.Println("                                 Vision backend selection (default standard)")
			fmt.Println("  FLOORPLAN_AUTO_CORRECT=1       Apply historical corrections to results")
			fmt.Println()
			fmt.Println("Detection thresholds are also overridable via FLOORPLAN_* variables;")
			fmt.Println("see internal/config for the full list.")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	logLevel := os.Getenv("FLOORPLAN_LOG_LEVEL")
	if logLevel == "debug" {
		log.Printf("Floorplan Vision Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg := config.FromEnv()

	dataDir := os.Getenv("FLOORPLAN_DATA_DIR")
	if dataDir == "" {
		dataDir = "floorplan-data"
	}
	history, err := newHistory(dataDir)
	if err != nil {
		log.Fatalf("Initializing session history: %v", err)
	}
	store := learning.NewStore(history)

	var backend vision.Backend = vision.NewStandard()
	if os.Getenv("FLOORPLAN_BACKEND") == "null" {
		log.Printf("Vision backend disabled; serving empty detections")
		backend = vision.NewNull()
	}

	analyzer := pipeline.New(pipeline.Options{
		Backend:     backend,
		Config:      cfg,
		Store:       store,
		History:     history,
		AutoCorrect: os.Getenv("FLOORPLAN_AUTO_CORRECT") == "1",
	})

	srv := server.New(server.Options{
		Analyzer: analyzer,
		Store:    store,
		Patterns: learning.NewAnalyzer(history, cfg),
	})
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// newHistory selects the session history backend.
func newHistory(dataDir string) (learning.History, error) {
	if os.Getenv("FLOORPLAN_HISTORY") == "sqlite" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, err
		}
		return learning.NewSQLiteHistory(filepath.Join(dataDir, "learning.db"))
	}
	return learning.NewFileHistory(dataDir)
}
