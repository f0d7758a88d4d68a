package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/carmina/signado/internal/capture"
	"github.com/carmina/signado/internal/classify"
	"github.com/carmina/signado/internal/detector"
	"github.com/carmina/signado/internal/room"
	"github.com/carmina/signado/internal/server"
	"github.com/carmina/signado/internal/session"
	"github.com/carmina/signado/internal/store"
	"github.com/carmina/signado/internal/tray"
)

func main() {
	fmt.Println("Signado - Hand Sign Recognition Games")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".signado")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "signado.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Classifier over the models directory. The last practiced model type is
	// restored from settings; a missing bundle doesn't block startup.
	classifier := classify.NewClassifier(classify.NewFileSource(filepath.Join(dataDir, "models")))
	modelType := classify.ModelAlphabet
	if v, err := st.Settings().Get(store.SettingActiveModel); err == nil && v != "" {
		modelType = classify.ModelType(v)
	}
	if err := classifier.LoadModel(modelType); err != nil {
		log.Printf("Model %q not loaded yet: %v", modelType, err)
	}

	// Camera and hand detector. MediaPipe first, mock fallback so the rest
	// of the app stays usable without it.
	camera := capture.NewCamera(0)
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}
	defer det.Close()

	sess := session.New(session.Config{}, camera, det, classifier)

	// Room hub over websockets
	hub := server.NewHub()
	rooms := room.NewManager(room.DefaultConfig(), hub)
	hub.SetRooms(rooms)

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Camera:     camera,
		Session:    sess,
		Classifier: classifier,
		Hub:        hub,
	})

	addr := ":8080"
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// The tray owns the camera toggle for local practice.
	t := tray.New()
	t.OnToggle(func(enabled bool) {
		if enabled {
			if err := sess.StartCamera(); err != nil {
				log.Printf("Error starting camera: %v", err)
			}
			return
		}
		if err := sess.StopCamera(); err != nil {
			log.Printf("Error stopping camera: %v", err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser("http://localhost" + addr); err != nil {
			log.Printf("Error opening browser: %v", err)
		}
	})
	t.OnQuit(func() {
		if err := sess.StopCamera(); err != nil {
			log.Printf("Error stopping camera: %v", err)
		}
	})

	// Mirror recognized signs into the tray menu.
	sess.OnPrediction(func(p classify.Prediction) {
		if p.Label == classify.NoGestureLabel || p.Label == classify.ModelLoadingLabel {
			return
		}
		t.SetLastSign(p.Label)
	})

	t.Run()
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.signado/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".signado", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
