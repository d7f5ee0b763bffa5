package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cvforge/internal/errors"
)

// ProfileWatcher watches a profile document file for changes and triggers
// a re-render callback
type ProfileWatcher struct {
	mu sync.RWMutex

	// File path to watch
	profileFile string

	// File metadata
	lastModTime map[string]time.Time

	// Watcher components
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	// Control channels
	stopChan   chan struct{}
	renderChan chan struct{}

	// Callback and logging
	renderCallback func()
	logger         *errors.Logger

	// State
	running bool
}

// NewProfileWatcher creates a new profile file watcher
func NewProfileWatcher(profileFile string, debounceDelay time.Duration, renderCallback func(), logger *errors.Logger) (*ProfileWatcher, error) {
	if profileFile == "" {
		return nil, fmt.Errorf("profile file path is required")
	}
	if debounceDelay == 0 {
		debounceDelay = time.Second // Default 1 second debounce
	}

	return &ProfileWatcher{
		profileFile:    profileFile,
		lastModTime:    make(map[string]time.Time),
		debounceDelay:  debounceDelay,
		stopChan:       make(chan struct{}),
		renderChan:     make(chan struct{}, 1), // Buffered to prevent blocking
		renderCallback: renderCallback,
		logger:         logger,
	}, nil
}

// Start begins watching the profile file for changes
func (pw *ProfileWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("profile watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher

	if err := pw.updateModTime(); err != nil {
		pw.cleanupWatcher()
		return fmt.Errorf("failed to get initial file modification time: %w", err)
	}

	if err := pw.addFileToWatcher(pw.profileFile); err != nil {
		pw.cleanupWatcher()
		return err
	}

	pw.running = true
	go pw.watchLoop()

	if pw.logger != nil {
		pw.logger.Info("Profile file watcher started",
			"file", pw.profileFile,
			"debounce_delay", pw.debounceDelay)
	}
	return nil
}

// cleanupWatcher closes the file watcher and logs any errors
func (pw *ProfileWatcher) cleanupWatcher() {
	if pw.fsWatcher != nil {
		if closeErr := pw.fsWatcher.Close(); closeErr != nil && pw.logger != nil {
			pw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
	}
}

// Stop stops the profile file watcher
func (pw *ProfileWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	// Signal stop
	close(pw.stopChan)

	// Stop debounce timer if running
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	// Close file system watcher
	if pw.fsWatcher != nil {
		if err := pw.fsWatcher.Close(); err != nil {
			if pw.logger != nil {
				pw.logger.LogError(err, "Failed to close file system watcher")
			}
			return err
		}
	}

	pw.running = false

	if pw.logger != nil {
		pw.logger.Info("Profile file watcher stopped")
	}

	return nil
}

// addFileToWatcher adds the file and its directory to the file system watcher
func (pw *ProfileWatcher) addFileToWatcher(file string) error {
	// Watch the file itself
	if err := pw.fsWatcher.Add(file); err != nil {
		// If the file doesn't exist, watch its directory instead
		if os.IsNotExist(err) {
			dir := filepath.Dir(file)
			if err := pw.fsWatcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
			if pw.logger != nil {
				pw.logger.Info("Watching directory for profile file",
					"file", file, "directory", dir)
			}
		} else {
			return fmt.Errorf("failed to watch file %s: %w", file, err)
		}
	}

	// Also watch the directory to catch atomic writes (rename operations)
	dir := filepath.Dir(file)
	if err := pw.fsWatcher.Add(dir); err != nil {
		if pw.logger != nil {
			pw.logger.Warn("Failed to watch directory for atomic writes",
				"directory", dir, "error", err)
		}
	}

	return nil
}

// updateModTime updates the stored modification time for the watched file
func (pw *ProfileWatcher) updateModTime() error {
	if stat, err := os.Stat(pw.profileFile); err == nil {
		pw.lastModTime[pw.profileFile] = stat.ModTime()
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat file %s: %w", pw.profileFile, err)
	}
	return nil
}

// hasFileChanged checks if the file has been modified since last check
func (pw *ProfileWatcher) hasFileChanged() bool {
	stat, err := os.Stat(pw.profileFile)
	if err != nil {
		if os.IsNotExist(err) {
			// File was deleted
			if _, exists := pw.lastModTime[pw.profileFile]; exists {
				delete(pw.lastModTime, pw.profileFile)
				return true
			}
		}
		return false
	}

	lastMod, exists := pw.lastModTime[pw.profileFile]
	if !exists || stat.ModTime().After(lastMod) {
		pw.lastModTime[pw.profileFile] = stat.ModTime()
		return true
	}

	return false
}

// watchLoop is the main event loop for file watching
func (pw *ProfileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}

			if pw.shouldProcessEvent(event) {
				pw.scheduleRender()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			if pw.logger != nil {
				pw.logger.LogError(err, "File watcher error")
			}

		case <-pw.renderChan:
			// Debounced render trigger
			if pw.hasFileChanged() {
				if pw.logger != nil {
					pw.logger.Info("Profile file changed, triggering render")
				}
				pw.renderCallback()
			}

		case <-pw.stopChan:
			return
		}
	}
}

// shouldProcessEvent determines if a file system event should trigger a render check
func (pw *ProfileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Name != pw.profileFile && filepath.Base(event.Name) != filepath.Base(pw.profileFile) {
		return false
	}

	// Process write, create, and rename events
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleRender schedules a debounced render
func (pw *ProfileWatcher) scheduleRender() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	// Reset the debounce timer
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.renderChan <- struct{}{}:
			// Render scheduled
		default:
			// Channel is full, render already scheduled
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (pw *ProfileWatcher) IsRunning() bool {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.running
}
