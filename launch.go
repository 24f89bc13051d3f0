package main

import (
	"fmt"
	"net/http"
	"os/exec"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LaunchResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	LaunchID string `json:"launch_id,omitempty"`
}

// demoLauncher spawns a host-local demo application. Launches are
// fire-and-forget: the process is started, reaped in the background, and
// never tracked beyond the audit record.
type demoLauncher struct {
	name     string
	bin      string
	args     []string
	cooldown time.Duration

	mu         sync.Mutex
	lastLaunch time.Time

	// start is swappable in tests so no real process is spawned.
	start func(cmd *exec.Cmd) error
}

var errLaunchCooldown = fmt.Errorf("demo was launched moments ago")

func newDemoLauncher(name, bin string, args []string, cooldown time.Duration) *demoLauncher {
	return &demoLauncher{
		name:     name,
		bin:      bin,
		args:     args,
		cooldown: cooldown,
		start:    func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

func (l *demoLauncher) launch() (string, error) {
	l.mu.Lock()
	if l.cooldown > 0 && time.Since(l.lastLaunch) < l.cooldown {
		l.mu.Unlock()
		return "", errLaunchCooldown
	}
	l.lastLaunch = time.Now()
	l.mu.Unlock()

	launchID := uuid.NewString()
	cmd := exec.Command(l.bin, l.args...)

	if err := l.start(cmd); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", l.name, err)
	}

	// Reap the process so it doesn't linger as a zombie. The exit status is
	// logged but otherwise ignored.
	go func() {
		if cmd.Process == nil {
			return
		}
		if err := cmd.Wait(); err != nil {
			logrus.WithFields(logrus.Fields{
				"demo":     l.name,
				"launchId": launchID,
			}).WithError(err).Info("Demo process exited with error")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"demo":     l.name,
		"launchId": launchID,
		"bin":      l.bin,
	}).Info("Demo application launched")

	return launchID, nil
}

func launchHandler(l *demoLauncher) gin.HandlerFunc {
	return func(c *gin.Context) {
		launchID, err := l.launch()
		if err == errLaunchCooldown {
			c.JSON(http.StatusTooManyRequests, LaunchResponse{
				Success: false,
				Message: fmt.Sprintf("%s was just launched, give it a moment.", l.name),
			})
			return
		}
		if err != nil {
			logrus.WithField("demo", l.name).WithError(err).Error("Demo launch failed")
			c.JSON(http.StatusInternalServerError, LaunchResponse{
				Success: false,
				Message: fmt.Sprintf("Could not launch %s. Please try again later.", l.name),
			})
			return
		}

		// Record the launch in the background, like visitor tracking.
		go recordLaunch(l.name, launchID, hashIP(c.ClientIP()))

		c.JSON(http.StatusAccepted, LaunchResponse{
			Success:  true,
			Message:  fmt.Sprintf("%s is starting.", l.name),
			LaunchID: launchID,
		})
	}
}

func recordLaunch(demo, launchID, hashedIP string) {
	_, err := db.Exec(`
		INSERT INTO launches (launch_id, demo, hashed_ip, timestamp)
		VALUES (?, ?, ?, ?)
	`, launchID, demo, hashedIP, time.Now())

	if err != nil {
		logrus.WithError(err).Error("Error recording launch")
	}
}
