package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubbedLauncher(name string, startErr error) *demoLauncher {
	l := newDemoLauncher(name, "/usr/bin/true", nil, 0)
	l.start = func(cmd *exec.Cmd) error { return startErr }
	return l
}

func TestLaunchAssignsUniqueIDs(t *testing.T) {
	l := stubbedLauncher("Test Demo", nil)

	first, err := l.launch()
	require.NoError(t, err)
	second, err := l.launch()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestLaunchCooldown(t *testing.T) {
	l := stubbedLauncher("Test Demo", nil)
	l.cooldown = time.Minute

	_, err := l.launch()
	require.NoError(t, err)

	_, err = l.launch()
	assert.Equal(t, errLaunchCooldown, err)
}

func TestLaunchStartFailure(t *testing.T) {
	l := stubbedLauncher("Test Demo", fmt.Errorf("exec format error"))

	id, err := l.launch()
	assert.Error(t, err)
	assert.Empty(t, id)
}

func TestLaunchHandlerSuccess(t *testing.T) {
	r := gin.New()
	r.POST("/api/launch-test", launchHandler(stubbedLauncher("Test Demo", nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/launch-test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp LaunchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.LaunchID)
}

func TestLaunchHandlerStartError(t *testing.T) {
	r := gin.New()
	r.POST("/api/launch-test", launchHandler(stubbedLauncher("Test Demo", fmt.Errorf("no such file"))))

	req := httptest.NewRequest(http.MethodPost, "/api/launch-test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp LaunchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestLaunchHandlerCooldown(t *testing.T) {
	l := stubbedLauncher("Test Demo", nil)
	l.cooldown = time.Minute

	r := gin.New()
	r.POST("/api/launch-test", launchHandler(l))

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/launch-test", nil))
	require.Equal(t, http.StatusAccepted, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/launch-test", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRecordLaunchWritesAuditRow(t *testing.T) {
	recordLaunch("Audit Demo", "launch-123", hashIP("9.9.9.9"))

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM launches WHERE launch_id = ?`, "launch-123").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
