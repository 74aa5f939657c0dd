package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInFlow(t *testing.T) {
	app := newTestApp(t)

	delegate, _ := app.createUser(t, "jane@example.com", types.RoleDelegate)
	_, deskToken := app.createUser(t, "desk@example.com", types.RoleCheckinAdmin)

	mark := func(kind, status string) (int, envelope) {
		w, env := app.request(t, http.MethodPost, "/api/checkin", deskToken, map[string]interface{}{
			"userId": delegate.ID,
			"type":   kind,
			"status": status,
		})
		return w.Code, env
	}

	t.Run("conference check-in", func(t *testing.T) {
		code, env := mark("conference", "checked-in")
		require.Equal(t, http.StatusCreated, code, env.Message)
	})

	t.Run("accommodation check-in", func(t *testing.T) {
		code, _ := mark("accommodation", "checked-in")
		require.Equal(t, http.StatusCreated, code)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		code, env := mark("parking", "checked-in")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, env.Errors, "type")
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPost, "/api/checkin", deskToken, map[string]interface{}{
			"userId": 9999,
			"type":   "conference",
			"status": "checked-in",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("today counts by type", func(t *testing.T) {
		w, env := app.request(t, http.MethodGet, "/api/checkin/today", deskToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			ConferenceCount    int `json:"conferenceCount"`
			AccommodationCount int `json:"accommodationCount"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 1, data.ConferenceCount)
		assert.Equal(t, 1, data.AccommodationCount)
	})

	t.Run("log for one user", func(t *testing.T) {
		path := fmt.Sprintf("/api/checkin/user/%d", delegate.ID)
		w, env := app.request(t, http.MethodGet, path, deskToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			CheckIns []json.RawMessage `json:"checkIns"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Len(t, data.CheckIns, 2)
	})

	t.Run("yesterday's marks stay out of today", func(t *testing.T) {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// Just before local midnight: belongs to yesterday's summary.
		stale := models.CheckIn{
			UserID:     delegate.ID,
			Type:       types.CheckInConference,
			Status:     types.CheckedIn,
			MarkedByID: delegate.ID,
			MarkedAt:   midnight.Add(-15 * time.Minute),
		}
		require.NoError(t, app.conn.Create(&stale).Error)

		w, env := app.request(t, http.MethodGet, "/api/checkin/today", deskToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			ConferenceCount int `json:"conferenceCount"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 1, data.ConferenceCount)
	})

	t.Run("delegate cannot mark", func(t *testing.T) {
		_, delegateToken := app.createUser(t, "other@example.com", types.RoleDelegate)
		w, _ := app.request(t, http.MethodPost, "/api/checkin", delegateToken, map[string]interface{}{
			"userId": delegate.ID,
			"type":   "conference",
			"status": "checked-in",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
