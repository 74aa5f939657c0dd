package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registrationForm() map[string]string {
	return map[string]string{
		"gender":               "Female",
		"institution":          "Test University",
		"isInternal":           "false",
		"needsAccommodation":   "false",
		"preference1Committee": "UNSC",
		"preference1Portfolio": "USA",
		"preference2Committee": "UNGA",
		"preference2Portfolio": "UK",
		"preference3Committee": "WHO",
		"preference3Portfolio": "Canada",
	}
}

func submitRegistration(t *testing.T, app *testApp, token string) envelope {
	t.Helper()

	body := newMultipart(t, registrationForm(), map[string]filePart{
		"idDocument": pdfPart("id.pdf"),
	})

	w, env := app.request(t, http.MethodPost, "/api/registrations", token, body)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	return env
}

func TestRegistrationSubmit(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "jane@example.com", types.RoleDelegate)

	env := submitRegistration(t, app, token)

	var data struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
		IDDocument    string `json:"idDocument"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, types.RegistrationPending, data.Status)
	assert.Equal(t, types.PaymentPending, data.PaymentStatus)
	assert.NotEmpty(t, data.IDDocument)

	t.Run("second submission conflicts", func(t *testing.T) {
		body := newMultipart(t, registrationForm(), map[string]filePart{
			"idDocument": pdfPart("id.pdf"),
		})
		w, _ := app.request(t, http.MethodPost, "/api/registrations", token, body)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("mine returns the submission", func(t *testing.T) {
		w, env := app.request(t, http.MethodGet, "/api/registrations/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var mine struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &mine))
		assert.Equal(t, types.RegistrationPending, mine.Status)
	})
}

func TestRegistrationSubmitValidation(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "jane@example.com", types.RoleDelegate)

	t.Run("missing file and fields", func(t *testing.T) {
		form := registrationForm()
		delete(form, "preference2Portfolio")
		form["gender"] = "unknown"

		body := newMultipart(t, form, nil)

		w, env := app.request(t, http.MethodPost, "/api/registrations", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Errors, "idDocument")
		assert.Contains(t, env.Errors, "gender")
		assert.Contains(t, env.Errors, "preference2Portfolio")
	})

	t.Run("disallowed file type", func(t *testing.T) {
		body := newMultipart(t, registrationForm(), map[string]filePart{
			"idDocument": {name: "id.zip", mime: "application/zip", content: []byte("PK")},
		})

		w, env := app.request(t, http.MethodPost, "/api/registrations", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Errors, "idDocument")
	})

	t.Run("admin cannot submit", func(t *testing.T) {
		_, adminToken := app.createUser(t, "admin@example.com", types.RoleSuperAdmin)

		body := newMultipart(t, registrationForm(), map[string]filePart{
			"idDocument": pdfPart("id.pdf"),
		})

		w, _ := app.request(t, http.MethodPost, "/api/registrations", adminToken, body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRegistrationReviewFlow(t *testing.T) {
	app := newTestApp(t)

	delegate, delegateToken := app.createUser(t, "jane@example.com", types.RoleDelegate)
	_, adminToken := app.createUser(t, "review@example.com", types.RoleRegistrationAdmin)

	submitRegistration(t, app, delegateToken)

	var registration models.Registration
	require.NoError(t, app.conn.Where("user_id = ?", delegate.ID).First(&registration).Error)

	statusPath := fmt.Sprintf("/api/registrations/%d/status", registration.ID)

	t.Run("delegate cannot review", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPatch, statusPath, delegateToken, map[string]string{"status": "shortlisted"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("pending cannot jump to confirmed", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPatch, statusPath, adminToken, map[string]string{"status": "confirmed"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("shortlist then confirm", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPatch, statusPath, adminToken, map[string]string{"status": "shortlisted"})
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = app.request(t, http.MethodPatch, statusPath, adminToken, map[string]string{"status": "confirmed"})
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Registration
		require.NoError(t, app.conn.First(&got, registration.ID).Error)
		assert.Equal(t, types.RegistrationConfirmed, got.Status)
	})

	t.Run("audit trail records the prior status", func(t *testing.T) {
		var entry models.ActivityLog
		require.NoError(t, app.conn.Where("action = ?", "registration.update_status").
			Order("id ASC").First(&entry).Error)

		var metadata map[string]string
		require.NoError(t, json.Unmarshal(entry.Metadata, &metadata))
		assert.Equal(t, types.RegistrationPending, metadata["from"])
		assert.Equal(t, types.RegistrationShortlisted, metadata["to"])
	})

	t.Run("confirmed is terminal", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPatch, statusPath, adminToken, map[string]string{"status": "rejected"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("admin list includes the registration", func(t *testing.T) {
		w, env := app.request(t, http.MethodGet, "/api/registrations?status=confirmed", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(1), data.Total)
	})
}

func TestRegistrationAllocation(t *testing.T) {
	app := newTestApp(t)

	delegateA, tokenA := app.createUser(t, "a@example.com", types.RoleDelegate)
	delegateB, tokenB := app.createUser(t, "b@example.com", types.RoleDelegate)
	affairs, affairsToken := app.createUser(t, "affairs@example.com", types.RoleDelegateAffairs)

	submitRegistration(t, app, tokenA)
	submitRegistration(t, app, tokenB)

	committee := models.Committee{Name: "UNSC", Agenda: "Test agenda", CreatedByID: affairs.ID}
	require.NoError(t, app.conn.Create(&committee).Error)

	portfolio := models.Portfolio{CommitteeID: committee.ID, Name: "USA"}
	require.NoError(t, app.conn.Create(&portfolio).Error)

	other := models.Portfolio{CommitteeID: committee.ID, Name: "UK"}
	require.NoError(t, app.conn.Create(&other).Error)

	var regA, regB models.Registration
	require.NoError(t, app.conn.Where("user_id = ?", delegateA.ID).First(&regA).Error)
	require.NoError(t, app.conn.Where("user_id = ?", delegateB.ID).First(&regB).Error)

	allocate := func(regID uint, portfolioID uint) (int, envelope) {
		w, env := app.request(t, http.MethodPatch,
			fmt.Sprintf("/api/registrations/%d/allocation", regID), affairsToken,
			map[string]uint{"committeeId": committee.ID, "portfolioId": portfolioID})
		return w.Code, env
	}

	registeredCount := func() int {
		var got models.Committee
		require.NoError(t, app.conn.First(&got, committee.ID).Error)
		return got.RegisteredCount
	}

	t.Run("first allocation succeeds", func(t *testing.T) {
		code, env := allocate(regA.ID, portfolio.ID)
		require.Equal(t, http.StatusOK, code, env.Message)

		var got models.Portfolio
		require.NoError(t, app.conn.First(&got, portfolio.ID).Error)
		assert.True(t, got.Allocated)
		assert.Equal(t, 1, registeredCount())
	})

	t.Run("taken portfolio conflicts", func(t *testing.T) {
		code, _ := allocate(regB.ID, portfolio.ID)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, 1, registeredCount())
	})

	t.Run("re-allocation frees the old portfolio", func(t *testing.T) {
		code, env := allocate(regA.ID, other.ID)
		require.Equal(t, http.StatusOK, code, env.Message)

		var freed models.Portfolio
		require.NoError(t, app.conn.First(&freed, portfolio.ID).Error)
		assert.False(t, freed.Allocated)

		// Same-committee move; the counter must not double-count.
		assert.Equal(t, 1, registeredCount())

		code, _ = allocate(regB.ID, portfolio.ID)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, registeredCount())
	})

	t.Run("delete frees the portfolio and the committee seat", func(t *testing.T) {
		_, superToken := app.createUser(t, "super@example.com", types.RoleSuperAdmin)

		w, _ := app.request(t, http.MethodDelete,
			fmt.Sprintf("/api/registrations/%d", regA.ID), superToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var freed models.Portfolio
		require.NoError(t, app.conn.First(&freed, other.ID).Error)
		assert.False(t, freed.Allocated)
		assert.Equal(t, 1, registeredCount())
	})
}

func TestRegistrationAllocationCapacity(t *testing.T) {
	app := newTestApp(t)

	delegateA, tokenA := app.createUser(t, "a@example.com", types.RoleDelegate)
	delegateB, tokenB := app.createUser(t, "b@example.com", types.RoleDelegate)
	affairs, affairsToken := app.createUser(t, "affairs@example.com", types.RoleDelegateAffairs)

	submitRegistration(t, app, tokenA)
	submitRegistration(t, app, tokenB)

	committee := models.Committee{Name: "UNSC", Capacity: 1, CreatedByID: affairs.ID}
	require.NoError(t, app.conn.Create(&committee).Error)

	first := models.Portfolio{CommitteeID: committee.ID, Name: "USA"}
	require.NoError(t, app.conn.Create(&first).Error)

	second := models.Portfolio{CommitteeID: committee.ID, Name: "UK"}
	require.NoError(t, app.conn.Create(&second).Error)

	var regA, regB models.Registration
	require.NoError(t, app.conn.Where("user_id = ?", delegateA.ID).First(&regA).Error)
	require.NoError(t, app.conn.Where("user_id = ?", delegateB.ID).First(&regB).Error)

	w, env := app.request(t, http.MethodPatch,
		fmt.Sprintf("/api/registrations/%d/allocation", regA.ID), affairsToken,
		map[string]uint{"committeeId": committee.ID, "portfolioId": first.ID})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	// The committee is a single seat; a free portfolio does not help.
	w, _ = app.request(t, http.MethodPatch,
		fmt.Sprintf("/api/registrations/%d/allocation", regB.ID), affairsToken,
		map[string]uint{"committeeId": committee.ID, "portfolioId": second.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}
