package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))
}

func TestHTTP_EndToEnd_ReportCommentModerate(t *testing.T) {
	ts := newServer(t)

	reporterID := "reporter-1"
	neighborID := "neighbor-1"
	adminID := "admin-1"

	// 1) Reporte de mascota perdida
	petID := createPet(t, ts.URL, reporterID, map[string]any{
		"status":        "lost",
		"species":       "dog",
		"breed":         "mestizo",
		"color":         "marrón",
		"name":          "Firulais",
		"lat":           -12.1211,
		"lng":           -77.0297,
		"district":      "Miraflores",
		"contact_phone": "987654321",
	})

	// 2) Lectura pública, sin usuario
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, "", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets?status=lost&district=Miraflores", "", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))
		var page struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(body, &page))
		assert.Equal(t, 1, page.Total)
	}

	// 3) Un vecino comenta un avistamiento
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/comments", neighborID, "", map[string]any{
			"body":        "Lo vi cerca del parque Kennedy",
			"is_sighting": true,
			"lat":         -12.1219,
			"lng":         -77.0302,
		})
		require.Equal(t, http.StatusCreated, st, string(body))
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/comments", "", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))
	}

	// 4) Ambos sumaron puntos
	assert.Positive(t, pointsOf(t, ts.URL, reporterID))
	assert.Positive(t, pointsOf(t, ts.URL, neighborID))

	// 5) Un tercero no puede editar el reporte
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/pets/"+petID, neighborID, "", map[string]any{"name": "Otro"})
		assert.Equal(t, http.StatusForbidden, st)
	}

	// 6) El vecino denuncia el reporte; sin rol admin no ve la cola
	reportID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/reports", neighborID, "", map[string]any{
			"target_type": "pet",
			"target_id":   petID,
			"reason":      "fraud",
		})
		require.Equal(t, http.StatusCreated, st, string(body))
		reportID = idOf(t, body)
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/admin/reports", neighborID, "", nil)
		assert.Equal(t, http.StatusForbidden, st)
	}

	// 7) Admin resuelve quitando el contenido
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/reports/"+reportID+"/resolve", adminID, "admin", map[string]any{
			"resolution":     "aviso falso",
			"remove_content": true,
		})
		require.Equal(t, http.StatusOK, st, string(body))
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, "", "", nil)
		assert.Equal(t, http.StatusNotFound, st)
	}

	// 8) La acción quedó en la bitácora y el panel responde
	{
		st, body := doReq(t, ts.URL, "GET", "/admin/audit", adminID, "admin", nil)
		require.Equal(t, http.StatusOK, st, string(body))
		assert.Contains(t, string(body), "report.resolve")
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/admin/dashboard", adminID, "admin", nil)
		require.Equal(t, http.StatusOK, st, string(body))
		var d struct {
			PendingReports int `json:"pending_reports"`
		}
		require.NoError(t, json.Unmarshal(body, &d))
		assert.Equal(t, 0, d.PendingReports)
	}
}

func TestHTTP_BannedUserCannotPost(t *testing.T) {
	ts := newServer(t)

	// El perfil se crea en el primer GET /me/profile.
	{
		st, body := doReq(t, ts.URL, "GET", "/me/profile", "troll-1", "", nil)
		require.Equal(t, http.StatusOK, st, string(body))
	}
	{
		st, body := doReq(t, ts.URL, "PATCH", "/admin/users/troll-1/ban", "admin-1", "admin", map[string]any{
			"banned": true,
			"reason": "spam",
		})
		require.Equal(t, http.StatusOK, st, string(body))
	}

	st, _ := doReq(t, ts.URL, "POST", "/pets", "troll-1", "", map[string]any{
		"status":        "found",
		"species":       "cat",
		"lat":           -12.05,
		"lng":           -77.04,
		"contact_phone": "912345678",
	})
	assert.Equal(t, http.StatusForbidden, st)
}

func TestHTTP_OptionalFeaturesDisabled(t *testing.T) {
	ts := newServer(t)

	cases := []struct {
		method, path string
		body         any
	}{
		{"GET", "/matching/search?q=perro+marron", nil},
		{"GET", "/geo/search?q=Miraflores", nil},
		{"POST", "/uploads/presign", map[string]any{"content_type": "image/jpeg", "kind": "pet"}},
	}
	for _, tc := range cases {
		st, body := doReq(t, ts.URL, tc.method, tc.path, "user-1", "", tc.body)
		assert.Equal(t, http.StatusServiceUnavailable, st, "%s %s: %s", tc.method, tc.path, body)
	}
}

func TestHTTP_RequiresUser(t *testing.T) {
	ts := newServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/pets", "", "", map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusUnauthorized, st)

	st, _ = doReq(t, ts.URL, "GET", "/me/points", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, st)
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}
	return idOf(t, body)
}

func pointsOf(t *testing.T, baseURL, userID string) int {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/me/points", userID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 my points, got %d body=%s", st, string(body))
	}
	var resp struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Total
}

func idOf(t *testing.T, body []byte) string {
	t.Helper()

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if debugRole != "" {
		req.Header.Set("X-Debug-Role", debugRole)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
