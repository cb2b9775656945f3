package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/error/code"
	"community-console-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	password string
	token    string
	me       map[string]interface{}
}

// fakeCommunityAPI 模拟上游社区接口，两种响应包装都会出现
type fakeCommunityAPI struct {
	mu           sync.Mutex
	accounts     map[string]account
	residents    map[string]map[string]interface{}
	nextID       int
	failAbsences atomic.Bool
	patches      []string
	hits         map[string]int
}

func newFakeCommunityAPI() *fakeCommunityAPI {
	return &fakeCommunityAPI{
		accounts: map[string]account{
			"admin": {password: "pw", token: "tok-admin", me: map[string]interface{}{"id": 1, "username": "admin", "role": "admin"}},
			"dan":   {password: "pw", token: "tok-dan", me: map[string]interface{}{"id": 2, "username": "dan", "role": "resident", "nhanKhauId": nil}},
			"head":  {password: "pw", token: "tok-head", me: map[string]interface{}{"id": 3, "username": "head", "role": "household_head", "nhanKhauId": 5}},
		},
		residents: map[string]map[string]interface{}{
			"5": {"id": 5, "hoTen": "Tran Van Chu", "gioiTinh": "Nam", "ngaySinh": "1970-02-03", "hoKhauId": 9},
			"6": {"id": "6", "hoTen": "Le Thi Hoa", "gioiTinh": "Nữ", "ngaySinh": "2010-05-06", "hoKhauId": 9},
			"7": {"id": 7, "hoTen": "Pham Khac", "gioiTinh": "Khac", "ngaySinh": nil},
		},
		nextID: 100,
		hits:   map[string]int{},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeCommunityAPI) tokenAccount(r *http.Request) (account, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	for _, a := range f.accounts {
		if a.token == token {
			return a, true
		}
	}
	return account{}, false
}

func (f *fakeCommunityAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.Method+" "+r.URL.Path]++

	if r.URL.Path == "/auth/login" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		a, ok := f.accounts[body["username"]]
		if !ok || a.password != body["password"] {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Sai tai khoan hoac mat khau"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]string{"accessToken": a.token}})
		return
	}

	a, ok := f.tokenAccount(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
		return
	}

	switch {
	case r.URL.Path == "/me":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": a.me})
	case r.URL.Path == "/nhankhau" && r.Method == http.MethodGet:
		list := make([]interface{}, 0, len(f.residents))
		for _, res := range f.residents {
			list = append(list, res)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"data": list}})
	case r.URL.Path == "/nhankhau" && r.Method == http.MethodPost:
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["cccd"] == "duplicate" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "CCCD da ton tai"})
			return
		}
		f.nextID++
		body["id"] = f.nextID
		f.residents[jsonID(f.nextID)] = body
		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": body})
	case strings.HasPrefix(r.URL.Path, "/nhankhau/"):
		res, ok := f.residents[strings.TrimPrefix(r.URL.Path, "/nhankhau/")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Khong tim thay nhan khau"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": res})
	case r.URL.Path == "/hokhau":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{
			map[string]interface{}{"id": 9, "soHoKhau": "HK-009", "chuHoId": 5},
		}})
	case r.URL.Path == "/hokhau/9":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{
			"data": map[string]interface{}{"id": 9, "soHoKhau": "HK-009", "chuHoId": 5, "diaChi": "So 1 Ta Quang Buu"},
		}})
	case r.URL.Path == "/tamtru":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{
			map[string]interface{}{"id": 1, "nhanKhauId": 7, "trangThai": "pending"},
			map[string]interface{}{"id": 2, "nhanKhauId": 6, "trangThai": "approved"},
		}})
	case r.URL.Path == "/tamvang":
		if f.failAbsences.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	case r.URL.Path == "/khoanthu":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{
			map[string]interface{}{"id": 1, "tenKhoanThu": "Phi ve sinh", "loai": "mandatory", "donGia": 6000},
		}})
	case r.URL.Path == "/phieuthu":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{
			map[string]interface{}{"id": 1, "khoanThuId": 1, "hoKhauId": 9, "trangThai": "unpaid"},
		}})
	case strings.HasPrefix(r.URL.Path, "/users/") && r.Method == http.MethodPatch:
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.patches = append(f.patches, r.URL.Path)
		body["id"] = strings.TrimPrefix(r.URL.Path, "/users/")
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": body})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func jsonID(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

type testEnv struct {
	t        testing.TB
	upstream *fakeCommunityAPI
	router   *gin.Engine
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := newFakeCommunityAPI()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		EnvType:         "LOCAL",
		CORSAllowOrigin: "http://localhost:3000",
		RateLimitRPS:    1e6,
		RateLimitBurst:  1e6,
		UpstreamBaseURL: srv.URL,
		UpstreamTimeout: 5 * time.Second,
		JWTSecretKey:    "test-secret",
		SessionTTL:      time.Hour,
	}
	c := container.NewServiceContainer(nil, cfg, nil)
	reg := prometheus.NewRegistry()

	return &testEnv{t: t, upstream: upstream, router: NewRouter(c, cfg, reg, reg)}
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(method, path, token, body string) (*httptest.ResponseRecorder, apiResponse) {
	e.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (e *testEnv) signIn(username string) string {
	e.t.Helper()
	w, resp := e.do(http.MethodPost, "/api/auth/signin", "", `{"username":"`+username+`","password":"pw"}`)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(e.t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(e.t, data.Token)
	return data.Token
}

func TestPublicRoutes(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(http.MethodGet, "/api/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, resp.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mw := httptest.NewRecorder()
	env.router.ServeHTTP(mw, req)
	assert.Equal(t, http.StatusOK, mw.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(http.MethodGet, "/api/session", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, code.ErrSignInRequired, resp.Code)
	assert.JSONEq(t, `{"redirect":"/signin"}`, string(resp.Data))
}

func TestSignIn_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(http.MethodPost, "/api/auth/signin", "", `{"username":"admin","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, code.ErrUserPasswordIncorrect, resp.Code)
}

func TestSessionAndSignOut(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("admin")

	w, resp := env.do(http.MethodGet, "/api/session", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Identity struct {
			Role string `json:"role"`
		} `json:"identity"`
		Capabilities []string `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "admin", data.Identity.Role)
	assert.Contains(t, data.Capabilities, "report:export")
	assert.Contains(t, data.Capabilities, "feeSchedule:create")

	w, _ = env.do(http.MethodPost, "/api/auth/signout", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(http.MethodGet, "/api/session", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, code.ErrTokenInvalid, resp.Code)
}

func TestAdminReport_RoleGate(t *testing.T) {
	env := newTestEnv(t)
	residentToken := env.signIn("dan")

	w, resp := env.do(http.MethodGet, "/api/admin/report", residentToken, "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, code.ErrForbidden, resp.Code)
	var decision struct {
		State  string `json:"state"`
		Target string `json:"target"`
		Notice string `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &decision))
	assert.Equal(t, "REDIRECT", decision.State)
	assert.Equal(t, "/dashboard", decision.Target)
	assert.NotEmpty(t, decision.Notice)
}

func TestAdminReport(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("admin")

	w, resp := env.do(http.MethodGet, "/api/admin/report", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report struct {
		Stats struct {
			Gender struct {
				Male         int `json:"male"`
				Female       int `json:"female"`
				Unrecognized int `json:"unrecognized"`
			} `json:"gender_distribution"`
			Age struct {
				Denominator int `json:"denominator"`
			} `json:"age_distribution"`
			Totals struct {
				Residents  int `json:"residents"`
				Households int `json:"households"`
			} `json:"totals"`
		} `json:"stats"`
		Billing struct {
			TotalOutstanding   float64 `json:"total_outstanding"`
			HouseholdsWithDebt int     `json:"households_with_debt"`
		} `json:"billing"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Equal(t, 3, report.Stats.Totals.Residents)
	assert.Equal(t, 1, report.Stats.Totals.Households)
	assert.Equal(t, 1, report.Stats.Gender.Male)
	assert.Equal(t, 1, report.Stats.Gender.Female)
	assert.Equal(t, 1, report.Stats.Gender.Unrecognized)
	assert.Equal(t, 2, report.Stats.Age.Denominator)
	assert.Equal(t, 6000.0, report.Billing.TotalOutstanding)
	assert.Equal(t, 1, report.Billing.HouseholdsWithDebt)
}

func TestAdminReport_XLSX(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("admin")

	w, _ := env.do(http.MethodGet, "/api/admin/report?format=xlsx", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestDashboardStats_FailFast(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("dan")

	w, _ := env.do(http.MethodGet, "/api/dashboard/stats", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	env.upstream.failAbsences.Store(true)
	w, resp := env.do(http.MethodGet, "/api/dashboard/stats", token, "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, code.ErrAggregationFailed, resp.Code)
	assert.NotContains(t, string(resp.Data), "totals")
}

func TestProfileFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("dan")

	// 没有档案：页面被阻断
	w, resp := env.do(http.MethodGet, "/api/gate?route=/home", token, "")
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.Equal(t, code.ErrProfileRequired, resp.Code)
	var decision struct {
		State  string `json:"state"`
		Prompt struct {
			Dismissable bool `json:"dismissable"`
			Actions     []struct {
				Target string `json:"target"`
			} `json:"actions"`
		} `json:"prompt"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &decision))
	assert.Equal(t, "BLOCKED_PROMPT", decision.State)
	assert.False(t, decision.Prompt.Dismissable)
	require.Len(t, decision.Prompt.Actions, 1)
	assert.Equal(t, "/profile/setup", decision.Prompt.Actions[0].Target)

	w, _ = env.do(http.MethodGet, "/api/home", token, "")
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)

	// 校验失败：消息原样返回，提交内容带回
	w, resp = env.do(http.MethodPost, "/api/profile/setup", token, `{"hoTen":"Dan Nguyen","cccd":"duplicate"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrUpstreamValidation, resp.Code)
	assert.Equal(t, "CCCD da ton tai", resp.Message)
	assert.Contains(t, string(resp.Data), "Dan Nguyen")

	// 完善档案
	w, _ = env.do(http.MethodPost, "/api/profile/setup", token, `{"hoTen":"Dan Nguyen","gioiTinh":"Nam","ngaySinh":"1999-09-09"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"/users/2"}, env.upstream.patches)

	w, resp = env.do(http.MethodGet, "/api/home", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(resp.Data), "Dan Nguyen")

	w, resp = env.do(http.MethodPost, "/api/profile/setup", token, `{"hoTen":"Again"}`)
	assert.Equal(t, code.ErrProfileAlreadyLinked, resp.Code)
}

func TestHome_WithHousehold(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("head")

	w, resp := env.do(http.MethodGet, "/api/home", token, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var chain struct {
		Resident struct {
			FullName string `json:"hoTen"`
		} `json:"resident"`
		Household struct {
			Number string `json:"soHoKhau"`
		} `json:"household"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &chain))
	assert.Equal(t, "Tran Van Chu", chain.Resident.FullName)
	assert.Equal(t, "HK-009", chain.Household.Number)
}

func (f *fakeCommunityAPI) hitCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func TestHome_ResolvesProfileOnce(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("head")
	residentBefore := env.upstream.hitCount("GET /nhankhau/5")
	householdBefore := env.upstream.hitCount("GET /hokhau/9")

	w, _ := env.do(http.MethodGet, "/api/home", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 1, env.upstream.hitCount("GET /nhankhau/5")-residentBefore)
	assert.Equal(t, 1, env.upstream.hitCount("GET /hokhau/9")-householdBefore)
}

func TestResourceProxy_Capabilities(t *testing.T) {
	env := newTestEnv(t)
	residentToken := env.signIn("dan")
	adminToken := env.signIn("admin")

	w, resp := env.do(http.MethodGet, "/api/residents", residentToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var residents []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &residents))
	assert.Len(t, residents, 3)

	w, resp = env.do(http.MethodDelete, "/api/residents/5", residentToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, code.ErrForbidden, resp.Code)

	w, resp = env.do(http.MethodGet, "/api/residents/404", adminToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrUpstreamNotFound, resp.Code)
	assert.JSONEq(t, `{"retry":true}`, string(resp.Data))
}

func TestUserRoleChange(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.signIn("admin")
	residentToken := env.signIn("dan")

	w, _ := env.do(http.MethodPatch, "/api/users/2/role", residentToken, `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := env.do(http.MethodPatch, "/api/users/2/role", adminToken, `{"role":"superuser"}`)
	assert.Equal(t, code.ErrInvalidRole, resp.Code)

	w, _ = env.do(http.MethodPatch, "/api/users/2/role", adminToken, `{"role":"accountant"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(http.MethodPatch, "/api/users/1/status", adminToken, `{"status":"locked"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "admins cannot lock themselves")

	w, resp = env.do(http.MethodGet, "/api/operation-logs", adminToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, resp.Code)
}

func BenchmarkDashboardStats(b *testing.B) {
	env := newTestEnv(b)
	token := env.signIn("admin")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				b.Errorf("unexpected status %d", w.Code)
			}
		}
	})
}
