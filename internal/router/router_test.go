package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"moodmeal/config"
	"moodmeal/internal/model"
	"moodmeal/internal/recommend"
	"moodmeal/internal/repository"
	"moodmeal/internal/service"
	dbPkg "moodmeal/pkg/db"
	"moodmeal/pkg/jwt"
	"moodmeal/pkg/logger"
	"moodmeal/pkg/ratelimit"
	"moodmeal/pkg/redis"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var routerTestOnce sync.Once

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T, perMinute, burst int) *testServer {
	t.Helper()
	routerTestOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		logger.ReplaceGlobal(zap.NewNop())
	})

	cfg := &config.Config{
		JWT:       config.JWTConfig{Secret: "router-test", Issuer: "moodmeal-test", ExpireTime: time.Hour},
		Recommend: config.RecommendConfig{DefaultLimit: 10, MaxLimit: 50, MoodHistorySize: 30, MaxCandidates: 5000},
		CORS:      config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}, MaxAge: time.Hour},
	}

	orm, err := dbPkg.InitDB(config.DatabaseConfig{
		Driver:   dbPkg.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "moodmeal.db"),
		MaxOpen:  1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbPkg.CloseDB() })
	require.NoError(t, dbPkg.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.FriendRequest{},
		&model.MoodEntry{},
		&model.Preferences{},
	))

	userRepo := repository.NewUserRepository(orm)
	friendRepo := repository.NewFriendRepository(orm)
	moodRepo := repository.NewMoodRepository(orm)
	prefRepo := repository.NewPreferencesRepository(orm)
	presence := redis.NewPresence(nil)
	jwtSvc := jwt.NewJWTService(cfg.JWT)

	engine := recommend.NewEngine(repository.NewRecommendSource(moodRepo, prefRepo, friendRepo), recommend.Options{
		DefaultLimit:    cfg.Recommend.DefaultLimit,
		MoodHistorySize: cfg.Recommend.MoodHistorySize,
		MaxCandidates:   cfg.Recommend.MaxCandidates,
	})

	r := New(Deps{
		Config:          cfg,
		JWT:             jwtSvc,
		Presence:        presence,
		Limiter:         ratelimit.New(perMinute, burst),
		Users:           service.NewUserService(userRepo, jwtSvc, presence),
		Friends:         service.NewFriendService(userRepo, friendRepo, presence),
		Moods:           service.NewMoodService(moodRepo),
		Preferences:     service.NewPreferenceService(prefRepo),
		Recommendations: service.NewRecommendationService(engine, userRepo, cfg.Recommend.MaxLimit),
	})
	return &testServer{t: t, engine: r}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// ok 断言成功并把 data 解码到 out
func (s *testServer) ok(method, path, token string, body, out interface{}) {
	s.t.Helper()
	_, env := s.do(method, path, token, body)
	require.Equal(s.t, response.CodeSuccess, env.Code, env.Message)
	if out != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
}

type authUser struct {
	ID    uint
	Token string
}

func (s *testServer) register(name string) authUser {
	s.t.Helper()
	var res struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	s.ok(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": "secret123",
		"school":   "State University",
	}, &res)
	require.NotEmpty(s.t, res.AccessToken)
	assert.Equal(s.t, int64(3600), res.ExpiresIn)
	return authUser{ID: res.User.ID, Token: res.AccessToken}
}

func (s *testServer) logMoods(u authUser, scores ...int) {
	s.t.Helper()
	for _, score := range scores {
		s.ok(http.MethodPost, "/api/v1/moods", u.Token, gin.H{"mood_score": score}, nil)
	}
}

type recommendationList struct {
	Recommendations []struct {
		ID              uint     `json:"id"`
		Username        string   `json:"username"`
		SimilarityScore float64  `json:"similarity_score"`
		SharedCuisines  []string `json:"shared_cuisines"`
		AvgMoodScore    *float64 `json:"avg_mood_score"`
	} `json:"recommendations"`
	Count     int  `json:"count"`
	ColdStart bool `json:"cold_start"`
}

func TestHealthAndAuthRequired(t *testing.T) {
	s := newTestServer(t, 60, 10)

	var health map[string]string
	s.ok(http.MethodGet, "/health", "", nil, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "disabled", health["redis"])

	w, env := s.do(http.MethodGet, "/api/v1/moods", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeUnauthorized, env.Code)

	_, env = s.do(http.MethodGet, "/api/v1/moods", "not-a-token", nil)
	assert.Equal(t, response.CodeUnauthorized, env.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	s := newTestServer(t, 60, 10)
	alice := s.register("alice")

	_, env := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "alice", "password": "secret123"})
	assert.Equal(t, response.CodeConflict, env.Code)

	_, env = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"usernameOrEmail": "alice@example.com", "password": "bad-password"})
	assert.Equal(t, response.CodeUnauthorized, env.Code)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	s.ok(http.MethodPost, "/api/v1/auth/login", "", gin.H{"usernameOrEmail": "alice", "password": "secret123"}, &login)
	require.NotEmpty(t, login.AccessToken)

	var me struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		School   string `json:"school"`
	}
	s.ok(http.MethodGet, "/api/v1/users/me", login.AccessToken, nil, &me)
	assert.Equal(t, alice.ID, me.ID)
	assert.Equal(t, "State University", me.School)

	var online struct {
		Online bool `json:"online"`
	}
	s.ok(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/online", alice.ID), alice.Token, nil, &online)
	assert.False(t, online.Online)

	s.ok(http.MethodPost, "/api/v1/users/logout", alice.Token, nil, nil)
}

func TestRecommendationEndpoint(t *testing.T) {
	s := newTestServer(t, 600, 100)
	alice := s.register("alice")
	bob := s.register("bob")
	carol := s.register("carol")

	s.logMoods(alice, 75, 75)
	s.logMoods(bob, 70, 80)
	s.ok(http.MethodPut, "/api/v1/preferences", alice.Token, gin.H{"cuisines": []string{"Italian", "Japanese"}}, nil)
	s.ok(http.MethodPut, "/api/v1/preferences", bob.Token, gin.H{"cuisines": []string{"japanese", "italian"}}, nil)

	var recs recommendationList
	s.ok(http.MethodGet, "/api/v1/friends/recommendations", alice.Token, nil, &recs)
	assert.False(t, recs.ColdStart)
	require.Equal(t, 1, recs.Count)
	r := recs.Recommendations[0]
	assert.Equal(t, bob.ID, r.ID)
	assert.Equal(t, "bob", r.Username)
	assert.Equal(t, 60.0, r.SimilarityScore)
	assert.Equal(t, []string{"Italian", "Japanese"}, r.SharedCuisines)
	require.NotNil(t, r.AvgMoodScore)
	assert.Equal(t, 75.0, *r.AvgMoodScore)

	// 无任何数据的用户走兜底路径
	s.ok(http.MethodGet, "/api/v1/friends/recommendations?limit=abc", carol.Token, nil, &recs)
	assert.True(t, recs.ColdStart)
	require.Equal(t, 2, recs.Count)
	assert.Equal(t, alice.ID, recs.Recommendations[0].ID)
	assert.Equal(t, bob.ID, recs.Recommendations[1].ID)

	s.ok(http.MethodGet, "/api/v1/friends/recommendations?limit=1", carol.Token, nil, &recs)
	assert.Equal(t, 1, recs.Count)

	// 待处理请求与好友都不再出现在推荐中
	var sent struct {
		ID uint `json:"id"`
	}
	s.ok(http.MethodPost, "/api/v1/friends/requests", alice.Token, gin.H{"receiver_id": bob.ID}, &sent)
	s.ok(http.MethodGet, "/api/v1/friends/recommendations", alice.Token, nil, &recs)
	assert.Equal(t, 0, recs.Count)
	s.ok(http.MethodGet, "/api/v1/friends/recommendations", bob.Token, nil, &recs)
	assert.Equal(t, 0, recs.Count)

	s.ok(http.MethodPut, fmt.Sprintf("/api/v1/friends/requests/%d", sent.ID), bob.Token, gin.H{"action": "accept"}, nil)
	s.ok(http.MethodGet, "/api/v1/friends/recommendations", alice.Token, nil, &recs)
	assert.Equal(t, 0, recs.Count)

	var friends struct {
		Friends []struct {
			ID uint `json:"id"`
		} `json:"friends"`
		Count int `json:"count"`
	}
	s.ok(http.MethodGet, "/api/v1/friends", alice.Token, nil, &friends)
	require.Equal(t, 1, friends.Count)
	assert.Equal(t, bob.ID, friends.Friends[0].ID)

	s.ok(http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", bob.ID), alice.Token, nil, nil)
	s.ok(http.MethodGet, "/api/v1/friends/recommendations", alice.Token, nil, &recs)
	assert.Equal(t, 1, recs.Count)
}

func TestRecommendationRateLimited(t *testing.T) {
	s := newTestServer(t, 1, 1)
	alice := s.register("alice")

	s.ok(http.MethodGet, "/api/v1/friends/recommendations", alice.Token, nil, nil)

	w, env := s.do(http.MethodGet, "/api/v1/friends/recommendations", alice.Token, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.CodeTooManyRequests, env.Code)

	// 其他用户不受影响
	bob := s.register("bob")
	s.ok(http.MethodGet, "/api/v1/friends/recommendations", bob.Token, nil, nil)
}

func TestFriendRequestErrors(t *testing.T) {
	s := newTestServer(t, 60, 10)
	alice := s.register("alice")
	bob := s.register("bob")

	_, env := s.do(http.MethodPost, "/api/v1/friends/requests", alice.Token, gin.H{"receiver_id": alice.ID})
	assert.Equal(t, response.CodeBadRequest, env.Code)

	_, env = s.do(http.MethodPost, "/api/v1/friends/requests", alice.Token, gin.H{"receiver_id": 999})
	assert.Equal(t, response.CodeNotFound, env.Code)

	var sent struct {
		ID uint `json:"id"`
	}
	s.ok(http.MethodPost, "/api/v1/friends/requests", alice.Token, gin.H{"receiver_id": bob.ID}, &sent)

	_, env = s.do(http.MethodPost, "/api/v1/friends/requests", bob.Token, gin.H{"receiver_id": alice.ID})
	assert.Equal(t, response.CodeConflict, env.Code, "反方向已有待处理请求")

	_, env = s.do(http.MethodPut, fmt.Sprintf("/api/v1/friends/requests/%d", sent.ID), alice.Token, gin.H{"action": "accept"})
	assert.Equal(t, response.CodeForbidden, env.Code)

	_, env = s.do(http.MethodPut, fmt.Sprintf("/api/v1/friends/requests/%d", sent.ID), bob.Token, gin.H{"action": "maybe"})
	assert.Equal(t, response.CodeBadRequest, env.Code)

	var list struct {
		Received []struct {
			ID     uint `json:"id"`
			Sender struct {
				Username string `json:"username"`
			} `json:"sender"`
		} `json:"received"`
	}
	s.ok(http.MethodGet, "/api/v1/friends/requests", bob.Token, nil, &list)
	require.Len(t, list.Received, 1)
	assert.Equal(t, "alice", list.Received[0].Sender.Username)

	s.ok(http.MethodDelete, fmt.Sprintf("/api/v1/friends/requests/%d", sent.ID), alice.Token, nil, nil)
	_, env = s.do(http.MethodPut, fmt.Sprintf("/api/v1/friends/requests/%d", sent.ID), bob.Token, gin.H{"action": "accept"})
	assert.Equal(t, response.CodeNotFound, env.Code)

	_, env = s.do(http.MethodGet, "/api/v1/users/search?q=a", alice.Token, nil)
	assert.Equal(t, response.CodeBadRequest, env.Code)

	var search struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	s.ok(http.MethodGet, "/api/v1/users/search?q=bo", alice.Token, nil, &search)
	require.Len(t, search.Users, 1)
	assert.Equal(t, "bob", search.Users[0].Username)
}

func TestMoodAndPreferenceEndpoints(t *testing.T) {
	s := newTestServer(t, 60, 10)
	alice := s.register("alice")

	_, env := s.do(http.MethodPost, "/api/v1/moods", alice.Token, gin.H{"mood_score": 120})
	assert.Equal(t, response.CodeBadRequest, env.Code)
	_, env = s.do(http.MethodPost, "/api/v1/moods", alice.Token, gin.H{"mood_tags": []string{"happy"}})
	assert.Equal(t, response.CodeBadRequest, env.Code)

	var mood struct {
		ID           uint     `json:"id"`
		MoodScore    int      `json:"mood_score"`
		MoodTags     []string `json:"mood_tags"`
		MoodCategory string   `json:"mood_category"`
	}
	s.ok(http.MethodPost, "/api/v1/moods", alice.Token, gin.H{"mood_score": 0, "mood_tags": []string{"Calm", "unknown"}}, &mood)
	assert.Equal(t, 0, mood.MoodScore)
	assert.Equal(t, []string{"calm"}, mood.MoodTags)
	assert.Equal(t, model.MoodStressed, mood.MoodCategory)

	s.ok(http.MethodPut, fmt.Sprintf("/api/v1/moods/%d", mood.ID), alice.Token, gin.H{"mood_score": 90}, &mood)
	assert.Equal(t, model.MoodEnergetic, mood.MoodCategory)

	var stats service.MoodStats
	s.ok(http.MethodGet, "/api/v1/moods/stats", alice.Token, nil, &stats)
	assert.Equal(t, 1, stats.TotalEntries)
	require.NotNil(t, stats.AverageScore)
	assert.Equal(t, 90.0, *stats.AverageScore)

	bob := s.register("bob")
	_, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/moods/%d", mood.ID), bob.Token, nil)
	assert.Equal(t, response.CodeNotFound, env.Code, "只能访问自己的心情记录")

	s.ok(http.MethodDelete, fmt.Sprintf("/api/v1/moods/%d", mood.ID), alice.Token, nil, nil)
	_, env = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/moods/%d", mood.ID), alice.Token, nil)
	assert.Equal(t, response.CodeNotFound, env.Code)

	var prefs response.PreferencesInfo
	s.ok(http.MethodGet, "/api/v1/preferences", alice.Token, nil, &prefs)
	assert.Equal(t, []string{}, prefs.Music)

	s.ok(http.MethodPut, "/api/v1/preferences", alice.Token, gin.H{"music": []string{" Jazz ", ""}}, &prefs)
	assert.Equal(t, []string{"Jazz"}, prefs.Music)
	s.ok(http.MethodPut, "/api/v1/preferences", alice.Token, gin.H{"activities": []string{"Hiking"}}, &prefs)
	assert.Equal(t, []string{"Jazz"}, prefs.Music)
	assert.Equal(t, []string{"Hiking"}, prefs.Activities)

	s.ok(http.MethodDelete, "/api/v1/preferences", alice.Token, nil, nil)
	_, env = s.do(http.MethodDelete, "/api/v1/preferences", alice.Token, nil)
	assert.Equal(t, response.CodeNotFound, env.Code)
}
