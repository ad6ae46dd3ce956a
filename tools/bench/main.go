package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"
)

// -------------------- 统计 --------------------

type APITestStats struct {
	mu          sync.Mutex
	latencies   []time.Duration
	failed      int
	rateLimited int
}

func (s *APITestStats) Add(status, code int, latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.failed++
	case status == http.StatusTooManyRequests:
		s.rateLimited++
	case status == http.StatusOK && code == 0:
		s.latencies = append(s.latencies, latency)
	default:
		s.failed++
	}
}

func (s *APITestStats) percentile(p float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	idx := int(float64(len(s.latencies)-1) * p)
	return s.latencies[idx]
}

func (s *APITestStats) Report(took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })

	ok := len(s.latencies)
	total := ok + s.failed + s.rateLimited
	var sum time.Duration
	for _, l := range s.latencies {
		sum += l
	}

	fmt.Println("\n=== 推荐接口测试结果 ===")
	fmt.Printf("耗时: %v\n", took)
	fmt.Printf("总请求: %d 成功: %d 限流: %d 失败: %d\n", total, ok, s.rateLimited, s.failed)
	if ok > 0 {
		fmt.Printf("延迟 平均: %v P50: %v P95: %v P99: %v 最大: %v\n",
			sum/time.Duration(ok), s.percentile(0.5), s.percentile(0.95), s.percentile(0.99), s.latencies[ok-1])
	}
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(ok)/took.Seconds())
	}
	if total > 0 {
		fmt.Printf("成功率: %.2f%%\n", float64(ok)/float64(total)*100)
	}
}

// -------------------- HTTP --------------------

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var client = &http.Client{Timeout: 8 * time.Second}

func call(method, url, token string, body interface{}) (int, *envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, &env, nil
}

// login 登录压测账号，账号不存在时先注册
func login(base, username, password string) (string, error) {
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	_, env, err := call(http.MethodPost, base+"/api/v1/auth/login", "", map[string]string{
		"usernameOrEmail": username,
		"password":        password,
	})
	if err != nil {
		return "", err
	}
	if env.Code != 0 {
		_, env, err = call(http.MethodPost, base+"/api/v1/auth/register", "", map[string]string{
			"username": username,
			"email":    username + "@bench.local",
			"password": password,
		})
		if err != nil {
			return "", err
		}
		if env.Code != 0 {
			return "", fmt.Errorf("注册 %s 失败: %s", username, env.Message)
		}
	}
	if err := json.Unmarshal(env.Data, &tok); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func runBench(base string, tokens []string, perUser, limit int) {
	fmt.Println("\n=== 推荐接口并发测试开始 ===")
	fmt.Printf("目标: %s 并发用户: %d 每用户请求: %d limit: %d\n", base, len(tokens), perUser, limit)

	stats := &APITestStats{}
	url := fmt.Sprintf("%s/api/v1/friends/recommendations?limit=%d", base, limit)

	var wg sync.WaitGroup
	start := time.Now()
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			for j := 0; j < perUser; j++ {
				t0 := time.Now()
				status, env, err := call(http.MethodGet, url, token, nil)
				code := -1
				if env != nil {
					code = env.Code
				}
				stats.Add(status, code, time.Since(t0), err)
			}
		}(token)
	}
	wg.Wait()

	stats.Report(time.Since(start))
}

// -------------------- 入口 --------------------

func main() {
	base := flag.String("base", "http://localhost:8080", "服务地址")
	users := flag.Int("users", 5, "并发用户数")
	perUser := flag.Int("n", 10, "每个用户的请求数")
	limit := flag.Int("limit", 10, "推荐条数")
	prefix := flag.String("prefix", "bench", "压测账号前缀")
	password := flag.String("password", "bench123", "压测账号密码")
	flag.Parse()

	fmt.Println("=== MoodMeal 推荐接口压测 ===")
	fmt.Printf("开始时间: %s  GOMAXPROCS: %d\n", time.Now().Format("2006-01-02 15:04:05"), runtime.GOMAXPROCS(0))

	tokens := make([]string, 0, *users)
	for i := 0; i < *users; i++ {
		token, err := login(*base, fmt.Sprintf("%s%03d", *prefix, i), *password)
		if err != nil {
			fmt.Println("准备压测账号失败:", err)
			os.Exit(1)
		}
		tokens = append(tokens, token)
	}

	runBench(*base, tokens, *perUser, *limit)
	fmt.Println("\n=== 测试完成 ===")
}
