package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type result struct {
	ok       int64
	limited  int64
	failed   int64
	mu       sync.Mutex
	latencies []time.Duration
}

func (r *result) observe(d time.Duration) {
	r.mu.Lock()
	r.latencies = append(r.latencies, d)
	r.mu.Unlock()
}

func (r *result) percentile(p float64) time.Duration {
	if len(r.latencies) == 0 {
		return 0
	}
	idx := int(float64(len(r.latencies)-1) * p)
	return r.latencies[idx]
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "服务地址")
	total := flag.Int("n", 2000, "总请求数")
	concurrency := flag.Int("c", 100, "并发数")
	cookie := flag.String("cookie", "", "会话 cookie，如 session=xxx；为空时以游客身份请求")
	flag.Parse()

	if !checkHealth(*baseURL) {
		return
	}

	fmt.Printf("开始压测：%d 个请求，并发 %d，目标 %s/posts/feed\n", *total, *concurrency, *baseURL)

	res := &result{}
	jobs := make(chan struct{}, *total)
	for i := 0; i < *total; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				fetchFeed(*baseURL, *cookie, res)
			}
		}()
	}
	wg.Wait()
	duration := time.Since(start)

	sort.Slice(res.latencies, func(i, j int) bool { return res.latencies[i] < res.latencies[j] })

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*total)/duration.Seconds())
	fmt.Printf("成功: %d  限流: %d  失败: %d\n", res.ok, res.limited, res.failed)
	fmt.Printf("延迟 p50: %v  p95: %v  p99: %v\n", res.percentile(0.5), res.percentile(0.95), res.percentile(0.99))
	fmt.Println("--------------------------------------------------")
}

func checkHealth(baseURL string) bool {
	resp, err := httpClient.Get(baseURL + "/health")
	if err != nil {
		fmt.Printf("健康检查失败: %v\n", err)
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("服务不健康: %s\n", string(body))
		return false
	}
	return true
}

func fetchFeed(baseURL, cookie string, res *result) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/posts/feed", nil)
	if err != nil {
		atomic.AddInt64(&res.failed, 1)
		return
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		atomic.AddInt64(&res.failed, 1)
		return
	}
	defer resp.Body.Close()

	// 读取响应内容
	respBody, err := io.ReadAll(resp.Body)
	res.observe(time.Since(start))
	if err != nil {
		atomic.AddInt64(&res.failed, 1)
		return
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		atomic.AddInt64(&res.limited, 1)
		return
	}

	// 检查业务状态码
	var body struct {
		Code int `json:"code"`
	}
	if resp.StatusCode != http.StatusOK || json.Unmarshal(respBody, &body) != nil || body.Code != 0 {
		atomic.AddInt64(&res.failed, 1)
		return
	}
	atomic.AddInt64(&res.ok, 1)
}
