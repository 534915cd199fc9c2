package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	baseURL    = flag.String("url", "http://localhost:8080", "服务地址")
	users      = flag.Int("users", 200, "并发点赞的用户数")
	toggles    = flag.Int("toggles", 101, "同一用户对同一帖子并发切换点赞的次数")
	httpClient *http.Client
)

const password = "stress-password"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type toggleResult struct {
	Status    string `json:"status"`
	LikeCount int64  `json:"like_count"`
}

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

func main() {
	flag.Parse()
	run := time.Now().UnixNano()

	// 1. 准备作者与帖子
	author := fmt.Sprintf("author_%d", run)
	authorToken := mustLogin(author)
	var post struct {
		ID uint64 `json:"id"`
	}
	if err := call(http.MethodPost, "/posts/", authorToken, map[string]string{"content": "压测专用帖子"}, &post); err != nil {
		fail("创建帖子失败: %v", err)
	}

	// 2. 多用户并发点赞：最终计数应等于用户数
	tokens := make([]string, *users)
	for i := range tokens {
		tokens[i] = mustLogin(fmt.Sprintf("liker_%d_%d", run, i))
	}

	fmt.Printf("开始压测：%d 个用户并发点赞帖子 %d...\n", *users, post.ID)
	var okCount, failCount int64
	start := time.Now()
	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			var res toggleResult
			if err := call(http.MethodPost, "/like/", token, like(post.ID), &res); err != nil || res.Status != "liked" {
				atomic.AddInt64(&failCount, 1)
				return
			}
			atomic.AddInt64(&okCount, 1)
		}(token)
	}
	wg.Wait()
	report("多用户点赞", *users, time.Since(start))

	var final toggleResult
	// 作者本人点赞会被拒绝，借第一个用户切换两次读出计数
	for i := 0; i < 2; i++ {
		if err := call(http.MethodPost, "/like/", tokens[0], like(post.ID), &final); err != nil {
			fail("读取计数失败: %v", err)
		}
	}
	fmt.Printf("成功点赞: %d, 失败: %d, 最终计数: %d (预期: %d)\n", okCount, failCount, final.LikeCount, *users)

	// 3. 同一用户并发切换：最终状态取决于切换次数的奇偶
	toggler := mustLogin(fmt.Sprintf("toggler_%d", run))
	fmt.Printf("开始压测：同一用户并发切换点赞 %d 次...\n", *toggles)
	var errCount int64
	start = time.Now()
	for i := 0; i < *toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := call(http.MethodPost, "/like/", toggler, like(post.ID), nil); err != nil {
				atomic.AddInt64(&errCount, 1)
			}
		}()
	}
	wg.Wait()
	report("并发切换", *toggles, time.Since(start))

	var detail struct {
		LikeCount int64 `json:"like_count"`
		IsLiked   bool  `json:"is_liked"`
	}
	if err := call(http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), toggler, nil, &detail); err != nil {
		fail("读取帖子失败: %v", err)
	}
	applied := int64(*toggles) - errCount
	fmt.Printf("请求失败: %d, 最终已点赞: %v (预期: %v), 帖子点赞数: %d\n",
		errCount, detail.IsLiked, applied%2 == 1, detail.LikeCount)
	fmt.Println("--------------------------------------------------")

	if final.LikeCount != okCount || detail.IsLiked != (applied%2 == 1) {
		fail("计数不一致")
	}
}

func like(id uint64) map[string]interface{} {
	return map[string]interface{}{"id": id, "type": "post"}
}

func report(name string, total int, d time.Duration) {
	fmt.Println("--------------------------------------------------")
	fmt.Printf("%s结束，耗时: %v\n", name, d)
	fmt.Printf("总请求数: %d\n", total)
	fmt.Printf("QPS: %.2f\n", float64(total)/d.Seconds())
}

func mustLogin(username string) string {
	creds := map[string]string{"username": username, "password": password}
	if err := call(http.MethodPost, "/signup/", "", creds, nil); err != nil {
		fail("注册 %s 失败: %v", username, err)
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := call(http.MethodPost, "/login/", "", creds, &res); err != nil {
		fail("登录 %s 失败: %v", username, err)
	}
	return res.Token
}

func call(method, path, token string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, *baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// 检查业务状态码
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}
	if resp.StatusCode >= 300 || env.Code != 0 {
		return fmt.Errorf("status %d code %d: %s", resp.StatusCode, env.Code, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
