// Command smoke runs a quick end-to-end check against a running API
// instance. It authenticates once, then fires a list of requests from a
// JSON file and verifies each response status. Exit code 1 when any
// critical target misbehaves.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type target struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Body     json.RawMessage `json:"body,omitempty"`
	Expect   int             `json:"expect"`
	Auth     bool            `json:"auth"`
	Critical bool            `json:"critical"`
}

type plan struct {
	Targets []target `json:"targets"`
}

type outcome struct {
	Target   target
	Status   int
	Pass     bool
	Err      error
	Duration time.Duration
}

func main() {
	var (
		base      string
		plansPath string
		mail      string
		password  string
		timeout   time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&plansPath, "targets", filepath.Join("scripts", "smoke", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&mail, "mail", "", "Account mail used for the login step")
	flag.StringVar(&password, "password", "", "Account password used for the login step")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadPlan(plansPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}

	var token string
	if mail != "" {
		token, err = login(client, base, mail, password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	var failures int
	results := make([]outcome, 0, len(targets))
	for _, t := range targets {
		res := run(client, base, token, t)
		if !res.Pass && t.Critical {
			failures++
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Critical failures: %d\n", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func loadPlan(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if len(p.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return p.Targets, nil
}

func login(client *http.Client, base, mail, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{"mail": mail, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := client.Post(strings.TrimRight(base, "/")+"/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected login status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Data.AccessToken == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return body.Data.AccessToken, nil
}

func run(client *http.Client, base, token string, tgt target) outcome {
	res := outcome{Target: tgt}

	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reqBody *bytes.Reader
	if len(tgt.Body) > 0 {
		reqBody = bytes.NewReader(tgt.Body)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, reqBody)
	if err != nil {
		res.Err = err
		return res
	}
	if len(tgt.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if tgt.Auth {
		if token == "" {
			res.Err = fmt.Errorf("target requires auth but no token available, pass -mail and -password")
			return res
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	expect := tgt.Expect
	if expect == 0 {
		expect = http.StatusOK
	}
	res.Pass = res.Status == expect
	return res
}

func printReport(results []outcome) {
	for _, r := range results {
		mark := "ok"
		switch {
		case r.Err != nil:
			mark = "error"
		case !r.Pass:
			mark = "FAIL"
		}
		if r.Err != nil {
			fmt.Printf("%-5s %-6s %-40s %v\n", mark, r.Target.Method, r.Target.Path, r.Err)
			continue
		}
		fmt.Printf("%-5s %-6s %-40s status=%d want=%d in %s\n",
			mark, r.Target.Method, r.Target.Path, r.Status, r.Target.Expect, r.Duration.Round(time.Millisecond))
	}
}
