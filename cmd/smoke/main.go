package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase string
	client  = &http.Client{Timeout: 30 * time.Second}

	planID   string
	portions map[string]int
	total    int
)

func main() {
	fmt.Println("=== Portion Planner Smoke Test ===")
	fmt.Println()

	apiBase = strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBase), "/")
	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"List Groups", testListGroups},
		{"Compute Plan", testComputePlan},
		{"Check Plan", testCheckPlan},
		{"Check Edited Plan", testCheckEditedPlan},
		{"Export PDF", func() error { return testExport("pdf", "%PDF") }},
		{"Export CSV", func() error { return testExport("csv", "group,") }},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("FAIL\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("PASS\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := client.Get(apiBase + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK)
}

func testListGroups() error {
	resp, err := client.Get(apiBase + "/v1/groups")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Groups []struct {
			Group int `json:"group"`
		} `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if len(result.Groups) != 5 {
		return fmt.Errorf("expected 5 groups, got %d", len(result.Groups))
	}
	return nil
}

func testComputePlan() error {
	payload := map[string]interface{}{
		"calories_kcal": 2000,
		"weight_kg":     70,
		"carb_vs_fat":   0.5,
		"carb_split":    0.5,
		"fat_split":     0.5,
	}

	resp, err := postJSON("/v1/plans", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		PlanID   string `json:"plan_id"`
		Portions []struct {
			Group    int `json:"group"`
			Portions int `json:"portions"`
		} `json:"portions"`
		Check struct {
			TotalKcal int `json:"total_kcal"`
		} `json:"check"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.PlanID == "" {
		return fmt.Errorf("missing plan_id")
	}
	if len(result.Portions) != 5 {
		return fmt.Errorf("expected 5 groups, got %d", len(result.Portions))
	}

	planID = result.PlanID
	total = result.Check.TotalKcal
	portions = make(map[string]int, len(result.Portions))
	for _, p := range result.Portions {
		portions[fmt.Sprint(p.Group)] = p.Portions
	}
	return nil
}

func testCheckPlan() error {
	got, err := checkTotal(portions)
	if err != nil {
		return err
	}
	if got != total {
		return fmt.Errorf("check total %d does not match computed %d", got, total)
	}
	return nil
}

func testCheckEditedPlan() error {
	edited := make(map[string]int, len(portions))
	for k, v := range portions {
		edited[k] = v
	}
	edited["5"]++

	got, err := checkTotal(edited)
	if err != nil {
		return err
	}
	if got <= total {
		return fmt.Errorf("expected total above %d after adding a portion, got %d", total, got)
	}
	return nil
}

func testExport(format, prefix string) error {
	payload := map[string]interface{}{
		"calories_kcal": 2000,
		"weight_kg":     70,
		"title":         "Smoke test",
	}

	resp, err := postJSON("/v1/plans/export?format="+format, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return fmt.Errorf("unexpected %s payload (%d bytes)", format, len(data))
	}
	if resp.Header.Get("X-Plan-ID") == "" {
		return fmt.Errorf("missing X-Plan-ID header")
	}
	return nil
}

func checkTotal(p map[string]int) (int, error) {
	resp, err := postJSON("/v1/plans/check", map[string]interface{}{
		"plan_id":  planID,
		"portions": p,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK); err != nil {
		return 0, err
	}

	var result struct {
		PlanID    string `json:"plan_id"`
		TotalKcal int    `json:"total_kcal"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode failed: %w", err)
	}
	if result.PlanID != planID {
		return 0, fmt.Errorf("plan_id not echoed: got %q", result.PlanID)
	}
	return result.TotalKcal, nil
}

func postJSON(path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", apiBase+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return client.Do(req)
}

func expectStatus(resp *http.Response, want int) error {
	if resp.StatusCode != want {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
