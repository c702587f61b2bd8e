package plans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/fdg312/portion-planner/internal/portions"
)

func newTestHandler(t *testing.T, rules portions.Rules) *Handler {
	t.Helper()
	planner, err := portions.NewPlanner(rules)
	if err != nil {
		t.Fatalf("failed to create planner: %v", err)
	}
	return NewHandler(NewService(planner, zaptest.NewLogger(t)), 0)
}

func doJSON(t *testing.T, fn http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error.Code
}

func portionsByGroup(resp ComputeResponse) map[portions.GroupID]int {
	out := make(map[portions.GroupID]int, len(resp.Portions))
	for _, p := range resp.Portions {
		out[p.Group] = p.Portions
	}
	return out
}

func TestHandleCompute_ReferenceScenario(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	w := doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans",
		`{"calories_kcal":2000,"weight_kg":70,"carb_vs_fat":0.5,"carb_split":0.5,"fat_split":0.5}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp ComputeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.PlanID == uuid.Nil {
		t.Error("expected plan_id")
	}
	if resp.Protein.FloorPortions != 7 || resp.Protein.Kcal != 735 {
		t.Errorf("expected 7 protein portions / 735 kcal, got %v / %v", resp.Protein.FloorPortions, resp.Protein.Kcal)
	}
	if resp.RemainingKcal != 1135 {
		t.Errorf("expected remaining 1135, got %v", resp.RemainingKcal)
	}

	wantOrder := []portions.GroupID{4, 5, 11, 12, 13}
	if len(resp.Portions) != len(wantOrder) {
		t.Fatalf("expected %d groups, got %d", len(wantOrder), len(resp.Portions))
	}
	for i, g := range wantOrder {
		if resp.Portions[i].Group != g {
			t.Errorf("portions[%d]: expected group %d, got %d", i, g, resp.Portions[i].Group)
		}
	}

	want := map[portions.GroupID]int{4: 7, 5: 9, 11: 2, 12: 4, 13: 3}
	got := portionsByGroup(resp)
	for g, n := range want {
		if got[g] != n {
			t.Errorf("group %d: expected %d portions, got %d", g, n, got[g])
		}
	}

	if resp.Check.TotalKcal != 1974 {
		t.Errorf("expected checked total 1974, got %d", resp.Check.TotalKcal)
	}
	if resp.Check.PlanID == nil || *resp.Check.PlanID != resp.PlanID {
		t.Error("expected check to carry the plan id")
	}
}

func TestHandleCompute_DefaultRatios(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	w := doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans", `{"calories_kcal":2000,"weight_kg":70}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp ComputeResponse
	json.NewDecoder(w.Body).Decode(&resp)

	if resp.Input.CarbVsFat != DefaultRatio || resp.Input.CarbSplit != DefaultRatio || resp.Input.FatSplit != DefaultRatio {
		t.Errorf("expected default ratios, got %+v", resp.Input)
	}
	if resp.Check.TotalKcal != 1974 {
		t.Errorf("expected checked total 1974, got %d", resp.Check.TotalKcal)
	}
}

func TestHandleCompute_NegativeRemaining(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	w := doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans", `{"calories_kcal":500,"weight_kg":100}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp ComputeResponse
	json.NewDecoder(w.Body).Decode(&resp)

	if resp.RemainingKcal >= 0 {
		t.Errorf("expected negative remaining, got %v", resp.RemainingKcal)
	}
	got := portionsByGroup(resp)
	want := map[portions.GroupID]int{4: 10, 5: -5, 11: -1, 12: -2, 13: -2}
	for g, n := range want {
		if got[g] != n {
			t.Errorf("group %d: expected %d portions, got %d", g, n, got[g])
		}
	}
}

func TestHandleCompute_StrictInput(t *testing.T) {
	rules := portions.DefaultRules()
	rules.StrictInput = true
	h := newTestHandler(t, rules)

	w := doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans", `{"calories_kcal":2000,"weight_kg":70,"carb_vs_fat":1.5}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "invalid_input" {
		t.Errorf("expected invalid_input, got %s", code)
	}
}

func TestHandleCompute_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	w := doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans", `{"calories_kcal":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "invalid_payload" {
		t.Errorf("expected invalid_payload, got %s", code)
	}
}

func TestHandleCheck_ReferencePlan(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())
	planID := uuid.New()

	body := fmt.Sprintf(`{"plan_id":%q,"portions":{"4":7,"5":9,"12":4,"11":2,"13":3}}`, planID)
	w := doJSON(t, h.HandleCheck, http.MethodPost, "/v1/plans/check", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp CheckDTO
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.TotalKcal != 1974 {
		t.Errorf("expected total 1974, got %d", resp.TotalKcal)
	}
	if resp.SaladKcal != 130 || resp.GroupsKcal != 1844 {
		t.Errorf("expected 1844 + 130, got %v + %v", resp.GroupsKcal, resp.SaladKcal)
	}
	if resp.PlanID == nil || *resp.PlanID != planID {
		t.Error("expected plan_id to be echoed")
	}
	if len(resp.Groups) != 5 || resp.Groups[0].Group != portions.GroupProtein {
		t.Errorf("expected five groups starting with protein, got %+v", resp.Groups)
	}
}

func TestHandleCheck_FractionalWithMissingGroups(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	w := doJSON(t, h.HandleCheck, http.MethodPost, "/v1/plans/check", `{"portions":{"5":1.5,"11":0.5}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp CheckDTO
	json.NewDecoder(w.Body).Decode(&resp)

	if resp.TotalKcalExact != 235.5 || resp.TotalKcal != 236 {
		t.Errorf("expected 235.5 -> 236, got %v -> %d", resp.TotalKcalExact, resp.TotalKcal)
	}
	if resp.PlanID != nil {
		t.Error("expected no plan_id when none was sent")
	}
	// 1.5 carbs A = 48 kcal, 0.5 fats A = 57.5 kcal shown as 58.
	if resp.Groups[1].KcalRounded != 48 || resp.Groups[2].KcalRounded != 58 {
		t.Errorf("expected rounded group kcal 48 and 58, got %+v", resp.Groups)
	}
}

func TestHandleCheck_Errors(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	tests := []struct {
		name string
		body string
		code string
	}{
		{"unknown group", `{"portions":{"4":7,"6":1}}`, "unknown_group"},
		{"missing portions", `{}`, "invalid_request"},
		{"non numeric group key", `{"portions":{"protein":7}}`, "invalid_payload"},
		{"not json", `portions`, "invalid_payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h.HandleCheck, http.MethodPost, "/v1/plans/check", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			if code := errorCode(t, w); code != tt.code {
				t.Errorf("expected %s, got %s", tt.code, code)
			}
		})
	}
}

func TestComputeThenCheck_CallerThreadsPlan(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	w := doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans", `{"calories_kcal":2450,"weight_kg":82,"carb_vs_fat":0.6}`)
	var plan ComputeResponse
	json.NewDecoder(w.Body).Decode(&plan)

	edited := CheckRequest{PlanID: &plan.PlanID, Portions: map[portions.GroupID]float64{}}
	for _, p := range plan.Portions {
		edited.Portions[p.Group] = float64(p.Portions)
	}
	edited.Portions[portions.GroupCarbA]++

	payload, _ := json.Marshal(edited)
	req := httptest.NewRequest(http.MethodPost, "/v1/plans/check", bytes.NewReader(payload))
	cw := httptest.NewRecorder()
	h.HandleCheck(cw, req)

	var checked CheckDTO
	json.NewDecoder(cw.Body).Decode(&checked)

	if checked.TotalKcal != plan.Check.TotalKcal+32 {
		t.Errorf("expected edited total %d, got %d", plan.Check.TotalKcal+32, checked.TotalKcal)
	}
}

func TestHandleGroups(t *testing.T) {
	rules := portions.DefaultRules()
	rules.GramsPerPortion = map[portions.GroupID]float64{portions.GroupProtein: 120}
	h := newTestHandler(t, rules)

	w := doJSON(t, h.HandleGroups, http.MethodGet, "/v1/groups", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp RulesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Groups) != 5 {
		t.Fatalf("expected 5 groups, got %d", len(resp.Groups))
	}
	if resp.Groups[0].GramsPerPortion == nil || *resp.Groups[0].GramsPerPortion != 120 {
		t.Error("expected grams_per_portion for protein")
	}
	if resp.Groups[1].GramsPerPortion != nil {
		t.Error("expected no grams_per_portion for group 5")
	}
	if resp.SaladKcal != 130 {
		t.Errorf("expected salad 130, got %v", resp.SaladKcal)
	}
	last := resp.ProteinFloor[len(resp.ProteinFloor)-1]
	if last.BelowKg != nil || last.Portions != 10 {
		t.Errorf("expected open last tier with 10 portions, got %+v", last)
	}
	if resp.PortionRounding != "half_even" || resp.TotalRounding != "half_away" {
		t.Errorf("unexpected rounding policies %s/%s", resp.PortionRounding, resp.TotalRounding)
	}
}

func TestHandlers_OverflowingInputIsRejected(t *testing.T) {
	h := newTestHandler(t, portions.DefaultRules())

	tests := []struct {
		name string
		fn   http.HandlerFunc
		path string
		body string
	}{
		{"compute with huge weight", h.HandleCompute, "/v1/plans", `{"calories_kcal":2000,"weight_kg":1e308}`},
		{"compute with huge calories", h.HandleCompute, "/v1/plans", `{"calories_kcal":1.7e308,"weight_kg":70,"carb_vs_fat":2}`},
		{"check with huge portions", h.HandleCheck, "/v1/plans/check", `{"portions":{"11":1e307}}`},
		{"check with huge negative portions", h.HandleCheck, "/v1/plans/check", `{"portions":{"11":-1e307}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, tt.fn, http.MethodPost, tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d. Body: %q", w.Code, w.Body.String())
			}
			if code := errorCode(t, w); code != "invalid_input" {
				t.Errorf("expected invalid_input, got %s", code)
			}
		})
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()

	writeJSON(w, http.StatusOK, map[string]float64{"kcal": math.Inf(1)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "internal_error" {
		t.Errorf("expected internal_error, got %s", code)
	}
}

func TestHandleCompute_BodyLimit(t *testing.T) {
	planner, err := portions.NewPlanner(portions.DefaultRules())
	if err != nil {
		t.Fatalf("failed to create planner: %v", err)
	}
	h := NewHandler(NewService(planner, zaptest.NewLogger(t)), 1)

	padding := strings.Repeat(" ", 2048)
	w := doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans",
		`{"calories_kcal":2000,`+padding+`"weight_kg":70}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "invalid_payload" {
		t.Errorf("expected invalid_payload, got %s", code)
	}

	w = doJSON(t, h.HandleCompute, http.MethodPost, "/v1/plans", `{"calories_kcal":2000,"weight_kg":70}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 under the limit, got %d", w.Code)
	}
}
