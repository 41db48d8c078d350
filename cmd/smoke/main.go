package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"cinematickets/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type SmokeResult struct {
	Name         string        `json:"name"`
	ExpectedCode int           `json:"expected_code"`
	StatusCode   int           `json:"status_code"`
	SeatsTaken   int           `json:"seats_taken"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

type SmokeSuite struct {
	BaseURL string
	Venue   string
	Redis   *redis.Client
	Client  *http.Client
	Results []SmokeResult
}

type smokeCase struct {
	name           string
	body           string
	idempotencyKey string
	expectedCode   int
	expectedSeats  int
	expectReplay   bool
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "API base URL")
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	venue := flag.String("venue", "main-hall", "venue whose seat counter is checked")
	report := flag.String("report", "", "write the JSON report to this file")
	flag.Parse()

	suite := &SmokeSuite{
		BaseURL: *baseURL,
		Venue:   *venue,
		Redis:   redis.NewClient(&redis.Options{Addr: *redisAddr}),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
	defer suite.Redis.Close()

	fmt.Println("🧪 Starting purchase smoke test...")
	fmt.Println("==================================")

	if err := suite.Redis.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("❌ Redis connection failed: %v", err)
	}
	fmt.Println("✅ Redis connection: OK")

	replayKey := uuid.NewString()
	cases := []smokeCase{
		{"Adult with children", `{"account_id": 1, "tickets": [{"type": "ADULT", "quantity": 2}, {"type": "CHILD", "quantity": 2}]}`, "", http.StatusCreated, 4, false},
		{"Infant on lap", `{"account_id": 1, "tickets": [{"type": "ADULT", "quantity": 1}, {"type": "INFANT", "quantity": 1}]}`, "", http.StatusCreated, 1, false},
		{"Child without adult", `{"account_id": 1, "tickets": [{"type": "CHILD", "quantity": 1}]}`, "", http.StatusUnprocessableEntity, 0, false},
		{"Over the cap", `{"account_id": 1, "tickets": [{"type": "ADULT", "quantity": 21}]}`, "", http.StatusUnprocessableEntity, 0, false},
		{"Invalid account", `{"account_id": 0, "tickets": [{"type": "ADULT", "quantity": 1}]}`, "", http.StatusUnprocessableEntity, 0, false},
		{"Idempotent first", `{"account_id": 2, "tickets": [{"type": "ADULT", "quantity": 3}]}`, replayKey, http.StatusCreated, 3, false},
		{"Idempotent replay", `{"account_id": 2, "tickets": [{"type": "ADULT", "quantity": 3}]}`, replayKey, http.StatusCreated, 0, true},
	}

	for _, tc := range cases {
		fmt.Printf("\n🔍 Testing: %s\n", tc.name)
		suite.Results = append(suite.Results, suite.run(tc))
	}

	suite.generateReport(*report)
}

func (s *SmokeSuite) availableSeats(ctx context.Context) (int, error) {
	return s.Redis.Get(ctx, constants.BuildVenueAvailableKey(s.Venue)).Int()
}

func (s *SmokeSuite) run(tc smokeCase) SmokeResult {
	ctx := context.Background()
	result := SmokeResult{Name: tc.name, ExpectedCode: tc.expectedCode}

	before, err := s.availableSeats(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("read seat counter: %v", err)
		return s.print(result)
	}

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/purchases", bytes.NewBufferString(tc.body))
	if err != nil {
		result.Error = err.Error()
		return s.print(result)
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", tc.idempotencyKey)
	}

	start := time.Now()
	resp, err := s.Client.Do(req)
	result.ResponseTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return s.print(result)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	result.StatusCode = resp.StatusCode

	after, err := s.availableSeats(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("read seat counter: %v", err)
		return s.print(result)
	}
	result.SeatsTaken = before - after

	switch {
	case resp.StatusCode != tc.expectedCode:
		result.Error = fmt.Sprintf("expected HTTP %d, got %d", tc.expectedCode, resp.StatusCode)
	case result.SeatsTaken != tc.expectedSeats:
		result.Error = fmt.Sprintf("expected %d seats taken, counter moved by %d", tc.expectedSeats, result.SeatsTaken)
	case tc.expectReplay && resp.Header.Get("Idempotent-Replayed") != "true":
		result.Error = "expected a replayed response"
	default:
		result.Success = true
	}
	return s.print(result)
}

func (s *SmokeSuite) print(r SmokeResult) SmokeResult {
	statusIcon := "✅"
	if !r.Success {
		statusIcon = "❌"
	}
	fmt.Printf("   %s HTTP %d, %d seats, %v", statusIcon, r.StatusCode, r.SeatsTaken, r.ResponseTime)
	if r.Error != "" {
		fmt.Printf(" (%s)", r.Error)
	}
	fmt.Println()
	return r
}

func (s *SmokeSuite) generateReport(path string) {
	fmt.Println("\n📊 SMOKE TEST REPORT")
	fmt.Println("====================")

	successful := 0
	var total time.Duration
	for _, r := range s.Results {
		if r.Success {
			successful++
		}
		total += r.ResponseTime
	}

	fmt.Printf("Total Tests: %d\n", len(s.Results))
	fmt.Printf("Successful: %d\n", successful)
	if len(s.Results) > 0 {
		fmt.Printf("Average Response Time: %v\n", total/time.Duration(len(s.Results)))
	}

	if path != "" {
		reportData, err := json.MarshalIndent(map[string]interface{}{
			"summary": map[string]interface{}{
				"total_tests":      len(s.Results),
				"successful_tests": successful,
			},
			"results": s.Results,
		}, "", "  ")
		if err == nil {
			err = os.WriteFile(path, reportData, 0o644)
		}
		if err != nil {
			log.Printf("Failed to write report: %v", err)
		} else {
			fmt.Printf("\n💾 Detailed results saved to %s\n", path)
		}
	}

	if successful != len(s.Results) {
		os.Exit(1)
	}
}
