// e2e_test.go
//
// Survey administration service for partner-facing customer surveys
// Copyright (c) 2026 Harborline Software Ltd.
//
// This file is part of partner-survey.
// partner-survey is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// partner-survey is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with partner-survey.
// If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/harborline/partner-survey/internal/testutil"
)

// TestE2EWithFullStack runs the containerized service end to end
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := testutil.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	surveyHost, _ := tc.SurveyContainer.Host(ctx)
	surveyPort, _ := tc.SurveyContainer.MappedPort(ctx, nat.Port(port+"/tcp"))
	baseURL := fmt.Sprintf("http://%s:%s", surveyHost, surveyPort.Port())

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	t.Run("SurveyLifecycle", func(t *testing.T) {
		testSurveyLifecycle(t, baseURL)
	})
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "http_requests_total") {
		t.Error("Expected prometheus counters in metrics output")
	}
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to fetch swagger UI: %v", err)
	}
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)
}

func testSurveyLifecycle(t *testing.T, baseURL string) {
	// Save a template
	csv := "QuestionID,Type,Question,Required\nQ1,text,Name,yes\nQ2,rating,Score,no\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "survey.csv")
	if err != nil {
		t.Fatalf("Failed to build upload: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("Failed to build upload: %v", err)
	}
	if err := writer.WriteField("templateName", "e2e-survey"); err != nil {
		t.Fatalf("Failed to build upload: %v", err)
	}
	writer.Close()

	resp, err := http.Post(baseURL+"/api/templates", writer.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("Failed to save template: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	// Submit against it
	payload := map[string]interface{}{
		"customerId":      "CUST-E2E",
		"customerCompany": "E2E Co",
		"partnerName":     "E2E Partner",
		"partnerCompany":  "E2E Partner Co",
		"answers": map[string]string{
			"Q1": "End ToEnd",
			"Q2": "4",
		},
	}
	body, _ := json.Marshal(payload)
	resp, err = http.Post(baseURL+"/api/surveys/e2e-survey/submissions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to submit survey: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var receipt map[string]interface{}
	testutil.ParseJSON(t, resp, &receipt)
	if receipt["submissionUuid"] == nil {
		t.Errorf("Expected a submission uuid, got %v", receipt)
	}

	// Export has data now
	resp, err = http.Get(baseURL + "/api/export")
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)
}
