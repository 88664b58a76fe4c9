package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/harborline/partner-survey/internal/handlers"
	"github.com/harborline/partner-survey/internal/models"
	"github.com/harborline/partner-survey/internal/services"
	"github.com/harborline/partner-survey/internal/testutil"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app with the API routes wired to a fresh database
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.OpenTestDB(t)

	app := fiber.New()
	api := app.Group("/api")

	templateHandler := &handlers.TemplateHandler{DB: db}
	customerHandler := &handlers.CustomerHandler{DB: db}
	surveyHandler := &handlers.SurveyHandler{DB: db}
	exportHandler := &handlers.ExportHandler{DB: db}

	api.Get("/templates", templateHandler.ListTemplates)
	api.Post("/templates/parse", templateHandler.ParseTemplate)
	api.Post("/templates", templateHandler.SaveTemplate)
	api.Get("/templates/:name", templateHandler.GetTemplate)
	api.Get("/customers", customerHandler.SearchCustomers)
	api.Get("/surveys/:template/existing", surveyHandler.GetExisting)
	api.Post("/surveys/:template/submissions", surveyHandler.SubmitSurvey)
	api.Get("/export", exportHandler.ExportResponses)

	return app, db
}

// multipartUpload builds a multipart body with a file field and extra form values
func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

const templateCSV = `QuestionID,Type,Question,Section,Required,Options,DependsOn,DependsOnValue
Q1,text,Name,Contact,yes,,,
Q2,single_select,Satisfied?,Feedback,yes,Yes|No,,
Q3,textarea,Details,Feedback,yes,,Q2,No
`

func TestListTemplatesEmpty(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/api/templates", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	testutil.AssertStatus(t, resp, fiber.StatusNoContent)
	testutil.AssertNoContent(t, resp)
}

func TestParseTemplateUpload(t *testing.T) {
	app, _ := setupApp(t)

	body, contentType := multipartUpload(t, "survey.csv", []byte(templateCSV), nil)
	req := httptest.NewRequest("POST", "/api/templates/parse", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var result struct {
		Questions []models.Question `json:"questions"`
		Warnings  []string          `json:"warnings"`
	}
	testutil.ParseJSON(t, resp, &result)

	if len(result.Questions) != 3 {
		t.Errorf("Expected 3 questions, got %d", len(result.Questions))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}

	// Parsing must not save anything
	req = httptest.NewRequest("GET", "/api/templates", nil)
	resp, _ = app.Test(req)
	testutil.AssertStatus(t, resp, fiber.StatusNoContent)
}

func TestParseTemplateUnsupportedFormat(t *testing.T) {
	app, _ := setupApp(t)

	body, contentType := multipartUpload(t, "survey.pdf", []byte("nope"), nil)
	req := httptest.NewRequest("POST", "/api/templates/parse", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestParseTemplateWarnsOnStructure(t *testing.T) {
	app, _ := setupApp(t)

	csv := "QuestionID,Type,Question,Options\nQ1,single_select,Pick one,\n"
	body, contentType := multipartUpload(t, "bad.csv", []byte(csv), nil)
	req := httptest.NewRequest("POST", "/api/templates/parse", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var result struct {
		Warnings []string `json:"warnings"`
	}
	testutil.ParseJSON(t, resp, &result)
	if len(result.Warnings) != 1 {
		t.Errorf("Expected a structural warning, got %v", result.Warnings)
	}
}

func TestSaveAndListTemplates(t *testing.T) {
	app, _ := setupApp(t)

	body, contentType := multipartUpload(t, "survey.csv", []byte(templateCSV), map[string]string{
		"templateName": "partner-q3",
		"description":  "Quarterly partner survey",
	})
	req := httptest.NewRequest("POST", "/api/templates", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	req = httptest.NewRequest("GET", "/api/templates", nil)
	resp, _ = app.Test(req)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var infos []services.TemplateInfo
	testutil.ParseJSON(t, resp, &infos)
	if len(infos) != 1 || infos[0].TemplateName != "partner-q3" || infos[0].QuestionCount != 3 {
		t.Errorf("Unexpected listing: %+v", infos)
	}
}

func TestSaveTemplateJSON(t *testing.T) {
	app, _ := setupApp(t)

	payload := map[string]interface{}{
		"templateName": "json-survey",
		"description":  "Saved from parsed questions",
		"questions": []map[string]interface{}{
			{"id": "Q1", "type": "text", "question": "Name", "required": true},
			{"id": "Q2", "type": "rating", "question": "Score", "minRating": "1", "maxRating": 5},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	req = httptest.NewRequest("GET", "/api/templates/json-survey", nil)
	resp, _ = app.Test(req)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var result struct {
		Questions []models.Question `json:"questions"`
	}
	testutil.ParseJSON(t, resp, &result)
	if len(result.Questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(result.Questions))
	}
	// Rating bounds arrive as string or number alike
	if min, max := result.Questions[1].RatingBounds(); min != 1 || max != 5 {
		t.Errorf("Expected bounds 1..5, got %d..%d", min, max)
	}
}

func TestSaveTemplateRequiresName(t *testing.T) {
	app, _ := setupApp(t)

	body, contentType := multipartUpload(t, "survey.csv", []byte(templateCSV), nil)
	req := httptest.NewRequest("POST", "/api/templates", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestGetTemplateNotFound(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/api/templates/ghost", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestSearchCustomers(t *testing.T) {
	app, db := setupApp(t)
	testutil.CreateTestCustomer(t, db, "CUST-001", "Acme Industries")

	req := httptest.NewRequest("GET", "/api/customers?search=acme", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var customers []models.Customer
	testutil.ParseJSON(t, resp, &customers)
	if len(customers) != 1 || customers[0].CustomerID != "CUST-001" {
		t.Errorf("Unexpected result: %+v", customers)
	}
}

func TestSearchCustomersDegradesToEmpty(t *testing.T) {
	app, db := setupApp(t)

	// Break the read path; the endpoint must still answer with an empty list
	if err := db.Migrator().DropTable(&models.Customer{}); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/customers?search=acme", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var customers []models.Customer
	testutil.ParseJSON(t, resp, &customers)
	if len(customers) != 0 {
		t.Errorf("Expected empty list, got %+v", customers)
	}
}

func saveTemplate(t *testing.T, app *fiber.App) {
	t.Helper()
	body, contentType := multipartUpload(t, "survey.csv", []byte(templateCSV), map[string]string{
		"templateName": "partner-q3",
	})
	req := httptest.NewRequest("POST", "/api/templates", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to save template: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
}

func submitJSON(t *testing.T, app *fiber.App, payload map[string]interface{}) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/surveys/partner-q3/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

func TestSubmitSurveyFlow(t *testing.T) {
	app, _ := setupApp(t)
	saveTemplate(t, app)

	resp := submitJSON(t, app, map[string]interface{}{
		"customerId":      "CUST-001",
		"customerCompany": "Acme Industries",
		"partnerName":     "Sam Rivera",
		"partnerCompany":  "Harbor Partners",
		"answers": map[string]string{
			"Q1": "Ada Lovelace",
			"Q2": "Yes",
		},
	})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	var result map[string]interface{}
	testutil.ParseJSON(t, resp, &result)
	if result["ok"] != true || result["submissionUuid"] == "" {
		t.Errorf("Unexpected receipt: %v", result)
	}

	// The existing lookup now finds the submission
	req := httptest.NewRequest("GET", "/api/surveys/partner-q3/existing?customerId=CUST-001&partnerCompany=Harbor+Partners", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var existing services.ExistingResponses
	testutil.ParseJSON(t, resp, &existing)
	if !existing.HasExisting || existing.Responses["Q1"] != "Ada Lovelace" {
		t.Errorf("Unexpected existing lookup: %+v", existing)
	}
}

func TestSubmitSurveyMissingRequired(t *testing.T) {
	app, _ := setupApp(t)
	saveTemplate(t, app)

	// Q2=No reveals required Q3, which is unanswered
	resp := submitJSON(t, app, map[string]interface{}{
		"customerId":      "CUST-001",
		"customerCompany": "Acme Industries",
		"partnerName":     "Sam Rivera",
		"partnerCompany":  "Harbor Partners",
		"answers": map[string]string{
			"Q1": "Ada",
			"Q2": "No",
		},
	})
	testutil.AssertStatus(t, resp, fiber.StatusUnprocessableEntity)

	var result struct {
		MissingRequired []string `json:"missingRequired"`
	}
	testutil.ParseJSON(t, resp, &result)
	if len(result.MissingRequired) != 1 || result.MissingRequired[0] != "Details" {
		t.Errorf("Expected Details to be missing, got %v", result.MissingRequired)
	}
}

func TestSubmitSurveyUnknownTemplate(t *testing.T) {
	app, _ := setupApp(t)

	resp := submitJSON(t, app, map[string]interface{}{
		"customerId":     "CUST-001",
		"partnerName":    "Sam Rivera",
		"partnerCompany": "Harbor Partners",
		"answers":        map[string]string{},
	})
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestSubmitSurveyMissingIdentity(t *testing.T) {
	app, _ := setupApp(t)
	saveTemplate(t, app)

	resp := submitJSON(t, app, map[string]interface{}{
		"customerId": "CUST-001",
		"answers":    map[string]string{},
	})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestGetExistingRequiresParams(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/api/surveys/partner-q3/existing", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestExportEmpty(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/api/export", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusNoContent)
}

func TestExportWorkbookDownload(t *testing.T) {
	app, _ := setupApp(t)
	saveTemplate(t, app)

	resp := submitJSON(t, app, map[string]interface{}{
		"customerId":      "CUST-001",
		"customerCompany": "Acme Industries",
		"partnerName":     "Sam Rivera",
		"partnerCompany":  "Harbor Partners",
		"answers": map[string]string{
			"Q1": "Ada",
			"Q2": "Yes",
		},
	})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	req := httptest.NewRequest("GET", "/api/export", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	if got := resp.Header.Get("Content-Disposition"); got == "" {
		t.Error("Expected an attachment Content-Disposition header")
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read export body: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Export is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(services.SummarySheet)
	if err != nil {
		t.Fatalf("Failed to read summary sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected one summary data row, got %d", len(rows)-1)
	}
}
