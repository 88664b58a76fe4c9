package database_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/harborline/partner-survey/internal/config"
	"github.com/harborline/partner-survey/internal/database"
	"github.com/harborline/partner-survey/internal/form"
	"github.com/harborline/partner-survey/internal/services"
	"github.com/harborline/partner-survey/internal/testutil"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestWithMariaDB tests the storage layer against a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	image := os.Getenv("DB_IMAGE")
	if image == "" {
		image = "mariadb:11"
	}

	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	runStorageSuite(t, cfg, db)
}

// TestWithPostgreSQL tests the storage layer against a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	image := os.Getenv("POSTGRES_IMAGE")
	if image == "" {
		image = "postgres:17-alpine"
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}()

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	time.Sleep(3 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	runStorageSuite(t, cfg, db)
}

// runStorageSuite exercises the full submission cycle against a real database
func runStorageSuite(t *testing.T, cfg *config.Config, db *gorm.DB) {
	t.Run("HealthCheck", func(t *testing.T) {
		result := services.HealthCheck(cfg, db)
		if result.Status != "healthy" {
			t.Errorf("Expected healthy, got %+v", result)
		}
	})

	t.Run("SubmissionCycle", func(t *testing.T) {
		testutil.CreateTestTemplate(t, db, "integration-survey", testutil.SampleQuestions())

		input := services.SubmissionInput{
			CustomerID:      "CUST-INT-1",
			CustomerCompany: "Integration Co",
			PartnerName:     "Pat Integration",
			PartnerCompany:  "Partner Co",
			TemplateName:    "integration-survey",
			Answers: form.Session{
				"Q1": "Integration Tester",
				"Q2": "Yes",
				"Q4": "3",
			},
		}

		receipt, err := services.Submit(db, input)
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if receipt.SubmissionUUID == "" {
			t.Fatal("Expected a submission uuid")
		}

		existing, err := services.CheckExisting(db, "CUST-INT-1", "Partner Co", "integration-survey")
		if err != nil {
			t.Fatalf("CheckExisting failed: %v", err)
		}
		if !existing.HasExisting || existing.Responses["Q1"] != "Integration Tester" {
			t.Errorf("Unexpected existing lookup: %+v", existing)
		}

		workbook, err := services.ExportAll(db)
		if err != nil {
			t.Fatalf("ExportAll failed: %v", err)
		}
		if len(workbook) == 0 {
			t.Error("Expected a non-empty workbook")
		}
	})
}
