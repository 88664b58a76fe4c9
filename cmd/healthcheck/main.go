// main.go
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
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/harborline/partner-survey/internal/config"
	"github.com/harborline/partner-survey/internal/database"
	"github.com/harborline/partner-survey/internal/services"
	"github.com/harborline/partner-survey/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Perform health check
	result := services.HealthCheck(cfg, db)

	// The API port must also be accepting connections
	if result.Status == "healthy" {
		if err := utils.PingServer(cfg.Port); err != nil {
			result.Status = "unhealthy"
			result.ErrorMessage = fmt.Sprintf("Service port ping failed: %v", err)
		}
	}

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
