package main

import (
	"os"

	"github.com/hiremind/backend/cmd"
)

// @title HireMind API
// @version 1.0
// @description Resume parsing and skill-clustered job recommendations.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@hiremind.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
