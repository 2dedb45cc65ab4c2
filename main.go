package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/joho/godotenv"

	"github.com/blood-donor-services/common/config"
	"github.com/blood-donor-services/common/db"
	"github.com/blood-donor-services/common/email"
	"github.com/blood-donor-services/common/jwt"
	"github.com/blood-donor-services/common/response"
	"github.com/blood-donor-services/common/scheduler"
	authHandler "github.com/blood-donor-services/services/auth-lambda/handler"
	authRepository "github.com/blood-donor-services/services/auth-lambda/repository"
	authUsecase "github.com/blood-donor-services/services/auth-lambda/usecase"
	donorHandler "github.com/blood-donor-services/services/donor-lambda/handler"
	donorRepository "github.com/blood-donor-services/services/donor-lambda/repository"
	donorUsecase "github.com/blood-donor-services/services/donor-lambda/usecase"
)

// adaptRequest converts http.Request to APIGatewayProxyRequest
func adaptRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	defer r.Body.Close()

	headers := make(map[string]string)
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	queryParams := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0]
		}
	}

	return events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		QueryStringParameters: queryParams,
		Body:                  string(body),
	}, nil
}

// writeResponse writes APIGatewayProxyResponse to http.ResponseWriter
func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for key, value := range response.CORSHeaders {
		w.Header().Set(key, value)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	w.Write([]byte(resp.Body))
}

// corsMiddleware handles CORS preflight requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for key, value := range response.CORSHeaders {
			w.Header().Set(key, value)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func main() {
	// Load environment from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	log.Println("Connecting to MySQL database...")
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()
	log.Println("Database connected successfully!")

	// Shared services
	tokens := jwt.NewTokenService(jwt.Config{
		Secret:     cfg.JWTSecret,
		Expiration: cfg.TokenTTL(),
	})
	emailService := email.NewEmailService(nil)
	if emailService.DevMode() {
		log.Println("SMTP credentials missing, email service running in dev mode (mail is dropped)")
	}

	// Repositories and use cases
	otpRepo := authRepository.NewOtpRepository()
	donorRepo := donorRepository.NewDonorRepository()
	otpManager := authUsecase.NewOTPManager(otpRepo, emailService, cfg)
	authUC := authUsecase.NewAuthUseCase(donorRepo, otpManager, tokens, emailService, cfg)
	donorUC := donorUsecase.NewDonorUseCase(donorRepo, emailService)

	authH := authHandler.NewAuthHandler(authUC)
	donorH := donorHandler.NewDonorHandler(donorUC, tokens)

	// route binds a lambda-style handler to a method on the default mux
	route := func(method string, handler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)) http.HandlerFunc {
		return corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			req, err := adaptRequest(r)
			if err != nil {
				http.Error(w, "Failed to read request", http.StatusBadRequest)
				return
			}
			if id := r.PathValue("id"); id != "" {
				req.PathParameters = map[string]string{"id": id}
			}
			resp, err := handler(context.Background(), req)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeResponse(w, resp)
		})
	}

	// ======================= AUTH ROUTES =======================
	http.HandleFunc("/api/admin/login", route(http.MethodPost, authH.HandleAdminLogin))
	http.HandleFunc("/api/donors/register/initiate", route(http.MethodPost, authH.HandleRegisterInitiate))
	http.HandleFunc("/api/donors/register/complete", route(http.MethodPost, authH.HandleRegisterComplete))
	http.HandleFunc("/api/donors/login/request-otp", route(http.MethodPost, authH.HandleLoginRequestOTP))
	http.HandleFunc("/api/donors/login", route(http.MethodPost, authH.HandleDonorLogin))

	// ======================= DONOR ROUTES =======================
	http.HandleFunc("/api/donors/search", route(http.MethodPost, donorH.HandleSearchDonors))

	// Method-agnostic pattern, registered after the specific routes to
	// avoid conflicts (Go 1.22+ mux)
	http.HandleFunc("/api/donors/{id}", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		var handler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
		switch r.Method {
		case http.MethodGet:
			handler = donorH.HandleGetDonor
		case http.MethodPut:
			handler = donorH.HandleUpdateDonor
		case http.MethodDelete:
			handler = donorH.HandleDeleteDonor
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		route(r.Method, handler)(w, r)
	}))
	http.HandleFunc("/api/donors/{id}/status", route(http.MethodPut, donorH.HandleUpdateDonorStatus))
	http.HandleFunc("/api/donors/{id}/report", route(http.MethodPost, donorH.HandleReportDonor))

	// ======================= ADMIN ROUTES =======================
	http.HandleFunc("/api/admin/donors", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			route(http.MethodGet, donorH.HandleGetAllDonors)(w, r)
		case http.MethodPost:
			route(http.MethodPost, donorH.HandleAddDonor)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ======================= HEALTH =======================
	http.HandleFunc("/health", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Blood Donor Registry API on port %s\n", port)
	fmt.Printf("========================================\n")
	fmt.Printf("Auth:\n")
	fmt.Printf("  POST /api/admin/login\n")
	fmt.Printf("  POST /api/donors/register/initiate\n")
	fmt.Printf("  POST /api/donors/register/complete?otp=NNNNNN\n")
	fmt.Printf("  POST /api/donors/login/request-otp\n")
	fmt.Printf("  POST /api/donors/login\n")
	fmt.Printf("Donors:\n")
	fmt.Printf("  POST   /api/donors/search\n")
	fmt.Printf("  GET    /api/donors/{id}\n")
	fmt.Printf("  PUT    /api/donors/{id}\n")
	fmt.Printf("  DELETE /api/donors/{id}\n")
	fmt.Printf("  PUT    /api/donors/{id}/status\n")
	fmt.Printf("  POST   /api/donors/{id}/report\n")
	fmt.Printf("Admin:\n")
	fmt.Printf("  GET  /api/admin/donors\n")
	fmt.Printf("  POST /api/admin/donors\n")
	fmt.Printf("Health:\n")
	fmt.Printf("  GET /health\n")
	fmt.Printf("========================================\n\n")

	// ======================= START SCHEDULER =======================
	// The sweep also runs once at startup inside Start()
	otpCleanup := scheduler.NewOtpCleanupScheduler(otpRepo, cfg.OTPSweepMinutes)
	otpCleanup.Start()
	defer otpCleanup.Stop()

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
