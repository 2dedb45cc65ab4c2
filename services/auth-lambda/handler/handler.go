package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/blood-donor-services/common/errors"
	"github.com/blood-donor-services/common/logger"
	"github.com/blood-donor-services/common/response"
	"github.com/blood-donor-services/services/auth-lambda/models"
	"github.com/blood-donor-services/services/auth-lambda/usecase"
)

var log = logger.Default().With("component", "auth-handler")

// AuthHandler handles login and registration requests
type AuthHandler struct {
	useCase *usecase.AuthUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(uc *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: uc}
}

// HandleAdminLogin handles POST /api/admin/login
func (h *AuthHandler) HandleAdminLogin(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.AdminLoginRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return createErrorResponse(http.StatusBadRequest, "Username and password are required")
	}

	resp, err := h.useCase.AdminLogin(req)
	if err != nil {
		return errorResponseFrom(err)
	}
	return createSuccessResponse(http.StatusOK, resp)
}

// HandleRegisterInitiate handles POST /api/donors/register/initiate.
// Validates the profile, rejects duplicates and emails an OTP.
func (h *AuthHandler) HandleRegisterInitiate(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.RegistrationRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.useCase.InitiateRegistration(ctx, req); err != nil {
		return errorResponseFrom(err)
	}

	log.Info("Registration OTP sent: email=%s", req.Email)
	return createMessageResponse(http.StatusOK, "OTP sent to email")
}

// HandleRegisterComplete handles POST /api/donors/register/complete?otp=NNNNNN.
// Consumes the OTP and creates the donor.
func (h *AuthHandler) HandleRegisterComplete(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	otp := request.QueryStringParameters["otp"]
	if otp == "" {
		return createErrorResponse(http.StatusBadRequest, "Missing otp query parameter")
	}

	var req models.RegistrationRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	donor, loginResp, err := h.useCase.CompleteRegistration(ctx, req, otp)
	if err != nil {
		return errorResponseFrom(err)
	}

	log.Info("Donor registered: donorId=%d email=%s", donor.ID, donor.Email)
	resp := map[string]interface{}{
		"donor": donor,
		"auth":  loginResp,
	}
	return writeAPIResponse(http.StatusCreated, response.SuccessMessageResponse("Registration complete", resp))
}

// HandleLoginRequestOTP handles POST /api/donors/login/request-otp
func (h *AuthHandler) HandleLoginRequestOTP(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" {
		return createErrorResponse(http.StatusBadRequest, "Email is required")
	}

	if err := h.useCase.RequestLoginCode(ctx, req.Email); err != nil {
		return errorResponseFrom(err)
	}

	log.Info("Login OTP sent: email=%s", req.Email)
	return createMessageResponse(http.StatusOK, "OTP sent to email")
}

// HandleDonorLogin handles POST /api/donors/login
func (h *AuthHandler) HandleDonorLogin(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.OtpLoginRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Otp == "" {
		return createErrorResponse(http.StatusBadRequest, "Email and OTP are required")
	}

	resp, err := h.useCase.DonorOTPLogin(ctx, req)
	if err != nil {
		return errorResponseFrom(err)
	}
	return createSuccessResponse(http.StatusOK, resp)
}

// Helper functions

func writeAPIResponse(statusCode int, resp response.APIResponse) (events.APIGatewayProxyResponse, error) {
	body, _ := resp.ToJSON()

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: body,
	}, nil
}

func createSuccessResponse(statusCode int, data interface{}) (events.APIGatewayProxyResponse, error) {
	return writeAPIResponse(statusCode, response.SuccessResponse(data))
}

func createMessageResponse(statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return writeAPIResponse(statusCode, response.MessageResponse(message))
}

func createErrorResponse(statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return writeAPIResponse(statusCode, response.ErrorResponse(message))
}

// errorResponseFrom maps an application error to its HTTP status.
// Internal details are logged, not returned to the client.
func errorResponseFrom(err error) (events.APIGatewayProxyResponse, error) {
	appErr := apperrors.ToAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	return createErrorResponse(appErr.HTTPStatus, appErr.Message)
}
