package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/blood-donor-services/common/errors"
	"github.com/blood-donor-services/common/jwt"
	"github.com/blood-donor-services/common/logger"
	"github.com/blood-donor-services/common/response"
	"github.com/blood-donor-services/services/donor-lambda/models"
	"github.com/blood-donor-services/services/donor-lambda/usecase"
)

var log = logger.Default().With("component", "donor-handler")

// DonorHandler handles donor profile, search and report requests
type DonorHandler struct {
	useCase *usecase.DonorUseCase
	tokens  *jwt.TokenService
}

// NewDonorHandler creates a new donor handler
func NewDonorHandler(uc *usecase.DonorUseCase, tokens *jwt.TokenService) *DonorHandler {
	return &DonorHandler{useCase: uc, tokens: tokens}
}

// HandleSearchDonors handles POST /api/donors/search
func (h *DonorHandler) HandleSearchDonors(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.DonorSearchRequest
	if request.Body != "" {
		if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
			return createErrorResponse(http.StatusBadRequest, "Invalid request body")
		}
	}

	donors, err := h.useCase.SearchDonors(ctx, req)
	if err != nil {
		return errorResponseFrom(err)
	}
	return createSuccessResponse(http.StatusOK, donors)
}

// HandleGetDonor handles GET /api/donors/{id}
func (h *DonorHandler) HandleGetDonor(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id, err := donorID(request)
	if err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid donor id")
	}

	donor, err := h.useCase.GetDonor(ctx, id)
	if err != nil {
		return errorResponseFrom(err)
	}
	return createSuccessResponse(http.StatusOK, donor)
}

// HandleGetAllDonors handles GET /api/admin/donors. Admin only.
func (h *DonorHandler) HandleGetAllDonors(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if resp, ok := h.requireAdmin(request); !ok {
		return resp, nil
	}

	donors, err := h.useCase.GetAllDonors(ctx)
	if err != nil {
		return errorResponseFrom(err)
	}
	return createSuccessResponse(http.StatusOK, donors)
}

// HandleAddDonor handles POST /api/admin/donors. Admin only; creates a
// verified donor without the OTP flow.
func (h *DonorHandler) HandleAddDonor(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if resp, ok := h.requireAdmin(request); !ok {
		return resp, nil
	}

	var req models.AddDonorRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	donor, err := h.useCase.AdminAddDonor(ctx, req)
	if err != nil {
		return errorResponseFrom(err)
	}

	log.Info("Donor added by admin: donorId=%d", donor.ID)
	return createSuccessResponse(http.StatusCreated, donor)
}

// HandleUpdateDonor handles PUT /api/donors/{id}. The caller must be an
// admin or the donor being updated.
func (h *DonorHandler) HandleUpdateDonor(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id, err := donorID(request)
	if err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid donor id")
	}
	if resp, ok := h.requireSelfOrAdmin(request, id); !ok {
		return resp, nil
	}

	var req models.UpdateDonorRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	donor, err := h.useCase.UpdateDonor(ctx, id, req)
	if err != nil {
		return errorResponseFrom(err)
	}
	return createSuccessResponse(http.StatusOK, donor)
}

// HandleUpdateDonorStatus handles PUT /api/donors/{id}/status
func (h *DonorHandler) HandleUpdateDonorStatus(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id, err := donorID(request)
	if err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid donor id")
	}
	if resp, ok := h.requireSelfOrAdmin(request, id); !ok {
		return resp, nil
	}

	var req models.UpdateStatusRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	donor, err := h.useCase.UpdateDonorStatus(ctx, id, req)
	if err != nil {
		return errorResponseFrom(err)
	}

	log.Info("Donor status updated: donorId=%d status=%s", id, donor.AvailabilityStatus)
	return createSuccessResponse(http.StatusOK, donor)
}

// HandleDeleteDonor handles DELETE /api/donors/{id}. Admin only.
func (h *DonorHandler) HandleDeleteDonor(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if resp, ok := h.requireAdmin(request); !ok {
		return resp, nil
	}

	id, err := donorID(request)
	if err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid donor id")
	}

	if err := h.useCase.DeleteDonor(ctx, id); err != nil {
		return errorResponseFrom(err)
	}
	return createMessageResponse(http.StatusOK, "Donor deleted")
}

// HandleReportDonor handles POST /api/donors/{id}/report. Open to any
// caller; only sends a notification email, never mutates the donor.
func (h *DonorHandler) HandleReportDonor(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id, err := donorID(request)
	if err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid donor id")
	}

	var req models.ReportDonorRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.useCase.ReportDonor(ctx, id, req); err != nil {
		return errorResponseFrom(err)
	}
	return createMessageResponse(http.StatusOK, "Report notification sent")
}

// Helper functions

func donorID(request events.APIGatewayProxyRequest) (int64, error) {
	return strconv.ParseInt(request.PathParameters["id"], 10, 64)
}

func extractToken(request events.APIGatewayProxyRequest) string {
	if auth := request.Headers["Authorization"]; auth != "" {
		if len(auth) > 7 && auth[:7] == "Bearer " {
			return auth[7:]
		}
	}
	if auth := request.Headers["authorization"]; auth != "" {
		if len(auth) > 7 && auth[:7] == "Bearer " {
			return auth[7:]
		}
	}
	return ""
}

// requireAdmin returns (errorResponse, false) unless the request
// carries a valid ADMIN token.
func (h *DonorHandler) requireAdmin(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, bool) {
	token := extractToken(request)
	if token == "" {
		resp, _ := createErrorResponse(http.StatusUnauthorized, "Missing authorization token")
		return resp, false
	}
	if !h.tokens.IsAdmin(token) {
		resp, _ := createErrorResponse(http.StatusForbidden, "Admin access required")
		return resp, false
	}
	return events.APIGatewayProxyResponse{}, true
}

// requireSelfOrAdmin allows the donor themselves or an admin
func (h *DonorHandler) requireSelfOrAdmin(request events.APIGatewayProxyRequest, donorID int64) (events.APIGatewayProxyResponse, bool) {
	token := extractToken(request)
	if token == "" {
		resp, _ := createErrorResponse(http.StatusUnauthorized, "Missing authorization token")
		return resp, false
	}
	claims := h.tokens.ValidateToken(token)
	if claims == nil {
		resp, _ := createErrorResponse(http.StatusUnauthorized, "Invalid or expired token")
		return resp, false
	}
	if claims.Role != "ADMIN" && claims.UserID != donorID {
		resp, _ := createErrorResponse(http.StatusForbidden, "You can only modify your own profile")
		return resp, false
	}
	return events.APIGatewayProxyResponse{}, true
}

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

// errorResponseFrom maps an application error to its HTTP status
func errorResponseFrom(err error) (events.APIGatewayProxyResponse, error) {
	appErr := apperrors.ToAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	return createErrorResponse(appErr.HTTPStatus, appErr.Message)
}
