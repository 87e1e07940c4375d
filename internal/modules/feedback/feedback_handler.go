package feedback

import (
	"net/http"

	"home-kitchen-market/internal/models"
	"home-kitchen-market/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for feedback.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new feedback handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SubmitFeedback(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.SubmitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	fb, err := h.svc.Submit(c.Request().Context(), userID, c.Param("orderId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, fb)
}

// GetVendorRating is public: prospective customers read it before ordering.
func (h *Handler) GetVendorRating(c echo.Context) error {
	agg, err := h.svc.VendorAggregate(c.Request().Context(), c.Param("vendorId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, agg)
}

func (h *Handler) ListVendorFeedback(c echo.Context) error {
	page, limit := utils.GetPageLimit(c)
	items, total, err := h.svc.ListVendorFeedback(c.Request().Context(), c.Param("vendorId"), page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve feedback")
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"feedback": items, "total": total})
}

func (h *Handler) RespondToFeedback(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.VendorResponseRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	fb, err := h.svc.RespondToFeedback(c.Request().Context(), userID, c.Param("feedbackId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, fb)
}
