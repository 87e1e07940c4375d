package subscriptions

import (
	"net/http"
	"time"

	"home-kitchen-market/internal/models"
	"home-kitchen-market/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for subscriptions.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new subscription handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateSubscription(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	sub, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, sub)
}

func (h *Handler) ListMySubscriptions(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	subs, total, err := h.svc.ListMySubscriptions(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve subscriptions")
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"subscriptions": subs, "total": total})
}

func (h *Handler) GetSubscriptionDetails(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	sub, err := h.svc.GetSubscriptionDetails(c.Request().Context(), c.Param("subscriptionId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, sub)
}

// GetNextDelivery reports the next calendar date the plan's weekday rule
// produces, optionally as of a caller-supplied ?as_of=YYYY-MM-DD date.
func (h *Handler) GetNextDelivery(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	asOf := time.Now().UTC()
	if raw := c.QueryParam("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.RespondWithError(c, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		}
		asOf = parsed
	}

	resp, err := h.svc.NextDelivery(c.Request().Context(), c.Param("subscriptionId"), userID, role, asOf)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, resp)
}

func (h *Handler) RecordDelivery(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	result, err := h.svc.RecordDelivery(c.Request().Context(), c.Param("subscriptionId"), userID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, result)
}

func (h *Handler) PauseSubscription(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	sub, err := h.svc.Pause(c.Request().Context(), c.Param("subscriptionId"), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, sub)
}

func (h *Handler) ResumeSubscription(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	sub, err := h.svc.Resume(c.Request().Context(), c.Param("subscriptionId"), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, sub)
}

func (h *Handler) CancelSubscription(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	sub, err := h.svc.Cancel(c.Request().Context(), c.Param("subscriptionId"), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, sub)
}
