package handler

import (
	"io"
	"net/http"

	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// @Summary force-return a loan
// @Tags admin
// @Produce json
// @Param loanId path string true "loan id"
// @Success 200 {object} model.OkResponse
// @Router /admin/loans/{loanId}/return [post]
func (h *Handler) AdminForceReturn(c echo.Context) error {
	if err := h.circulationSvc.AdminForceReturn(c.Request().Context(), c.Param("loanId")); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.OkResponse{Ok: true})
}

// @Summary force-renew a loan
// @Tags admin
// @Accept json
// @Produce json
// @Param loanId path string true "loan id"
// @Param input body model.ForceRenewRequest false "extension in days, 0 uses the policy"
// @Success 200 {object} model.RenewResponse
// @Router /admin/loans/{loanId}/renew [post]
func (h *Handler) AdminForceRenew(c echo.Context) error {
	var req model.ForceRenewRequest
	// an empty body means the policy extension
	if err := c.Bind(&req); err != nil && !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	due, err := h.circulationSvc.AdminForceRenew(c.Request().Context(), c.Param("loanId"), req.ExtendDays)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.RenewResponse{NewDueAt: due})
}

// @Summary overdue loans of a borrower or of everybody
// @Tags admin
// @Produce json
// @Param borrowerId query string false "borrower id"
// @Success 200 {object} model.ListLoans
// @Router /admin/loans/overdue [get]
func (h *Handler) AdminListOverdue(c echo.Context) error {
	loans, err := h.circulationSvc.ListOverdue(c.Request().Context(), c.QueryParam("borrowerId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// @Summary active loans of an item
// @Tags admin
// @Produce json
// @Param itemId path string true "item id"
// @Success 200 {object} model.ListLoans
// @Router /admin/items/{itemId}/loans [get]
func (h *Handler) AdminListItemLoans(c echo.Context) error {
	loans, err := h.circulationSvc.ListItemLoans(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// @Summary withdraw an item from circulation
// @Tags admin
// @Produce json
// @Param itemId path string true "item id"
// @Success 200 {object} model.Item
// @Router /admin/items/{itemId}/withdraw [post]
func (h *Handler) AdminWithdrawItem(c echo.Context) error {
	item, err := h.circulationSvc.WithdrawItem(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, item)
}

// @Summary run the overdue sweep now
// @Tags admin
// @Produce json
// @Success 200 {object} model.SweepResponse
// @Router /admin/sweep [post]
func (h *Handler) AdminSweep(c echo.Context) error {
	n, err := h.circulationSvc.SweepOverdue(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.SweepResponse{Swept: n})
}
