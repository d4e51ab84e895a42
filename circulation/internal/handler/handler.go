package handler

import (
	"net/http"

	_ "github.com/Astemirdum/circulation-service/circulation/docs"
	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/Astemirdum/circulation-service/pkg/auth"
	md "github.com/Astemirdum/circulation-service/pkg/middleware"
	"github.com/Astemirdum/circulation-service/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	circulationSvc CirculationService
	jwtSecret      []byte
	log            *zap.Logger
}

type Option func(h *Handler)

// WithJWTSecret switches the api from trusted gateway headers to HS256 bearer tokens.
func WithJWTSecret(secret string) Option {
	return func(h *Handler) {
		if secret != "" {
			h.jwtSecret = []byte(secret)
		}
	}
}

func New(circulationSvc CirculationService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		circulationSvc: circulationSvc,
		log:            log,
	}
	for _, opt := range opts {
		opt(h)
	}
	if len(h.jwtSecret) == 0 {
		h.log.Warn("JWT_SECRET is empty: identity and admin role are taken from X-User-Name/X-User-Role headers, run behind a trusted gateway only")
	}
	return h
}

// @title Circulation Service API
// @version 1.0
// @BasePath /api/v1
func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	authMW := md.AuthContext
	if len(h.jwtSecret) > 0 {
		authMW = md.JwtAuthentication(h.jwtSecret)
	}
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		authMW,
	)

	api.POST("/loans", h.Checkout)
	api.GET("/loans", h.ListActiveLoans)
	api.GET("/loans/overdue", h.ListOverdue)
	api.GET("/loans/:loanId", h.GetLoan)
	api.POST("/loans/:loanId/return", h.Checkin)
	api.POST("/loans/:loanId/renew", h.Renew)

	api.GET("/items/:itemId", h.GetItem)
	api.GET("/items/:itemId/can-borrow", h.CanBorrow)
	api.GET("/policies/:category", h.GetPolicy)

	admin := api.Group("/admin", md.RequireAdmin)
	admin.POST("/loans/:loanId/return", h.AdminForceReturn)
	admin.POST("/loans/:loanId/renew", h.AdminForceRenew)
	admin.GET("/loans/overdue", h.AdminListOverdue)
	admin.GET("/items/:itemId/loans", h.AdminListItemLoans)
	admin.POST("/items/:itemId/withdraw", h.AdminWithdrawItem)
	admin.POST("/sweep", h.AdminSweep)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// statusOf maps an error kind onto the http status of the response.
func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindItemNotFound, errs.KindLoanNotFound, errs.KindPolicyNotFound:
		return http.StatusNotFound
	case errs.KindNotLoanOwner:
		return http.StatusForbidden
	case errs.KindDuplicateActiveLoan, errs.KindAlreadyReturned, errs.KindNoAvailableCopies,
		errs.KindItemWithdrawn, errs.KindConcurrencyConflict:
		return http.StatusConflict
	case errs.KindPolicyInactive, errs.KindBorrowLimitExceeded, errs.KindNotRenewable:
		return http.StatusUnprocessableEntity
	case errs.KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(err error) error {
	kind := errs.KindOf(err)
	return echo.NewHTTPError(statusOf(kind), errs.ErrorResponse{ErrorKind: kind, Message: err.Error()})
}

func borrower(c echo.Context) (string, error) {
	userName, err := auth.GetUserName(c.Request().Context())
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return userName, nil
}

// Checkout
// @Summary checkout an item
// @Tags loans
// @Accept json
// @Produce json
// @Param input body model.CheckoutRequest true "item and category"
// @Success 201 {object} model.CheckoutResponse
// @Failure 409 {object} errs.ErrorResponse
// @Failure 422 {object} errs.ErrorResponse
// @Router /loans [post]
func (h *Handler) Checkout(c echo.Context) error {
	userName, err := borrower(c)
	if err != nil {
		return err
	}
	var req model.CheckoutRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.BorrowerID = userName
	if err = c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loan, err := h.circulationSvc.Checkout(c.Request().Context(), req.ItemID, req.BorrowerID, req.Category)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, model.CheckoutResponse{LoanID: loan.LoanID, DueAt: loan.DueAt})
}

// Checkin
// @Summary return a loan
// @Tags loans
// @Produce json
// @Param loanId path string true "loan id"
// @Success 200 {object} model.OkResponse
// @Failure 409 {object} errs.ErrorResponse
// @Router /loans/{loanId}/return [post]
func (h *Handler) Checkin(c echo.Context) error {
	userName, err := borrower(c)
	if err != nil {
		return err
	}
	if err = h.circulationSvc.Checkin(c.Request().Context(), c.Param("loanId"), userName); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.OkResponse{Ok: true})
}

// Renew
// @Summary renew a loan
// @Tags loans
// @Produce json
// @Param loanId path string true "loan id"
// @Success 200 {object} model.RenewResponse
// @Failure 422 {object} errs.ErrorResponse
// @Router /loans/{loanId}/renew [post]
func (h *Handler) Renew(c echo.Context) error {
	userName, err := borrower(c)
	if err != nil {
		return err
	}
	due, err := h.circulationSvc.Renew(c.Request().Context(), c.Param("loanId"), userName)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.RenewResponse{NewDueAt: due})
}

// @Summary active loans of the caller
// @Tags loans
// @Produce json
// @Success 200 {object} model.ListLoans
// @Router /loans [get]
func (h *Handler) ListActiveLoans(c echo.Context) error {
	userName, err := borrower(c)
	if err != nil {
		return err
	}
	loans, err := h.circulationSvc.ListActiveLoans(c.Request().Context(), userName)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// @Summary overdue loans of the caller
// @Tags loans
// @Produce json
// @Success 200 {object} model.ListLoans
// @Router /loans/overdue [get]
func (h *Handler) ListOverdue(c echo.Context) error {
	userName, err := borrower(c)
	if err != nil {
		return err
	}
	loans, err := h.circulationSvc.ListOverdue(c.Request().Context(), userName)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// @Summary loan of the caller
// @Tags loans
// @Produce json
// @Param loanId path string true "loan id"
// @Success 200 {object} model.LoanRecord
// @Failure 403 {object} errs.ErrorResponse
// @Failure 404 {object} errs.ErrorResponse
// @Router /loans/{loanId} [get]
func (h *Handler) GetLoan(c echo.Context) error {
	userName, err := borrower(c)
	if err != nil {
		return err
	}
	loan, err := h.circulationSvc.GetLoan(c.Request().Context(), c.Param("loanId"), userName)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, loan)
}

// @Summary item availability
// @Tags items
// @Produce json
// @Param itemId path string true "item id"
// @Success 200 {object} model.Item
// @Failure 404 {object} errs.ErrorResponse
// @Router /items/{itemId} [get]
func (h *Handler) GetItem(c echo.Context) error {
	item, err := h.circulationSvc.GetItem(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, item)
}

// @Summary check whether the caller may borrow the item
// @Tags items
// @Produce json
// @Param itemId path string true "item id"
// @Param category query string true "borrower category"
// @Success 200 {object} model.CanBorrowResponse
// @Router /items/{itemId}/can-borrow [get]
func (h *Handler) CanBorrow(c echo.Context) error {
	userName, err := borrower(c)
	if err != nil {
		return err
	}
	category := c.QueryParam("category")
	if category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category is required")
	}
	resp, err := h.circulationSvc.CanBorrow(c.Request().Context(), userName, category, c.Param("itemId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// @Summary policy of a category
// @Tags policies
// @Produce json
// @Param category path string true "category"
// @Success 200 {object} model.Policy
// @Failure 404 {object} errs.ErrorResponse
// @Router /policies/{category} [get]
func (h *Handler) GetPolicy(c echo.Context) error {
	policy, err := h.circulationSvc.GetPolicy(c.Request().Context(), c.Param("category"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, policy)
}
