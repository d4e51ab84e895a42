package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/circulation/internal/handler"
	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/Astemirdum/circulation-service/pkg/auth"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	service_mocks "github.com/Astemirdum/circulation-service/circulation/internal/handler/mocks"
)

var due = time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

type request struct {
	method string
	target string
	body   string
	user   string
	role   string
}

type response struct {
	expectedCode int
	expectedBody string
}

type mockBehavior func(r *service_mocks.MockCirculationService)

type testCase struct {
	name         string
	mockBehavior mockBehavior
	request      request
	response     response
}

func run(t *testing.T, tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCirculationService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, log)
			e := h.NewRouter()

			r := httptest.NewRequest(tt.request.method, tt.request.target, http.NoBody)
			if tt.request.body != "" {
				r = httptest.NewRequest(tt.request.method, tt.request.target, strings.NewReader(tt.request.body))
			}
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.request.user != "" {
				r.Header.Set(auth.XUserNameHeader, tt.request.user)
			}
			if tt.request.role != "" {
				r.Header.Set(auth.XUserRoleHeader, tt.request.role)
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Checkout(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().
					Checkout(gomock.Any(), "B1", "U1", "student").
					Return(model.LoanRecord{LoanID: "L1", ItemID: "B1", BorrowerID: "U1", DueAt: due}, nil)
			},
			request: request{method: http.MethodPost, target: "/api/v1/loans", body: `{"itemId":"B1","category":"student"}`, user: "U1"},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"loanId":"L1","dueAt":"2024-01-31T10:00:00Z"}`,
			},
		},
		{
			name: "err. no copies",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().
					Checkout(gomock.Any(), "B1", "U2", "student").
					Return(model.LoanRecord{}, errs.ErrNoAvailableCopies)
			},
			request: request{method: http.MethodPost, target: "/api/v1/loans", body: `{"itemId":"B1","category":"student"}`, user: "U2"},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"errorKind":"NoAvailableCopies","message":"no available copies"}`,
			},
		},
		{
			name: "err. borrow limit",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().
					Checkout(gomock.Any(), "B1", "U1", "student").
					Return(model.LoanRecord{}, errs.ErrBorrowLimitExceeded)
			},
			request: request{method: http.MethodPost, target: "/api/v1/loans", body: `{"itemId":"B1","category":"student"}`, user: "U1"},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `{"errorKind":"BorrowLimitExceeded","message":"borrow limit exceeded"}`,
			},
		},
		{
			name:         "err. category required",
			mockBehavior: func(r *service_mocks.MockCirculationService) {},
			request:      request{method: http.MethodPost, target: "/api/v1/loans", body: `{"itemId":"B1"}`, user: "U1"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'CheckoutRequest.Category' Error:Field validation for 'Category' failed on the 'required' tag"}`,
			},
		},
		{
			name:         "err. no user",
			mockBehavior: func(r *service_mocks.MockCirculationService) {},
			request:      request{method: http.MethodPost, target: "/api/v1/loans", body: `{"itemId":"B1","category":"student"}`},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"user-name is empty"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().
					Checkout(gomock.Any(), "B1", "U1", "student").
					Return(model.LoanRecord{}, errors.New("db internal"))
			},
			request: request{method: http.MethodPost, target: "/api/v1/loans", body: `{"itemId":"B1","category":"student"}`, user: "U1"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"errorKind":"Internal","message":"db internal"}`,
			},
		},
	})
}

func TestHandler_Loans(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name: "checkin ok",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().Checkin(gomock.Any(), "L1", "U1").Return(nil)
			},
			request:  request{method: http.MethodPost, target: "/api/v1/loans/L1/return", user: "U1"},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"ok":true}`},
		},
		{
			name: "checkin twice",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().Checkin(gomock.Any(), "L1", "U1").Return(errs.ErrAlreadyReturned)
			},
			request: request{method: http.MethodPost, target: "/api/v1/loans/L1/return", user: "U1"},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"errorKind":"AlreadyReturned","message":"loan already returned"}`,
			},
		},
		{
			name: "checkin foreign loan",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().Checkin(gomock.Any(), "L1", "U2").Return(errs.ErrNotLoanOwner)
			},
			request: request{method: http.MethodPost, target: "/api/v1/loans/L1/return", user: "U2"},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"errorKind":"NotLoanOwner","message":"loan belongs to another borrower"}`,
			},
		},
		{
			name: "renew ok",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().Renew(gomock.Any(), "L1", "U1").Return(due, nil)
			},
			request:  request{method: http.MethodPost, target: "/api/v1/loans/L1/renew", user: "U1"},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"newDueAt":"2024-01-31T10:00:00Z"}`},
		},
		{
			name: "renew outside window",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().Renew(gomock.Any(), "L1", "U1").Return(time.Time{}, errs.NotRenewable("outside renewal window"))
			},
			request: request{method: http.MethodPost, target: "/api/v1/loans/L1/renew", user: "U1"},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `{"errorKind":"NotRenewable","message":"loan is not renewable: outside renewal window"}`,
			},
		},
		{
			name: "get loan not found",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().GetLoan(gomock.Any(), "L9", "U1").Return(model.LoanRecord{}, errs.ErrLoanNotFound)
			},
			request: request{method: http.MethodGet, target: "/api/v1/loans/L9", user: "U1"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"errorKind":"LoanNotFound","message":"loan not found"}`,
			},
		},
		{
			name: "list active",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().ListActiveLoans(gomock.Any(), "U1").Return(model.ListLoans{Items: []model.LoanRecord{{
					LoanID:     "L1",
					ItemID:     "B1",
					BorrowerID: "U1",
					Category:   "student",
					BorrowedAt: due.AddDate(0, 0, -30),
					DueAt:      due,
					Status:     model.LoanBorrowed,
				}}}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/loans", user: "U1"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"items":[{"loanId":"L1","itemId":"B1","borrowerId":"U1","category":"student","borrowedAt":"2024-01-01T10:00:00Z","dueAt":"2024-01-31T10:00:00Z","renewCount":0,"status":"BORROWED"}]}`,
			},
		},
		{
			name: "list overdue is static route",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().ListOverdue(gomock.Any(), "U1").Return(model.ListLoans{Items: []model.LoanRecord{}}, nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/loans/overdue", user: "U1"},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"items":[]}`},
		},
	})
}

func TestHandler_Items(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name: "get item",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().GetItem(gomock.Any(), "B1").
					Return(model.Item{ItemID: "B1", Title: "Go", TotalCopies: 2, AvailableCopies: 1, Status: model.ItemInStock, Version: 3}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/items/B1", user: "U1"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"itemId":"B1","title":"Go","totalCopies":2,"availableCopies":1,"status":"IN_STOCK"}`,
			},
		},
		{
			name: "can borrow",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().CanBorrow(gomock.Any(), "U1", "student", "B1").
					Return(model.CanBorrowResponse{CanBorrow: false, Reason: string(errs.KindNoAvailableCopies)}, nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/items/B1/can-borrow?category=student", user: "U1"},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"canBorrow":false,"reason":"NoAvailableCopies"}`},
		},
		{
			name:         "can borrow needs category",
			mockBehavior: func(r *service_mocks.MockCirculationService) {},
			request:      request{method: http.MethodGet, target: "/api/v1/items/B1/can-borrow", user: "U1"},
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"category is required"}`},
		},
		{
			name: "policy not found",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().GetPolicy(gomock.Any(), "alien").Return(model.Policy{}, errs.ErrPolicyNotFound)
			},
			request: request{method: http.MethodGet, target: "/api/v1/policies/alien", user: "U1"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"errorKind":"PolicyNotFound","message":"no policy for category"}`,
			},
		},
	})
}

func TestHandler_Admin(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name:         "reader is rejected",
			mockBehavior: func(r *service_mocks.MockCirculationService) {},
			request:      request{method: http.MethodPost, target: "/api/v1/admin/sweep", user: "U1"},
			response:     response{expectedCode: http.StatusForbidden, expectedBody: `{"message":"no admin"}`},
		},
		{
			name: "sweep",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().SweepOverdue(gomock.Any()).Return(2, nil)
			},
			request:  request{method: http.MethodPost, target: "/api/v1/admin/sweep", user: "staff", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"swept":2}`},
		},
		{
			name: "force return",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().AdminForceReturn(gomock.Any(), "L1").Return(nil)
			},
			request:  request{method: http.MethodPost, target: "/api/v1/admin/loans/L1/return", user: "staff", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"ok":true}`},
		},
		{
			name: "force renew",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().AdminForceRenew(gomock.Any(), "L1", 5).Return(due, nil)
			},
			request:  request{method: http.MethodPost, target: "/api/v1/admin/loans/L1/renew", body: `{"extendDays":5}`, user: "staff", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"newDueAt":"2024-01-31T10:00:00Z"}`},
		},
		{
			name: "force renew overdue",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().AdminForceRenew(gomock.Any(), "L1", 0).Return(time.Time{}, errs.NotRenewable("loan is overdue"))
			},
			request: request{method: http.MethodPost, target: "/api/v1/admin/loans/L1/renew", user: "staff", role: auth.RoleAdmin},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `{"errorKind":"NotRenewable","message":"loan is not renewable: loan is overdue"}`,
			},
		},
		{
			name: "force renew empty object",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().AdminForceRenew(gomock.Any(), "L1", 0).Return(due, nil)
			},
			request:  request{method: http.MethodPost, target: "/api/v1/admin/loans/L1/renew", body: `{}`, user: "staff", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"newDueAt":"2024-01-31T10:00:00Z"}`},
		},
		{
			name:         "force renew malformed body",
			mockBehavior: func(r *service_mocks.MockCirculationService) {},
			request:      request{method: http.MethodPost, target: "/api/v1/admin/loans/L1/renew", body: `{"extendDays":`, user: "staff", role: auth.RoleAdmin},
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"code=400, message=unexpected EOF, internal=unexpected EOF"}`},
		},
		{
			name:         "force renew negative",
			mockBehavior: func(r *service_mocks.MockCirculationService) {},
			request:      request{method: http.MethodPost, target: "/api/v1/admin/loans/L1/renew", body: `{"extendDays":-1}`, user: "staff", role: auth.RoleAdmin},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'ForceRenewRequest.ExtendDays' Error:Field validation for 'ExtendDays' failed on the 'gte' tag"}`,
			},
		},
		{
			name: "overdue of everybody",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().ListOverdue(gomock.Any(), "").Return(model.ListLoans{Items: []model.LoanRecord{}}, nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/admin/loans/overdue", user: "staff", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"items":[]}`},
		},
		{
			name: "item loans",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().ListItemLoans(gomock.Any(), "B1").Return(model.ListLoans{Items: []model.LoanRecord{}}, nil)
			},
			request:  request{method: http.MethodGet, target: "/api/v1/admin/items/B1/loans", user: "staff", role: auth.RoleAdmin},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"items":[]}`},
		},
		{
			name: "withdraw twice",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().WithdrawItem(gomock.Any(), "B1").Return(model.Item{}, errs.ErrItemWithdrawn)
			},
			request: request{method: http.MethodPost, target: "/api/v1/admin/items/B1/withdraw", user: "staff", role: auth.RoleAdmin},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"errorKind":"ItemWithdrawn","message":"item is withdrawn from circulation"}`,
			},
		},
	})
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name:         "ok",
			mockBehavior: func(r *service_mocks.MockCirculationService) {},
			request:      request{method: http.MethodGet, target: "/manage/health"},
			response:     response{expectedCode: http.StatusOK, expectedBody: "OK"},
		},
	})
}

func TestHandler_HeaderAuthWarning(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		opts     []handler.Option
		warnings int
	}{
		{name: "header auth", warnings: 1},
		{name: "empty secret", opts: []handler.Option{handler.WithJWTSecret("")}, warnings: 1},
		{name: "jwt auth", opts: []handler.Option{handler.WithJWTSecret("s3cret")}, warnings: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			core, logs := observer.New(zapcore.WarnLevel)
			handler.New(nil, zap.New(core), tt.opts...)
			require.Equal(t, tt.warnings, logs.FilterMessageSnippet("JWT_SECRET is empty").Len())
		})
	}
}
