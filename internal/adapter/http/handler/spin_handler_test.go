package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

type spinServiceStub struct {
	spinFn func(ctx context.Context, userID string) (*domain.SpinOutcome, error)
	listFn func(ctx context.Context, input usecase.ListSpinsInput) ([]*domain.SpinOutcome, error)
}

func (s *spinServiceStub) Spin(ctx context.Context, userID string) (*domain.SpinOutcome, error) {
	return s.spinFn(ctx, userID)
}

func (s *spinServiceStub) ListSpins(ctx context.Context, input usecase.ListSpinsInput) ([]*domain.SpinOutcome, error) {
	return s.listFn(ctx, input)
}

func TestSpinHandler_Spin_Success(t *testing.T) {
	outcome := &domain.SpinOutcome{
		ID:         "spin-1",
		UserID:     "user-1",
		TierName:   "BRONZE",
		Draw:       3,
		DrawnClass: domain.PrizeJackpot,
		PaidClass:  domain.PrizeJackpot,
		CashAmount: decimal.NewFromInt(50),
	}

	h := NewSpinHandler(&spinServiceStub{
		spinFn: func(ctx context.Context, userID string) (*domain.SpinOutcome, error) {
			if userID != "user-1" {
				t.Fatalf("expected user-1, got %s", userID)
			}
			return outcome, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/users/user-1/spins", nil)
	req = setChiURLParam(req, "userID", "user-1")
	rec := httptest.NewRecorder()

	h.Spin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SpinOutcomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PaidClass != string(domain.PrizeJackpot) {
		t.Fatalf("expected jackpot, got %s", resp.PaidClass)
	}
}

func TestSpinHandler_Spin_NoSpinAvailable(t *testing.T) {
	h := NewSpinHandler(&spinServiceStub{
		spinFn: func(ctx context.Context, userID string) (*domain.SpinOutcome, error) {
			return nil, domain.ErrNoSpinAvailable
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/users/user-1/spins", nil)
	req = setChiURLParam(req, "userID", "user-1")
	rec := httptest.NewRecorder()

	h.Spin(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
}

func TestSpinHandler_History_Pagination(t *testing.T) {
	h := NewSpinHandler(&spinServiceStub{
		listFn: func(ctx context.Context, input usecase.ListSpinsInput) ([]*domain.SpinOutcome, error) {
			if input.Limit != 5 || input.Offset != 10 {
				t.Fatalf("expected limit=5 offset=10, got %+v", input)
			}
			return []*domain.SpinOutcome{{ID: "spin-1"}, {ID: "spin-2"}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/spins?limit=5&offset=10", nil)
	req = setChiURLParam(req, "userID", "user-1")
	rec := httptest.NewRecorder()

	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.SpinOutcomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(resp))
	}
}
