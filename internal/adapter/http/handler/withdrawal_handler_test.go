package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/adapter/http/dto"
	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

type withdrawalServiceStub struct {
	requestFn func(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.Withdrawal, error)
	getFn     func(ctx context.Context, id string) (*domain.Withdrawal, error)
	releaseFn func(ctx context.Context, id string) error
	approveFn func(ctx context.Context, id string) error
	rejectFn  func(ctx context.Context, id, reason string) error
	batchFn   func(ctx context.Context, now time.Time) (*domain.WithdrawalBatch, error)
}

func (s *withdrawalServiceStub) RequestWithdrawal(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.Withdrawal, error) {
	return s.requestFn(ctx, input)
}

func (s *withdrawalServiceStub) GetWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return s.getFn(ctx, id)
}

func (s *withdrawalServiceStub) Release(ctx context.Context, id string) error {
	return s.releaseFn(ctx, id)
}

func (s *withdrawalServiceStub) Approve(ctx context.Context, id string) error {
	return s.approveFn(ctx, id)
}

func (s *withdrawalServiceStub) Reject(ctx context.Context, id, reason string) error {
	return s.rejectFn(ctx, id, reason)
}

func (s *withdrawalServiceStub) BatchReady(ctx context.Context, now time.Time) (*domain.WithdrawalBatch, error) {
	return s.batchFn(ctx, now)
}

const stubWallet = "TWalletAddressLongEnough123"

func TestWithdrawalHandler_Create_Success(t *testing.T) {
	withdrawal := &domain.Withdrawal{
		ID:          "wd-1",
		UserID:      "user-1",
		GrossAmount: decimal.NewFromInt(50),
		FeeAmount:   decimal.NewFromFloat(0.5),
		NetAmount:   decimal.NewFromFloat(49.5),
		Status:      domain.WithdrawalPendingAudit,
	}

	h := NewWithdrawalHandler(&withdrawalServiceStub{
		requestFn: func(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.Withdrawal, error) {
			return withdrawal, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.RequestWithdrawalRequest{
		UserID:   "user-1",
		Amount:   decimal.NewFromInt(50),
		ToWallet: stubWallet,
		Network:  "TRC20",
	})

	req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.WithdrawalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.WithdrawalPendingAudit) {
		t.Fatalf("expected pending_audit, got %s", resp.Status)
	}
}

func TestWithdrawalHandler_Create_InsufficientBalance(t *testing.T) {
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		requestFn: func(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.Withdrawal, error) {
			return nil, domain.ErrInsufficientBalance
		},
	}, nil)

	body, _ := json.Marshal(dto.RequestWithdrawalRequest{
		UserID:   "user-1",
		Amount:   decimal.NewFromInt(500),
		ToWallet: stubWallet,
		Network:  "TRC20",
	})

	req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWithdrawalHandler_Create_ShortWallet(t *testing.T) {
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		requestFn: func(ctx context.Context, input usecase.RequestWithdrawalInput) (*domain.Withdrawal, error) {
			t.Fatal("RequestWithdrawal should not be called for invalid payload")
			return nil, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.RequestWithdrawalRequest{
		UserID:   "user-1",
		Amount:   decimal.NewFromInt(50),
		ToWallet: "short",
		Network:  "TRC20",
	})

	req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWithdrawalHandler_Approve_InvalidTransition(t *testing.T) {
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		approveFn: func(ctx context.Context, id string) error {
			return domain.ErrInvalidStatusChange
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd-1/approve", nil)
	req = setChiURLParam(req, "id", "wd-1")
	rec := httptest.NewRecorder()

	h.Approve(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestWithdrawalHandler_Reject_PassesReason(t *testing.T) {
	var gotID, gotReason string

	h := NewWithdrawalHandler(&withdrawalServiceStub{
		rejectFn: func(ctx context.Context, id, reason string) error {
			gotID, gotReason = id, reason
			return nil
		},
		getFn: func(ctx context.Context, id string) (*domain.Withdrawal, error) {
			return &domain.Withdrawal{ID: id, Status: domain.WithdrawalRejected}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.RejectWithdrawalRequest{Reason: "suspicious wallet"})
	req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd-1/reject", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "wd-1")
	rec := httptest.NewRecorder()

	h.Reject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if gotID != "wd-1" || gotReason != "suspicious wallet" {
		t.Fatalf("expected wd-1/suspicious wallet, got %s/%s", gotID, gotReason)
	}
}

func TestWithdrawalHandler_Batch_Empty(t *testing.T) {
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		batchFn: func(ctx context.Context, now time.Time) (*domain.WithdrawalBatch, error) {
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/batch", nil)
	rec := httptest.NewRecorder()

	h.Batch(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestWithdrawalHandler_Batch_Created(t *testing.T) {
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		batchFn: func(ctx context.Context, now time.Time) (*domain.WithdrawalBatch, error) {
			return &domain.WithdrawalBatch{ID: "batch-1", Count: 2, TotalNet: decimal.NewFromInt(99)}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/batch", nil)
	rec := httptest.NewRecorder()

	h.Batch(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.WithdrawalBatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || !resp.TotalNet.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("expected count 2 total 99, got %+v", resp)
	}
}
