package integration

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
)

const testWallet = "TQrY8bkbpXKPt2qN5UaS3kzFnkqJDbQLtj"

func TestWithdrawalPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	e := newEnv(t, stubRand{0})

	requestWithdrawal := func(t *testing.T, req dto.RequestWithdrawalRequest) *httptest.ResponseRecorder {
		t.Helper()

		body, _ := json.Marshal(req)
		r := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, r)

		return w
	}

	t.Run("request deducts gross and parks in audit", func(t *testing.T) {
		e.db.TruncateAll(ctx)

		user := e.db.CreateTestSubscriber(ctx, "BRONZE", 0, decimal.NewFromInt(100))

		w := requestWithdrawal(t, dto.RequestWithdrawalRequest{
			UserID:   user.ID,
			Amount:   decimal.NewFromInt(50),
			ToWallet: testWallet,
			Network:  "TRC20",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var resp dto.WithdrawalResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if resp.Status != string(domain.WithdrawalPendingAudit) {
			t.Errorf("expected pending_audit, got %s", resp.Status)
		}
		if !resp.FeeAmount.Equal(decimal.NewFromFloat(0.5)) {
			t.Errorf("expected fee 0.5, got %s", resp.FeeAmount)
		}
		if !resp.NetAmount.Equal(decimal.NewFromFloat(49.5)) {
			t.Errorf("expected net 49.5, got %s", resp.NetAmount)
		}

		updated, _ := e.userRepo.GetByID(ctx, user.ID)
		if !updated.UsdtBalance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected balance 50 after request, got %s", updated.UsdtBalance)
		}
	})

	t.Run("reject insufficient balance and below minimum", func(t *testing.T) {
		e.db.TruncateAll(ctx)

		user := e.db.CreateTestSubscriber(ctx, "BRONZE", 0, decimal.NewFromInt(20))

		w := requestWithdrawal(t, dto.RequestWithdrawalRequest{
			UserID: user.ID, Amount: decimal.NewFromInt(200), ToWallet: testWallet, Network: "TRC20",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d for insufficient balance, got %d", http.StatusBadRequest, w.Code)
		}

		w = requestWithdrawal(t, dto.RequestWithdrawalRequest{
			UserID: user.ID, Amount: decimal.NewFromInt(5), ToWallet: testWallet, Network: "TRC20",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d for below minimum, got %d", http.StatusBadRequest, w.Code)
		}

		// Neither attempt moved money
		updated, _ := e.userRepo.GetByID(ctx, user.ID)
		if !updated.UsdtBalance.Equal(decimal.NewFromInt(20)) {
			t.Errorf("expected untouched balance 20, got %s", updated.UsdtBalance)
		}
	})

	t.Run("full pipeline to approved", func(t *testing.T) {
		e.db.TruncateAll(ctx)

		user := e.db.CreateTestSubscriber(ctx, "BRONZE", 0, decimal.NewFromInt(100))

		w := requestWithdrawal(t, dto.RequestWithdrawalRequest{
			UserID: user.ID, Amount: decimal.NewFromInt(50), ToWallet: testWallet, Network: "TRC20",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("request failed: %d %s", w.Code, w.Body.String())
		}

		var created dto.WithdrawalResponse
		json.Unmarshal(w.Body.Bytes(), &created)

		// Audit delay elapsed
		later := time.Now().UTC().Add(25 * time.Hour)

		promoted, err := e.withdrawalUC.PromoteReady(ctx, later)
		if err != nil {
			t.Fatalf("promotion failed: %v", err)
		}
		if promoted != 1 {
			t.Fatalf("expected 1 promoted, got %d", promoted)
		}

		batch, err := e.withdrawalUC.BatchReady(ctx, later)
		if err != nil {
			t.Fatalf("batching failed: %v", err)
		}
		if batch == nil || batch.Count != 1 {
			t.Fatalf("expected batch of 1, got %+v", batch)
		}
		if !batch.TotalNet.Equal(decimal.NewFromFloat(49.5)) {
			t.Errorf("expected batch total 49.5, got %s", batch.TotalNet)
		}

		aw := httptest.NewRecorder()
		e.router.ServeHTTP(aw, httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals/"+created.ID+"/approve", nil))

		if aw.Code != http.StatusOK {
			t.Fatalf("approve failed: %d %s", aw.Code, aw.Body.String())
		}

		var approved dto.WithdrawalResponse
		json.Unmarshal(aw.Body.Bytes(), &approved)

		if approved.Status != string(domain.WithdrawalApproved) {
			t.Errorf("expected approved, got %s", approved.Status)
		}
		if approved.BatchID == nil || *approved.BatchID != batch.ID {
			t.Errorf("expected batch id %s, got %v", batch.ID, approved.BatchID)
		}

		// Approving an already terminal withdrawal is refused
		again := httptest.NewRecorder()
		e.router.ServeHTTP(again, httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals/"+created.ID+"/approve", nil))
		if again.Code != http.StatusConflict {
			t.Errorf("expected status %d on double approve, got %d", http.StatusConflict, again.Code)
		}

		// The chain records request, fee, net and completion
		vw := httptest.NewRecorder()
		e.router.ServeHTTP(vw, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+user.ID+"/ledger/verify", nil))

		var report dto.ChainReportResponse
		json.Unmarshal(vw.Body.Bytes(), &report)

		if !report.Valid {
			t.Errorf("expected valid chain, broken at %s", report.BrokenEntryID)
		}
		if report.Entries != 4 {
			t.Errorf("expected 4 chain entries, got %d", report.Entries)
		}
	})

	t.Run("rejection refunds the gross amount", func(t *testing.T) {
		e.db.TruncateAll(ctx)

		user := e.db.CreateTestSubscriber(ctx, "BRONZE", 0, decimal.NewFromInt(100))

		w := requestWithdrawal(t, dto.RequestWithdrawalRequest{
			UserID: user.ID, Amount: decimal.NewFromInt(50), ToWallet: testWallet, Network: "TRC20",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("request failed: %d %s", w.Code, w.Body.String())
		}

		var created dto.WithdrawalResponse
		json.Unmarshal(w.Body.Bytes(), &created)

		body, _ := json.Marshal(dto.RejectWithdrawalRequest{Reason: "suspicious wallet"})
		rw := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals/"+created.ID+"/reject", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		e.router.ServeHTTP(rw, r)

		if rw.Code != http.StatusOK {
			t.Fatalf("reject failed: %d %s", rw.Code, rw.Body.String())
		}

		updated, _ := e.userRepo.GetByID(ctx, user.ID)
		if !updated.UsdtBalance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected full refund to 100, got %s", updated.UsdtBalance)
		}
	})
}
