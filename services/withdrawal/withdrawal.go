package withdrawal

import (
	"context"
	"strings"
	"time"

	userRepo "glowclinic/database/repository/user"
	withdrawalRepo "glowclinic/database/repository/withdrawal"
	"glowclinic/models"
	"glowclinic/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WithdrawalService interface {
	Request(ctx context.Context, user *models.User, req models.WithdrawalRequest) (*models.Withdrawal, error)
	ListForUser(ctx context.Context, user *models.User) (*models.WithdrawalSummary, error)
	AdminList(ctx context.Context, status string) ([]models.Withdrawal, error)
	AdminUpdateStatus(ctx context.Context, update models.WithdrawalStatusUpdate, adminID string) (*models.Withdrawal, error)
}

type DefaultWithdrawalService struct {
	Withdrawals  withdrawalRepo.WithdrawalRepository
	BankAccounts withdrawalRepo.BankAccountRepository
	Users        userRepo.UserRepository
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultWithdrawalService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultWithdrawalService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// transitions lists the statuses each status may move to. Staying put only updates
// the admin notes.
var transitions = map[string][]string{
	models.WithdrawalPending:  {models.WithdrawalApproved, models.WithdrawalRejected, models.WithdrawalCompleted},
	models.WithdrawalApproved: {models.WithdrawalCompleted},
}

func validStatus(status string) bool {
	switch status {
	case models.WithdrawalPending, models.WithdrawalApproved, models.WithdrawalRejected, models.WithdrawalCompleted:
		return true
	}
	return false
}

func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validateRequest(req *models.WithdrawalRequest) error {
	req.AccountType = strings.ToLower(strings.TrimSpace(req.AccountType))
	req.BankName = strings.TrimSpace(req.BankName)
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	req.AccountHolderName = strings.TrimSpace(req.AccountHolderName)

	if req.AccountType != models.AccountTypeBank && req.AccountType != models.AccountTypeEWallet {
		return utils.NewBadRequest("accountType must be bank or ewallet")
	}
	if req.BankName == "" || req.AccountNumber == "" || req.AccountHolderName == "" {
		return utils.NewBadRequest("bankName, accountNumber and accountHolderName are required")
	}
	if req.Amount <= 0 {
		return utils.NewBadRequest("amount must be greater than zero")
	}
	return nil
}

// Request reserves the amount from the user's earnings and files a pending
// withdrawal. The balance only moves when the conditional deduction succeeds.
func (s *DefaultWithdrawalService) Request(ctx context.Context, user *models.User, req models.WithdrawalRequest) (*models.Withdrawal, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	amount, _ := decimal.NewFromFloat(req.Amount).Round(2).Float64()
	if amount <= 0 {
		return nil, utils.NewBadRequest("amount must be greater than zero")
	}
	if decimal.NewFromFloat(user.TotalEarnings).LessThan(decimal.NewFromFloat(amount)) {
		return nil, utils.NewBadRequest("insufficient balance")
	}

	now := s.now()
	account, err := s.BankAccounts.FindOrCreate(ctx, &models.BankAccount{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		Type:              req.AccountType,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		AccountHolderName: req.AccountHolderName,
		CreatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	deducted, err := s.Users.DeductEarnings(ctx, user.ID, amount)
	if err != nil {
		return nil, err
	}
	if !deducted {
		return nil, utils.NewBadRequest("insufficient balance")
	}

	w := &models.Withdrawal{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		BankAccountID: account.ID,
		Amount:        amount,
		Status:        models.WithdrawalPending,
		RequestDate:   now,
	}
	if err := s.Withdrawals.Create(ctx, w); err != nil {
		if refundErr := s.Users.RefundEarnings(ctx, user.ID, amount); refundErr != nil {
			s.logger().Error("Failed to refund earnings after withdrawal insert failed",
				zap.String("userId", user.ID),
				zap.Float64("amount", amount),
				zap.Error(refundErr))
		}
		return nil, err
	}
	user.TotalEarnings, _ = decimal.NewFromFloat(user.TotalEarnings).Sub(decimal.NewFromFloat(amount)).Round(2).Float64()

	s.logger().Info("Withdrawal requested",
		zap.String("withdrawalId", w.ID),
		zap.String("userId", user.ID),
		zap.Float64("amount", amount))
	w.BankAccount = account
	return w, nil
}

func (s *DefaultWithdrawalService) ListForUser(ctx context.Context, user *models.User) (*models.WithdrawalSummary, error) {
	items, err := s.Withdrawals.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.joinAccounts(ctx, items); err != nil {
		return nil, err
	}
	current, err := s.Users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	balance := user.TotalEarnings
	if current != nil {
		balance = current.TotalEarnings
	}
	return &models.WithdrawalSummary{Withdrawals: items, TotalEarnings: balance}, nil
}

func (s *DefaultWithdrawalService) AdminList(ctx context.Context, status string) ([]models.Withdrawal, error) {
	if status != "" && !validStatus(status) {
		return nil, utils.NewBadRequest("invalid status filter")
	}
	items, err := s.Withdrawals.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if err := s.joinAccounts(ctx, items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	ids := make([]string, 0, len(items))
	for _, w := range items {
		ids = append(ids, w.UserID)
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if u, ok := users[items[i].UserID]; ok && u != nil {
			joined := *u
			items[i].User = &joined
		}
	}
	return items, nil
}

func (s *DefaultWithdrawalService) joinAccounts(ctx context.Context, items []models.Withdrawal) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, w := range items {
		ids = append(ids, w.BankAccountID)
	}
	accounts, err := s.BankAccounts.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if a, ok := accounts[items[i].BankAccountID]; ok && a != nil {
			joined := *a
			items[i].BankAccount = &joined
		}
	}
	return nil
}

// AdminUpdateStatus moves a withdrawal along its lifecycle. Rejecting a pending
// withdrawal returns the amount to the user, once.
func (s *DefaultWithdrawalService) AdminUpdateStatus(ctx context.Context, update models.WithdrawalStatusUpdate, adminID string) (*models.Withdrawal, error) {
	if !validStatus(update.Status) {
		return nil, utils.NewBadRequest("invalid withdrawal status")
	}
	w, err := s.Withdrawals.GetByID(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, utils.NewNotFound("withdrawal not found")
	}
	if !canTransition(w.Status, update.Status) {
		return nil, utils.NewBadRequest("cannot change withdrawal from " + w.Status + " to " + update.Status)
	}

	now := s.now()
	moved, err := s.Withdrawals.Transition(ctx, w.ID, w.Status, update.Status, update.AdminNotes, adminID, now)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, utils.NewConflict("withdrawal was updated by another request, reload and try again")
	}

	if w.Status == models.WithdrawalPending && update.Status == models.WithdrawalRejected {
		if err := s.Users.RefundEarnings(ctx, w.UserID, w.Amount); err != nil {
			s.logger().Error("Withdrawal rejected but refund failed",
				zap.String("withdrawalId", w.ID),
				zap.String("userId", w.UserID),
				zap.Float64("amount", w.Amount),
				zap.Error(err))
			return nil, err
		}
		s.logger().Info("Withdrawal rejected and refunded",
			zap.String("withdrawalId", w.ID),
			zap.Float64("amount", w.Amount))
	}

	w.Status = update.Status
	w.AdminNotes = update.AdminNotes
	w.ProcessedDate = &now
	processedBy := adminID
	w.ProcessedBy = &processedBy
	return w, nil
}
