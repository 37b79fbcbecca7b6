// Package memory keeps every collection in process memory. It backs the "memory"
// database driver for local runs and the service tests, and applies the same
// conditional-update rules as the Mongo repositories.
package memory

import (
	"sort"
	"strings"
	"sync"

	affiliateRepo "glowclinic/database/repository/affiliate"
	reservationRepo "glowclinic/database/repository/reservation"
	transactionRepo "glowclinic/database/repository/transaction"
	treatmentRepo "glowclinic/database/repository/treatment"
	userRepo "glowclinic/database/repository/user"
	withdrawalRepo "glowclinic/database/repository/withdrawal"
	"glowclinic/models"
)

// Store holds all state behind one lock.
type Store struct {
	mu sync.RWMutex

	users        map[string]*models.User
	categories   map[string]*models.TreatmentCategory
	treatments   map[string]*models.Treatment
	reservations map[string]*models.Reservation
	transactions []models.Transaction
	codes        map[string]*models.PreClaimAffiliateCode
	accounts     map[string]*models.BankAccount
	withdrawals  map[string]*models.Withdrawal
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:        map[string]*models.User{},
		categories:   map[string]*models.TreatmentCategory{},
		treatments:   map[string]*models.Treatment{},
		reservations: map[string]*models.Reservation{},
		codes:        map[string]*models.PreClaimAffiliateCode{},
		accounts:     map[string]*models.BankAccount{},
		withdrawals:  map[string]*models.Withdrawal{},
	}
}

func (s *Store) Users() userRepo.UserRepository { return &userStore{s} }
func (s *Store) Treatments() treatmentRepo.TreatmentRepository { return &treatmentStore{s} }
func (s *Store) Reservations() reservationRepo.ReservationRepository { return &reservationStore{s} }
func (s *Store) Transactions() transactionRepo.TransactionRepository { return &transactionStore{s} }
func (s *Store) PreClaimCodes() affiliateRepo.PreClaimCodeRepository { return &codeStore{s} }
func (s *Store) BankAccounts() withdrawalRepo.BankAccountRepository { return &bankAccountStore{s} }
func (s *Store) Withdrawals() withdrawalRepo.WithdrawalRepository { return &withdrawalStore{s} }

func strPtr(s string) *string { return &s }

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortReservationsNewestFirst(items []models.Reservation) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
