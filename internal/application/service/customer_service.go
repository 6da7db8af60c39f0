package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/money"
)

// CustomerService handles customers and their credit balance
type CustomerService struct {
	txManager    repository.TransactionManager
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	txManager repository.TransactionManager,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
) *CustomerService {
	return &CustomerService{
		txManager:    txManager,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	UserID  uuid.UUID
	Name    string
	Address string
	Contact string
	// Udhar is an opening balance carried over from a paper ledger.
	Udhar float64
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Name cannot be empty")
	}
	if input.Udhar < 0 {
		return nil, apperror.NewBadRequestError("Udhar cannot be negative")
	}

	customer := &entity.Customer{
		Name:      name,
		Address:   strings.TrimSpace(input.Address),
		Contact:   strings.TrimSpace(input.Contact),
		Udhar:     money.ToCents(input.Udhar),
		CreatedBy: input.UserID,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// GetCustomerDetail retrieves a customer together with the ids of their orders
func (s *CustomerService) GetCustomerDetail(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.orderRepo.IDsByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.OrderIDs = ids
	return customer, nil
}

// ListCustomers lists customers
func (s *CustomerService) ListCustomers(ctx context.Context, params *repository.CustomerFilterParams) ([]entity.Customer, int64, error) {
	return s.customerRepo.List(ctx, params)
}

// UpdateCustomerInput represents the update customer input. Nil fields are left unchanged.
type UpdateCustomerInput struct {
	ID      uuid.UUID
	Name    *string
	Address *string
	Contact *string
}

// UpdateCustomer edits contact details; the credit balance only moves through checkout and repayments
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewBadRequestError("Name cannot be empty")
		}
		customer.Name = name
	}
	if input.Address != nil {
		customer.Address = strings.TrimSpace(*input.Address)
	}
	if input.Contact != nil {
		customer.Contact = strings.TrimSpace(*input.Contact)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer with a settled balance and no open cart
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if customer.Udhar > 0 {
		return apperror.ErrCustomerDebt
	}

	cart, err := s.orderRepo.FindOpenCart(ctx, id)
	if err != nil {
		return err
	}
	if cart != nil {
		return apperror.NewConflictError("Customer has an open cart")
	}
	return s.customerRepo.Delete(ctx, id)
}

// ReturnUdharInput represents a credit repayment
type ReturnUdharInput struct {
	UserID     uuid.UUID
	CustomerID uuid.UUID
	Amount     float64
}

// ReturnUdhar reduces a customer's outstanding credit and books the cash received as a sale
func (s *CustomerService) ReturnUdhar(ctx context.Context, input *ReturnUdharInput) (*entity.Customer, error) {
	amount := money.ToCents(input.Amount)
	if amount <= 0 {
		return nil, apperror.NewBadRequestError("Return amount must be greater than zero")
	}

	var updated *entity.Customer
	err := s.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		customer, err := repos.Customers().GetByID(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}
		if amount > customer.Udhar {
			return apperror.NewBadRequestError(fmt.Sprintf("Return amount exceeds outstanding udhar of %.2f", money.FromCents(customer.Udhar)))
		}

		ok, err := repos.Customers().AdjustUdhar(ctx, customer.ID, -amount)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewConflictError("Udhar changed while saving; reload and try again")
		}

		if err := repos.Transactions().Create(ctx, &entity.Transaction{
			Type:        enum.TransactionSale,
			Description: "Udhar returned by " + customer.Name,
			Amount:      amount,
			CustomerID:  &customer.ID,
			CreatedBy:   input.UserID,
		}); err != nil {
			return err
		}

		customer.Udhar -= amount
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LedgerRecorded(string(enum.TransactionSale), amount)
	return updated, nil
}
