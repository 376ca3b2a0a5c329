package commands

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	createFn  func(ctx context.Context, contract domain.Contract) error
	listFn    func(ctx context.Context, filter ports.ListFilter) ([]domain.Contract, error)
	updateFn  func(ctx context.Context, contract domain.Contract) error
}

func (m *mockRepository) Create(ctx context.Context, contract domain.Contract) error {
	return m.createFn(ctx, contract)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Contract, error) {
	return m.listFn(ctx, filter)
}

func (m *mockRepository) Update(ctx context.Context, contract domain.Contract) error {
	return m.updateFn(ctx, contract)
}

type mockEventBus struct {
	signed    []string
	cancelled []string
}

func (m *mockEventBus) PublishContractSigned(_ context.Context, contractID string) error {
	m.signed = append(m.signed, contractID)
	return nil
}

func (m *mockEventBus) PublishContractCancelled(_ context.Context, contractID string) error {
	m.cancelled = append(m.cancelled, contractID)
	return nil
}

func storedContract(status domain.ContractStatus) domain.Contract {
	contract := domain.NewContract("Monthly banners", uuid.New(), decimal.RequireFromString("1200.00"))
	contract.Status = status
	return contract
}

func repoWith(contract domain.Contract, updated *domain.Contract) *mockRepository {
	return &mockRepository{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Contract, error) {
			if id != contract.ID {
				return nil, ports.ErrNotFound
			}
			stored := contract
			return &stored, nil
		},
		updateFn: func(_ context.Context, c domain.Contract) error {
			*updated = c
			return nil
		},
	}
}

func testHandler(repo ports.ContractRepository, events ports.EventBus) *TransitionContractCommandHandler {
	return NewTransitionContractCommandHandler(repo, events, slog.New(slog.DiscardHandler))
}

func TestConfirmContract(t *testing.T) {
	t.Run("activates a draft contract", func(t *testing.T) {
		contract := storedContract(domain.ContractDraft)
		var updated domain.Contract
		handler := testHandler(repoWith(contract, &updated), &mockEventBus{})

		got, err := handler.Confirm(context.Background(), ConfirmContractCommand{ContractID: contract.ID, By: "alice"})
		require.NoError(t, err)

		assert.Equal(t, domain.ContractActive, got.Status)
		assert.Equal(t, domain.ContractActive, updated.Status)
		assert.Equal(t, "alice", updated.UpdatedBy)
	})

	t.Run("rejects a signed contract without persisting", func(t *testing.T) {
		contract := storedContract(domain.ContractSigned)
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
				stored := contract
				return &stored, nil
			},
			updateFn: func(_ context.Context, _ domain.Contract) error {
				t.Fatal("Update should not be called")
				return nil
			},
		}
		handler := testHandler(repo, &mockEventBus{})

		_, err := handler.Confirm(context.Background(), ConfirmContractCommand{ContractID: contract.ID})

		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, domain.ContractSigned, transitionErr.Current)
	})

	t.Run("propagates not found", func(t *testing.T) {
		handler := testHandler(repoWith(storedContract(domain.ContractDraft), &domain.Contract{}), &mockEventBus{})

		_, err := handler.Confirm(context.Background(), ConfirmContractCommand{ContractID: uuid.New()})
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})
}

func TestSignContract(t *testing.T) {
	t.Run("signs an active contract and publishes the event", func(t *testing.T) {
		contract := storedContract(domain.ContractActive)
		var updated domain.Contract
		events := &mockEventBus{}
		handler := testHandler(repoWith(contract, &updated), events)

		signedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		got, err := handler.Sign(context.Background(), SignContractCommand{
			ContractID: contract.ID,
			By:         "Ana Silva",
			SignedDate: &signedAt,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.ContractSigned, got.Status)
		require.NotNil(t, updated.SignedDate)
		assert.Equal(t, signedAt, *updated.SignedDate)
		assert.Equal(t, "Ana Silva", updated.SignedByCustomer)
		assert.Equal(t, []string{contract.ID.String()}, events.signed)
	})

	t.Run("persists signature fields even when the guard rejects", func(t *testing.T) {
		contract := storedContract(domain.ContractDraft)
		var updated domain.Contract
		events := &mockEventBus{}
		handler := testHandler(repoWith(contract, &updated), events)

		_, err := handler.Sign(context.Background(), SignContractCommand{ContractID: contract.ID, By: "Ana Silva"})

		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)

		assert.Equal(t, domain.ContractDraft, updated.Status)
		assert.NotNil(t, updated.SignedDate)
		assert.Equal(t, "Ana Silva", updated.SignedByCustomer)
		assert.Empty(t, events.signed)
	})
}

func TestCancelContract(t *testing.T) {
	t.Run("cancels from any state and publishes the event", func(t *testing.T) {
		for _, status := range []domain.ContractStatus{
			domain.ContractDraft,
			domain.ContractActive,
			domain.ContractSigned,
			domain.ContractSuspended,
			domain.ContractCompleted,
		} {
			contract := storedContract(status)
			var updated domain.Contract
			events := &mockEventBus{}
			handler := testHandler(repoWith(contract, &updated), events)

			got, err := handler.Cancel(context.Background(), CancelContractCommand{ContractID: contract.ID, By: "alice"})
			require.NoError(t, err, "cancel from %s", status)

			assert.Equal(t, domain.ContractCancelled, got.Status)
			assert.Equal(t, []string{contract.ID.String()}, events.cancelled)
		}
	})
}

func TestRenewContract(t *testing.T) {
	t.Run("extends a completed contract", func(t *testing.T) {
		contract := storedContract(domain.ContractCompleted)
		var updated domain.Contract
		handler := testHandler(repoWith(contract, &updated), &mockEventBus{})

		newEnd := time.Now().UTC().AddDate(1, 0, 0)
		got, err := handler.Renew(context.Background(), RenewContractCommand{
			ContractID: contract.ID,
			By:         "alice",
			NewEndDate: newEnd,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.ContractRenewed, got.Status)
		require.NotNil(t, updated.EndDate)
		assert.Equal(t, newEnd, *updated.EndDate)
	})

	t.Run("rejects a suspended contract", func(t *testing.T) {
		contract := storedContract(domain.ContractSuspended)
		handler := testHandler(repoWith(contract, &domain.Contract{}), &mockEventBus{})

		_, err := handler.Renew(context.Background(), RenewContractCommand{
			ContractID: contract.ID,
			NewEndDate: time.Now().UTC(),
		})

		var transitionErr *domain.TransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})
}

func TestCreateContract(t *testing.T) {
	t.Run("drafts a valid contract", func(t *testing.T) {
		var saved domain.Contract
		repo := &mockRepository{
			createFn: func(_ context.Context, contract domain.Contract) error {
				saved = contract
				return nil
			},
		}
		handler := NewCreateContractCommandHandler(repo)

		customerID := uuid.New()
		got, err := handler.Handle(context.Background(), CreateContractCommand{
			Title:      "Monthly banners",
			CustomerID: customerID,
			TotalValue: decimal.RequireFromString("1200.00"),
			CreatedBy:  "alice",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.ContractDraft, got.Status)
		assert.Equal(t, customerID, saved.CustomerID)
		assert.Regexp(t, `^CONT\d{14}$`, saved.ContractNumber)
	})

	t.Run("rejects a non-positive total value", func(t *testing.T) {
		handler := NewCreateContractCommandHandler(&mockRepository{
			createFn: func(_ context.Context, _ domain.Contract) error {
				t.Fatal("Create should not be called")
				return nil
			},
		})

		_, err := handler.Handle(context.Background(), CreateContractCommand{
			Title:      "Monthly banners",
			CustomerID: uuid.New(),
			TotalValue: decimal.Zero,
		})
		assert.Error(t, err)
	})
}
