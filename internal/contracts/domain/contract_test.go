package domain_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftContract() domain.Contract {
	return domain.NewContract("Manutenção mensal", uuid.New(), decimal.NewFromInt(1200))
}

func contractIn(status domain.ContractStatus) domain.Contract {
	c := draftContract()
	c.Status = status
	return c
}

func TestNewContractNumber(t *testing.T) {
	c := draftContract()
	require.NotEmpty(t, c.ContractNumber)
	assert.Regexp(t, regexp.MustCompile(`^CONT\d{4}\d{10}$`), c.ContractNumber)
}

func TestContractValidate(t *testing.T) {
	t.Run("valid contract", func(t *testing.T) {
		require.NoError(t, draftContract().Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		c := draftContract()
		c.Title = "  "
		require.Error(t, c.Validate())
	})

	t.Run("missing customer", func(t *testing.T) {
		c := draftContract()
		c.CustomerID = uuid.Nil
		require.Error(t, c.Validate())
	})

	t.Run("zero total value", func(t *testing.T) {
		c := draftContract()
		c.TotalValue = decimal.Zero
		require.Error(t, c.Validate())
	})

	t.Run("negative total value", func(t *testing.T) {
		c := draftContract()
		c.TotalValue = decimal.NewFromInt(-1)
		require.Error(t, c.Validate())
	})
}

// Exercises every (state, transition) pair: allowed states land on the
// documented target, every other state is rejected with the status unchanged.
func TestContractTransitionTable(t *testing.T) {
	allStatuses := []domain.ContractStatus{
		domain.ContractDraft,
		domain.ContractActive,
		domain.ContractSigned,
		domain.ContractSuspended,
		domain.ContractCancelled,
		domain.ContractCompleted,
		domain.ContractRenewed,
	}

	end := time.Now().UTC().AddDate(1, 0, 0)

	transitions := []struct {
		name    string
		apply   func(*domain.Contract) error
		allowed map[domain.ContractStatus]bool
		target  domain.ContractStatus
	}{
		{
			name:    "confirm",
			apply:   func(c *domain.Contract) error { return c.Confirm("ana") },
			allowed: map[domain.ContractStatus]bool{domain.ContractDraft: true},
			target:  domain.ContractActive,
		},
		{
			name:    "sign",
			apply:   func(c *domain.Contract) error { return c.Sign("ana", nil) },
			allowed: map[domain.ContractStatus]bool{domain.ContractActive: true},
			target:  domain.ContractSigned,
		},
		{
			name:  "suspend",
			apply: func(c *domain.Contract) error { return c.Suspend("ana") },
			allowed: map[domain.ContractStatus]bool{
				domain.ContractActive: true,
				domain.ContractSigned: true,
			},
			target: domain.ContractSuspended,
		},
		{
			name:  "complete",
			apply: func(c *domain.Contract) error { return c.Complete("ana") },
			allowed: map[domain.ContractStatus]bool{
				domain.ContractSigned: true,
				domain.ContractActive: true,
			},
			target: domain.ContractCompleted,
		},
		{
			name:  "renew",
			apply: func(c *domain.Contract) error { return c.Renew(end, "ana") },
			allowed: map[domain.ContractStatus]bool{
				domain.ContractCompleted: true,
				domain.ContractActive:    true,
			},
			target: domain.ContractRenewed,
		},
	}

	for _, tr := range transitions {
		for _, status := range allStatuses {
			t.Run(tr.name+" from "+string(status), func(t *testing.T) {
				c := contractIn(status)
				err := tr.apply(&c)

				if tr.allowed[status] {
					require.NoError(t, err)
					assert.Equal(t, tr.target, c.Status)
				} else {
					var transitionErr *domain.TransitionError
					require.ErrorAs(t, err, &transitionErr)
					assert.Equal(t, status, transitionErr.Current)
					assert.Equal(t, status, c.Status, "rejected transition must not change status")
				}
			})
		}
	}
}

func TestContractCancelAllowedFromAnyState(t *testing.T) {
	for _, status := range []domain.ContractStatus{
		domain.ContractDraft,
		domain.ContractActive,
		domain.ContractSigned,
		domain.ContractSuspended,
		domain.ContractCancelled,
		domain.ContractCompleted,
		domain.ContractRenewed,
	} {
		t.Run(string(status), func(t *testing.T) {
			c := contractIn(status)
			require.NoError(t, c.Cancel("ana"))
			assert.Equal(t, domain.ContractCancelled, c.Status)
		})
	}
}

func TestContractSignRecordsSignatureEvenWhenRejected(t *testing.T) {
	// Sign only guards the status change; the signature fields are written
	// regardless. Changing this would break callers that read them back
	// after a failed sign, so the behavior is pinned here.
	c := contractIn(domain.ContractSuspended)

	err := c.Sign("ana", nil)

	require.Error(t, err)
	assert.Equal(t, domain.ContractSuspended, c.Status)
	assert.NotNil(t, c.SignedDate)
	assert.Equal(t, "ana", c.SignedByCustomer)
}

func TestContractSignUsesProvidedDate(t *testing.T) {
	c := contractIn(domain.ContractActive)
	signed := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.Sign("ana", &signed))

	require.NotNil(t, c.SignedDate)
	assert.True(t, c.SignedDate.Equal(signed))
}

func TestContractRenewSetsEndDate(t *testing.T) {
	c := contractIn(domain.ContractCompleted)
	end := time.Now().UTC().AddDate(0, 6, 0)

	require.NoError(t, c.Renew(end, "ana"))

	require.NotNil(t, c.EndDate)
	assert.True(t, c.EndDate.Equal(end))
}

func TestContractIsActive(t *testing.T) {
	assert.True(t, contractIn(domain.ContractActive).IsActive())
	assert.True(t, contractIn(domain.ContractSigned).IsActive())
	assert.True(t, contractIn(domain.ContractRenewed).IsActive())
	assert.False(t, contractIn(domain.ContractDraft).IsActive())
	assert.False(t, contractIn(domain.ContractSuspended).IsActive())
	assert.False(t, contractIn(domain.ContractCompleted).IsActive())
	assert.False(t, contractIn(domain.ContractCancelled).IsActive())
}

func TestContractIsExpired(t *testing.T) {
	past := time.Now().UTC().AddDate(0, 0, -10)
	future := time.Now().UTC().AddDate(0, 0, 10)

	t.Run("active past end date", func(t *testing.T) {
		c := contractIn(domain.ContractActive)
		c.EndDate = &past
		assert.True(t, c.IsExpired())
	})

	t.Run("active before end date", func(t *testing.T) {
		c := contractIn(domain.ContractActive)
		c.EndDate = &future
		assert.False(t, c.IsExpired())
	})

	t.Run("no end date", func(t *testing.T) {
		assert.False(t, contractIn(domain.ContractActive).IsExpired())
	})

	// Expiry is a view over contracts the business still considers open.
	// Once the stored status leaves the active set the view goes dark even
	// when the end date is long past.
	t.Run("completed past end date is not expired", func(t *testing.T) {
		c := contractIn(domain.ContractCompleted)
		c.EndDate = &past
		assert.False(t, c.IsExpired())
	})
}

func TestContractIsNearExpiration(t *testing.T) {
	t.Run("inside the thirty day window", func(t *testing.T) {
		end := time.Now().UTC().AddDate(0, 0, 15)
		c := contractIn(domain.ContractSigned)
		c.EndDate = &end
		assert.True(t, c.IsNearExpiration())
	})

	t.Run("beyond the window", func(t *testing.T) {
		end := time.Now().UTC().AddDate(0, 0, 45)
		c := contractIn(domain.ContractSigned)
		c.EndDate = &end
		assert.False(t, c.IsNearExpiration())
	})

	t.Run("already past", func(t *testing.T) {
		end := time.Now().UTC().AddDate(0, 0, -1)
		c := contractIn(domain.ContractSigned)
		c.EndDate = &end
		assert.False(t, c.IsNearExpiration())
	})

	t.Run("inactive status", func(t *testing.T) {
		end := time.Now().UTC().AddDate(0, 0, 15)
		c := contractIn(domain.ContractSuspended)
		c.EndDate = &end
		assert.False(t, c.IsNearExpiration())
	})
}

func TestContractDurationInDays(t *testing.T) {
	c := draftContract()
	c.StartDate = time.Now().UTC().AddDate(0, 0, -90)

	t.Run("with end date", func(t *testing.T) {
		end := c.StartDate.AddDate(0, 0, 365)
		withEnd := c
		withEnd.EndDate = &end
		assert.Equal(t, 365, withEnd.DurationInDays())
	})

	t.Run("without end date uses today", func(t *testing.T) {
		assert.Equal(t, 90, c.DurationInDays())
	})
}

func TestContractSummary(t *testing.T) {
	c := draftContract()
	assert.Contains(t, c.Summary(), c.ContractNumber)
	assert.Contains(t, c.Summary(), "Manutenção mensal")
	assert.Contains(t, c.Summary(), "Rascunho")
}
