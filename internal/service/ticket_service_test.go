package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ericlong128/reimbursement-service/internal/domain"
	"github.com/ericlong128/reimbursement-service/internal/repository"
	apperrors "github.com/ericlong128/reimbursement-service/pkg/util"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket

	putErr  error
	listErr error

	listByStatusCalls int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (f *fakeTicketRepo) Put(_ context.Context, ticket *domain.Ticket) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[ticket.TicketID] = *ticket
	return nil
}

func (f *fakeTicketRepo) ListByAuthor(_ context.Context, userID string) ([]domain.Ticket, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, t := range f.tickets {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) ListByStatus(_ context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	f.mu.Lock()
	f.listByStatusCalls++
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, t := range f.tickets {
		if t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) GetByTicketID(_ context.Context, ticketID string) (*domain.Ticket, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[ticketID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, ticketID string, status domain.TicketStatus, expectedVersion int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[ticketID]
	if !ok || t.Version != expectedVersion {
		return nil, repository.ErrVersionConflict
	}
	t.Status = status
	t.Version++
	f.tickets[ticketID] = t
	return &t, nil
}

func newTicketService(repo repository.TicketRepository) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Logger:     zap.NewNop(),
	})
}

func domainStatus(t *testing.T, err error) int {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.HTTPStatus
}

func TestCreateTicketRoundTrip(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	ticket, err := svc.Create(context.Background(), "U1", TicketCreateInput{
		Description: "fix printer",
		Amount:      50,
		Type:        "Hardware",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, "U1", ticket.UserID)
	assert.Equal(t, "Hardware", ticket.Type)
	assert.Equal(t, 50.0, ticket.Amount)
	assert.True(t, strings.HasPrefix(ticket.TicketID, "TICKET#"))
	assert.False(t, ticket.Created.IsZero())
}

func TestCreateTicketDefaultsType(t *testing.T) {
	svc := newTicketService(newFakeTicketRepo())

	ticket, err := svc.Create(context.Background(), "U1", TicketCreateInput{
		Description: "lunch with client",
		Amount:      23.50,
	})
	require.NoError(t, err)
	assert.Equal(t, "Other", ticket.Type)
}

func TestCreateTicketStoreFailure(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.putErr = errors.New("store unreachable")
	svc := newTicketService(repo)

	_, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "x", Amount: 1})
	require.Error(t, err)
	assert.Equal(t, 400, domainStatus(t, err))
}

func TestListByAuthorReturnsOwnTickets(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	_, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "a", Amount: 1})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "U2", TicketCreateInput{Description: "b", Amount: 2})
	require.NoError(t, err)

	tickets, err := svc.ListByAuthor(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "U1", tickets[0].UserID)
}

func TestListByAuthorEmptyIsRetrievalFailure(t *testing.T) {
	svc := newTicketService(newFakeTicketRepo())

	_, err := svc.ListByAuthor(context.Background(), "U1")
	require.Error(t, err)
	assert.Equal(t, 400, domainStatus(t, err))
}

func TestListByStatusEmployeeForbidden(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	_, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "a", Amount: 1})
	require.NoError(t, err)

	_, err = svc.ListByStatus(context.Background(), "U2", domain.RoleEmployee, domain.TicketStatusPending)
	require.Error(t, err)
	assert.Equal(t, 403, domainStatus(t, err))
	// authorization runs before the store is queried
	assert.Equal(t, 0, repo.listByStatusCalls)
}

func TestListByStatusExcludesRequesterTickets(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	_, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "a", Amount: 1})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "U2", TicketCreateInput{Description: "b", Amount: 2})
	require.NoError(t, err)

	tickets, err := svc.ListByStatus(context.Background(), "U2", domain.RoleManager, domain.TicketStatusPending)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "U1", tickets[0].UserID)
}

func TestListByStatusAllOwnTicketsIsNotFound(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	_, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "a", Amount: 1})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "U1", TicketCreateInput{Description: "b", Amount: 2})
	require.NoError(t, err)

	_, err = svc.ListByStatus(context.Background(), "U1", domain.RoleManager, domain.TicketStatusPending)
	require.Error(t, err)
	assert.Equal(t, 404, domainStatus(t, err))
}

func TestTransitionHappensExactlyOnce(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	created, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "a", Amount: 1})
	require.NoError(t, err)

	fresh, err := svc.GetByID(context.Background(), created.TicketID)
	require.NoError(t, err)

	updated, err := svc.Transition(context.Background(), fresh, domain.TicketStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusApproved, updated.Status)
	assert.Equal(t, fresh.Version+1, updated.Version)

	// a second transition fails: the freshly-read status is terminal
	refetched, err := svc.GetByID(context.Background(), created.TicketID)
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), refetched, domain.TicketStatusDenied)
	require.Error(t, err)
	assert.Equal(t, 400, domainStatus(t, err))
}

func TestTransitionStaleVersionConflicts(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTicketService(repo)

	created, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "a", Amount: 1})
	require.NoError(t, err)

	stale, err := svc.GetByID(context.Background(), created.TicketID)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), created, domain.TicketStatusApproved)
	require.NoError(t, err)

	// a racing caller still holds the Pending read; its write must lose
	_, err = svc.Transition(context.Background(), stale, domain.TicketStatusDenied)
	require.Error(t, err)
	assert.Equal(t, 409, domainStatus(t, err))
}

func TestTransitionRejectsInvalidTarget(t *testing.T) {
	svc := newTicketService(newFakeTicketRepo())

	created, err := svc.Create(context.Background(), "U1", TicketCreateInput{Description: "a", Amount: 1})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), created, domain.TicketStatusPending)
	require.Error(t, err)
	assert.Equal(t, 400, domainStatus(t, err))
}

func TestGetByIDMissing(t *testing.T) {
	svc := newTicketService(newFakeTicketRepo())

	_, err := svc.GetByID(context.Background(), "TICKET#nope")
	require.Error(t, err)
	assert.Equal(t, 404, domainStatus(t, err))
}
