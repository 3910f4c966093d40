package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/events"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

func newAssignmentService(tickets *mockTicketRepository, users *mockUserRepository, dispatcher events.Dispatcher) *AssignmentService {
	return NewAssignmentService(AssignmentDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
}

func userDirectory(users map[int64]*domain.User) *mockUserRepository {
	return &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.User, error) {
			user, ok := users[id]
			if !ok {
				return nil, pgx.ErrNoRows
			}
			return user, nil
		},
	}
}

func TestAssignTicket(t *testing.T) {
	assigner := &domain.User{ID: 1, Username: "lead", Role: domain.RoleCS, IsActive: true}

	t.Run("assignment to user records previous and new encoding", func(t *testing.T) {
		stored := storedTicket()
		firstAssignee := int64(5)
		stored.AssignedTo = &firstAssignee
		tsoTeam := domain.RoleTSO
		stored.AssignedTeam = &tsoTeam

		var savedEntries []domain.TicketHistory
		tickets := &mockTicketRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
				return stored, nil
			},
			UpdateWithHistoryFunc: func(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error {
				savedEntries = entries
				return nil
			},
		}
		users := userDirectory(map[int64]*domain.User{
			1: assigner,
			9: {ID: 9, Username: "noc-eng", Role: domain.RoleNOC, IsActive: true},
		})
		dispatcher := &mockDispatcher{}
		svc := newAssignmentService(tickets, users, dispatcher)

		assignee := int64(9)
		ticket, err := svc.AssignTicket(context.Background(), AssignTicketInput{
			TicketID:     20,
			AssignedTo:   &assignee,
			AssignedTeam: domain.RoleNOC,
			AssignedBy:   1,
		})
		require.NoError(t, err)
		require.NotNil(t, ticket.AssignedTo)
		assert.Equal(t, int64(9), *ticket.AssignedTo)
		require.NotNil(t, ticket.AssignedTeam)
		assert.Equal(t, domain.RoleNOC, *ticket.AssignedTeam)

		require.Len(t, savedEntries, 1)
		entry := savedEntries[0]
		assert.Equal(t, domain.HistoryActionAssignedToUser, entry.Action)
		require.NotNil(t, entry.PreviousValue)
		assert.Equal(t, "User ID: 5, Team: TSO", *entry.PreviousValue)
		require.NotNil(t, entry.NewValue)
		assert.Equal(t, "User ID: 9, Team: NOC", *entry.NewValue)
		require.NotNil(t, entry.Notes)
		assert.Equal(t, "Assigned by lead", *entry.Notes)

		require.Len(t, dispatcher.published, 1)
		assert.Equal(t, events.EventTicketAssigned, dispatcher.published[0].Type)
	})

	t.Run("team-only assignment uses team action and encoding", func(t *testing.T) {
		var savedEntries []domain.TicketHistory
		tickets := &mockTicketRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
				return storedTicket(), nil
			},
			UpdateWithHistoryFunc: func(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error {
				savedEntries = entries
				return nil
			},
		}
		users := userDirectory(map[int64]*domain.User{1: assigner})
		svc := newAssignmentService(tickets, users, &mockDispatcher{})

		ticket, err := svc.AssignTicket(context.Background(), AssignTicketInput{
			TicketID:     20,
			AssignedTeam: domain.RoleTSO,
			AssignedBy:   1,
		})
		require.NoError(t, err)
		assert.Nil(t, ticket.AssignedTo)

		require.Len(t, savedEntries, 1)
		assert.Equal(t, domain.HistoryActionAssignedToTeam, savedEntries[0].Action)
		assert.Nil(t, savedEntries[0].PreviousValue)
		require.NotNil(t, savedEntries[0].NewValue)
		assert.Equal(t, "Team: TSO", *savedEntries[0].NewValue)
	})

	t.Run("assignee role must match team", func(t *testing.T) {
		tickets := &mockTicketRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
				return storedTicket(), nil
			},
		}
		users := userDirectory(map[int64]*domain.User{
			1: assigner,
			9: {ID: 9, Username: "cs-agent", Role: domain.RoleCS, IsActive: true},
		})
		svc := newAssignmentService(tickets, users, &mockDispatcher{})

		assignee := int64(9)
		_, err := svc.AssignTicket(context.Background(), AssignTicketInput{
			TicketID:     20,
			AssignedTo:   &assignee,
			AssignedTeam: domain.RoleNOC,
			AssignedBy:   1,
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ASSIGNMENT", domainErr.Code)
	})

	t.Run("inactive assignee is rejected", func(t *testing.T) {
		tickets := &mockTicketRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
				return storedTicket(), nil
			},
		}
		users := userDirectory(map[int64]*domain.User{
			1: assigner,
			9: {ID: 9, Username: "noc-eng", Role: domain.RoleNOC, IsActive: false},
		})
		svc := newAssignmentService(tickets, users, &mockDispatcher{})

		assignee := int64(9)
		_, err := svc.AssignTicket(context.Background(), AssignTicketInput{
			TicketID:     20,
			AssignedTo:   &assignee,
			AssignedTeam: domain.RoleNOC,
			AssignedBy:   1,
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ASSIGNMENT", domainErr.Code)
	})

	t.Run("unknown ticket is not found", func(t *testing.T) {
		tickets := &mockTicketRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
				return nil, pgx.ErrNoRows
			},
		}
		svc := newAssignmentService(tickets, userDirectory(nil), &mockDispatcher{})

		_, err := svc.AssignTicket(context.Background(), AssignTicketInput{
			TicketID:     404,
			AssignedTeam: domain.RoleCS,
			AssignedBy:   1,
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestTransferTicketToTeam(t *testing.T) {
	transferrer := &domain.User{ID: 2, Username: "dispatcher", Role: domain.RoleCS, IsActive: true}

	t.Run("transfer clears user assignment", func(t *testing.T) {
		stored := storedTicket()
		assignee := int64(5)
		stored.AssignedTo = &assignee
		csTeam := domain.RoleCS
		stored.AssignedTeam = &csTeam

		var savedEntries []domain.TicketHistory
		tickets := &mockTicketRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
				return stored, nil
			},
			UpdateWithHistoryFunc: func(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error {
				savedEntries = entries
				return nil
			},
		}
		users := userDirectory(map[int64]*domain.User{2: transferrer})
		dispatcher := &mockDispatcher{}
		svc := newAssignmentService(tickets, users, dispatcher)

		ticket, err := svc.TransferTicketToTeam(context.Background(), TransferTicketInput{
			TicketID:      20,
			TargetTeam:    "NOC",
			TransferredBy: 2,
		})
		require.NoError(t, err)
		assert.Nil(t, ticket.AssignedTo)
		require.NotNil(t, ticket.AssignedTeam)
		assert.Equal(t, domain.RoleNOC, *ticket.AssignedTeam)

		require.Len(t, savedEntries, 1)
		entry := savedEntries[0]
		assert.Equal(t, domain.HistoryActionTransferredToTeam, entry.Action)
		require.NotNil(t, entry.PreviousValue)
		assert.Equal(t, "User ID: 5, Team: CS", *entry.PreviousValue)
		require.NotNil(t, entry.NewValue)
		assert.Equal(t, "Team: NOC", *entry.NewValue)
		require.NotNil(t, entry.Notes)
		assert.Equal(t, "Transferred by dispatcher", *entry.Notes)

		require.Len(t, dispatcher.published, 1)
		assert.Equal(t, events.EventTicketTransferred, dispatcher.published[0].Type)
	})

	t.Run("unassigned previous value reads Unassigned", func(t *testing.T) {
		var savedEntries []domain.TicketHistory
		tickets := &mockTicketRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
				return storedTicket(), nil
			},
			UpdateWithHistoryFunc: func(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error {
				savedEntries = entries
				return nil
			},
		}
		users := userDirectory(map[int64]*domain.User{2: transferrer})
		svc := newAssignmentService(tickets, users, &mockDispatcher{})

		_, err := svc.TransferTicketToTeam(context.Background(), TransferTicketInput{
			TicketID:      20,
			TargetTeam:    "TSO",
			TransferredBy: 2,
		})
		require.NoError(t, err)
		require.Len(t, savedEntries, 1)
		require.NotNil(t, savedEntries[0].PreviousValue)
		assert.Equal(t, "Unassigned", *savedEntries[0].PreviousValue)
	})

	t.Run("unknown team is invalid argument", func(t *testing.T) {
		svc := newAssignmentService(&mockTicketRepository{}, userDirectory(nil), &mockDispatcher{})

		_, err := svc.TransferTicketToTeam(context.Background(), TransferTicketInput{
			TicketID:      20,
			TargetTeam:    "SALES",
			TransferredBy: 2,
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	})
}
