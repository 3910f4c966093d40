package service

import (
	"context"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/events"
	"github.com/appdotbuilder/helpdesk-system/internal/repository"
)

type mockTicketRepository struct {
	CreateWithHistoryFunc func(ctx context.Context, ticket *domain.ComplaintTicket, entry *domain.TicketHistory) error
	UpdateWithHistoryFunc func(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error
	GetByIDFunc           func(ctx context.Context, id int64) (*domain.ComplaintTicket, error)
	ListWithFilterFunc    func(ctx context.Context, filter repository.TicketFilter) ([]domain.ComplaintTicket, error)
}

func (m *mockTicketRepository) CreateWithHistory(ctx context.Context, ticket *domain.ComplaintTicket, entry *domain.TicketHistory) error {
	return m.CreateWithHistoryFunc(ctx, ticket, entry)
}

func (m *mockTicketRepository) UpdateWithHistory(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error {
	return m.UpdateWithHistoryFunc(ctx, ticket, entries)
}

func (m *mockTicketRepository) GetByID(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockTicketRepository) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.ComplaintTicket, error) {
	return m.ListWithFilterFunc(ctx, filter)
}

type mockUserRepository struct {
	CreateFunc     func(ctx context.Context, user *domain.User) error
	UpdateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id int64) (*domain.User, error)
	ListActiveFunc func(ctx context.Context, role *domain.Role) ([]domain.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.UpdateFunc(ctx, user)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserRepository) ListActive(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	return m.ListActiveFunc(ctx, role)
}

type mockHistoryRepository struct {
	ListByTicketFunc func(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error)
}

func (m *mockHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	return m.ListByTicketFunc(ctx, ticketID)
}

type mockDispatcher struct {
	published []events.Event
}

func (m *mockDispatcher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}
