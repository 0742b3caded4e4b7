package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) items(args mock.Arguments) ([]*domain.Item, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Item), args.Error(1)
}

func (m *MockItemRepository) item(args mock.Arguments) (*domain.Item, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemRepository) GetAll(ctx context.Context) ([]*domain.Item, error) {
	return m.items(m.Called(ctx))
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return m.item(m.Called(ctx, id))
}

func (m *MockItemRepository) Create(ctx context.Context, in domain.CreateItemInput) (*domain.Item, error) {
	return m.item(m.Called(ctx, in))
}

func (m *MockItemRepository) Update(ctx context.Context, id string, in domain.UpdateItemInput) (*domain.Item, error) {
	return m.item(m.Called(ctx, id, in))
}

func (m *MockItemRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepository) Search(ctx context.Context, query string) ([]*domain.Item, error) {
	return m.items(m.Called(ctx, query))
}

func (m *MockItemRepository) GetByTag(ctx context.Context, tag string) ([]*domain.Item, error) {
	return m.items(m.Called(ctx, tag))
}

func (m *MockItemRepository) GetByTags(ctx context.Context, tags []string) ([]*domain.Item, error) {
	return m.items(m.Called(ctx, tags))
}

type MockListRepository struct {
	mock.Mock
}

func (m *MockListRepository) list(args mock.Arguments) (*domain.ShoppingList, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShoppingList), args.Error(1)
}

func (m *MockListRepository) GetAll(ctx context.Context) ([]*domain.ShoppingList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ShoppingList), args.Error(1)
}

func (m *MockListRepository) GetByID(ctx context.Context, id string) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, id))
}

func (m *MockListRepository) Create(ctx context.Context, in domain.CreateListInput) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, in))
}

func (m *MockListRepository) Update(ctx context.Context, id string, in domain.UpdateListInput) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, id, in))
}

func (m *MockListRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockListRepository) AddItem(ctx context.Context, listID string, entry domain.ListEntry) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, listID, entry))
}

func (m *MockListRepository) RemoveItem(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, listID, itemID))
}

func (m *MockListRepository) UpdateItem(ctx context.Context, listID, itemID string, in domain.UpdateEntryInput) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, listID, itemID, in))
}

func (m *MockListRepository) ToggleItemCollected(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, listID, itemID))
}

func (m *MockListRepository) DuplicateList(ctx context.Context, id, newName string) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, id, newName))
}

func (m *MockListRepository) ClearCompletedItems(ctx context.Context, listID string) (*domain.ShoppingList, error) {
	return m.list(m.Called(ctx, listID))
}
