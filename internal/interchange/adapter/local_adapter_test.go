package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockContactCounter struct {
	mock.Mock
}

func (m *MockContactCounter) CountContacts(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func TestLocalQuotaAdapter(t *testing.T) {
	t.Run("remaining is max minus current", func(t *testing.T) {
		counter := new(MockContactCounter)
		counter.On("CountContacts", mock.Anything, "u1").Return(int64(7), nil)

		left, err := NewLocalQuotaAdapter(counter, 10).Remaining(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, 3, left)
		counter.AssertExpectations(t)
	})

	t.Run("over quota clamps to zero", func(t *testing.T) {
		counter := new(MockContactCounter)
		counter.On("CountContacts", mock.Anything, "u1").Return(int64(12), nil)

		left, err := NewLocalQuotaAdapter(counter, 10).Remaining(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, 0, left)
	})

	t.Run("count failure is returned", func(t *testing.T) {
		counter := new(MockContactCounter)
		counter.On("CountContacts", mock.Anything, "u1").Return(int64(0), errors.New("db down"))

		_, err := NewLocalQuotaAdapter(counter, 10).Remaining(context.Background(), "u1")
		assert.Error(t, err)
	})
}

func TestUnlimited(t *testing.T) {
	left, err := Unlimited{}.Remaining(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Greater(t, left, 1<<30)
}
