package subscription_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) CreateSubscription(ctx context.Context, req subscription.CreateRequest) (subscription.Ref, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(subscription.Ref), args.Error(1)
}

type messageError struct{ msg string }

func (e messageError) Error() string       { return "http 422: " + e.msg }
func (e messageError) UserMessage() string { return e.msg }

func TestSubmitter_Submit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("builds the request and returns the reference", func(t *testing.T) {
		t.Parallel()
		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, subscription.CreateRequest{
			PlanID:         "7",
			BillingType:    subscription.BillingTypeCreditCard,
			HolderName:     "Maria Souza",
			CardNumber:     "4111111111111111",
			ExpiryMonth:    "08",
			ExpiryYear:     "2030",
			CCV:            "123",
			CouponName:     "PROMO20",
			IdempotencyKey: "key-1",
		}).Return(subscription.Ref("sub_123"), nil).Once()

		s := subscription.NewSubmitter(creator)
		ref, err := s.Submit(ctx, subscription.SubmitRequest{
			Plan:           testPlan(),
			Coupon:         &subscription.Coupon{Code: "promo20", Active: true, DiscountValue: decimal.NewFromInt(20)},
			Instrument:     validInstrument(),
			IdempotencyKey: "key-1",
		})
		require.NoError(t, err)
		assert.Equal(t, subscription.Ref("sub_123"), ref)
		creator.AssertExpectations(t)
	})

	t.Run("omits coupon when none applied", func(t *testing.T) {
		t.Parallel()
		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(r subscription.CreateRequest) bool {
			return r.CouponName == ""
		})).Return(subscription.Ref("sub_1"), nil)

		_, err := subscription.NewSubmitter(creator).Submit(ctx, subscription.SubmitRequest{
			Plan:       testPlan(),
			Instrument: validInstrument(),
		})
		require.NoError(t, err)
		creator.AssertExpectations(t)
	})

	t.Run("server message is surfaced", func(t *testing.T) {
		t.Parallel()
		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, mock.Anything).
			Return(subscription.Ref(""), messageError{msg: "Cartão recusado"})

		_, err := subscription.NewSubmitter(creator).Submit(ctx, subscription.SubmitRequest{
			Plan:       testPlan(),
			Instrument: validInstrument(),
		})

		var subErr *subscription.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, "Cartão recusado", subErr.Message)
	})

	t.Run("transport error without message", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("dial tcp: timeout")
		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, mock.Anything).Return(subscription.Ref(""), cause)

		_, err := subscription.NewSubmitter(creator).Submit(ctx, subscription.SubmitRequest{
			Plan:       testPlan(),
			Instrument: validInstrument(),
		})
		assert.True(t, subscription.IsSubmissionError(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty reference is a failure", func(t *testing.T) {
		t.Parallel()
		creator := &mockCreator{}
		creator.On("CreateSubscription", mock.Anything, mock.Anything).Return(subscription.Ref(""), nil)

		_, err := subscription.NewSubmitter(creator).Submit(ctx, subscription.SubmitRequest{
			Plan:       testPlan(),
			Instrument: validInstrument(),
		})
		assert.ErrorIs(t, err, subscription.ErrEmptySubscriptionRef)
		assert.True(t, subscription.IsSubmissionError(err))
	})

	t.Run("missing plan never reaches the network", func(t *testing.T) {
		t.Parallel()
		creator := &mockCreator{}
		_, err := subscription.NewSubmitter(creator).Submit(ctx, subscription.SubmitRequest{Instrument: validInstrument()})
		assert.ErrorIs(t, err, subscription.ErrNoPlanSelected)
		creator.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
	})
}
