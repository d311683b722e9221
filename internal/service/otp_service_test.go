package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rbyte/rbyte-api/internal/config"
	"github.com/rbyte/rbyte-api/internal/repository"
	"github.com/rbyte/rbyte-api/internal/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPhone = "+911234567890"

func newTestOTPService(gateway *fakeGateway, clock *fakeClock, codes ...string) (*OTPService, repository.OTPStore) {
	store := repository.NewMemoryOTPStore()
	cfg := &config.OTPConfig{Expiry: 5 * time.Minute, HashCost: bcrypt.MinCost}
	svc := NewOTPService(store, gateway, cfg, testMetrics(), testLogger())
	svc.now = clock.Now
	if len(codes) > 0 {
		svc.generate = sequence(codes...)
	}
	return svc, store
}

func TestPhoneKey(t *testing.T) {
	assert.Equal(t, "+911234567890", PhoneKey("+91", "1234567890"))
	assert.Equal(t, "+15551234567", PhoneKey(" +1", "5551234567 "))
}

func TestOTPService_IssueThenVerify(t *testing.T) {
	gateway := &fakeGateway{}
	clock := newFakeClock()
	svc, _ := newTestOTPService(gateway, clock, "048213")
	ctx := context.Background()

	issued, err := svc.Issue(ctx, testPhone)
	require.NoError(t, err)
	assert.Equal(t, "048213", issued.Code)
	assert.Equal(t, "SM-test", issued.DeliveryID)
	assert.Equal(t, clock.Now().Add(5*time.Minute), issued.ExpiresAt)

	sent := gateway.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, testPhone, sent[0].To)
	assert.Equal(t, "Your RByte.ai verification code is: 048213", sent[0].Body)

	clock.Advance(4 * time.Minute)
	require.NoError(t, svc.Verify(ctx, testPhone, "048213"))

	err = svc.Verify(ctx, testPhone, "048213")
	assert.ErrorIs(t, err, ErrOTPNotFound, "a verified code is consumed")
}

func TestOTPService_VerifyWithoutIssue(t *testing.T) {
	svc, _ := newTestOTPService(&fakeGateway{}, newFakeClock())

	err := svc.Verify(context.Background(), testPhone, "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPService_ReissueReplacesCode(t *testing.T) {
	svc, _ := newTestOTPService(&fakeGateway{}, newFakeClock(), "111111", "222222")
	ctx := context.Background()

	_, err := svc.Issue(ctx, testPhone)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, testPhone)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, testPhone, "111111"), ErrOTPMismatch)
	assert.NoError(t, svc.Verify(ctx, testPhone, "222222"))
}

func TestOTPService_Expiry(t *testing.T) {
	clock := newFakeClock()
	svc, store := newTestOTPService(&fakeGateway{}, clock, "048213")
	ctx := context.Background()

	_, err := svc.Issue(ctx, testPhone)
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)

	assert.ErrorIs(t, svc.Verify(ctx, testPhone, "048213"), ErrOTPExpired)

	_, err = store.Get(ctx, testPhone)
	assert.ErrorIs(t, err, repository.ErrNotFound, "expired entry is removed")
	assert.ErrorIs(t, svc.Verify(ctx, testPhone, "048213"), ErrOTPNotFound)
}

func TestOTPService_ValidUntilExpiryInstant(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newTestOTPService(&fakeGateway{}, clock, "048213")
	ctx := context.Background()

	_, err := svc.Issue(ctx, testPhone)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.NoError(t, svc.Verify(ctx, testPhone, "048213"))
}

func TestOTPService_MismatchKeepsEntry(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newTestOTPService(&fakeGateway{}, clock, "048213")
	ctx := context.Background()

	_, err := svc.Issue(ctx, testPhone)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, svc.Verify(ctx, testPhone, "999999"), ErrOTPMismatch)
	}

	clock.Advance(time.Minute)
	assert.NoError(t, svc.Verify(ctx, testPhone, "048213"))
}

func TestOTPService_DeliveryFailureKeepsEntry(t *testing.T) {
	deliveryErr := &sms.DeliveryError{Code: 21608, Reason: "unverified phone number: +911234567890"}
	gateway := &fakeGateway{err: deliveryErr}
	svc, store := newTestOTPService(gateway, newFakeClock(), "048213")
	ctx := context.Background()

	_, err := svc.Issue(ctx, testPhone)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDelivery)

	var target *sms.DeliveryError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 21608, target.Code)

	pending, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	assert.NoError(t, svc.Verify(ctx, testPhone, "048213"))
}

func TestOTPService_GeneratorFailure(t *testing.T) {
	svc, store := newTestOTPService(&fakeGateway{}, newFakeClock())
	svc.generate = func(int) (string, error) { return "", errors.New("entropy exhausted") }

	_, err := svc.Issue(context.Background(), testPhone)
	assert.ErrorIs(t, err, ErrInternal)

	n, err := store.Size(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOTPService_PendingCount(t *testing.T) {
	svc, _ := newTestOTPService(&fakeGateway{}, newFakeClock(), "048213")
	ctx := context.Background()

	for _, phone := range []string{"+911111111111", "+912222222222", "+911111111111"} {
		_, err := svc.Issue(ctx, phone)
		require.NoError(t, err)
	}

	n, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOTPService_ConcurrentKeys(t *testing.T) {
	svc, _ := newTestOTPService(&fakeGateway{}, newFakeClock())
	svc.generate = generateRandomOTP
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			phone := fmt.Sprintf("+9190000000%02d", i)
			issued, err := svc.Issue(ctx, phone)
			if err != nil {
				errs <- err
				return
			}
			errs <- svc.Verify(ctx, phone, issued.Code)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestOTPService_ConcurrentSameKey(t *testing.T) {
	svc, _ := newTestOTPService(&fakeGateway{}, newFakeClock())
	svc.generate = generateRandomOTP
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			issued, err := svc.Issue(ctx, testPhone)
			if !assert.NoError(t, err) {
				return
			}
			err = svc.Verify(ctx, testPhone, issued.Code)
			if err != nil {
				assert.True(t, errors.Is(err, ErrOTPMismatch) || errors.Is(err, ErrOTPNotFound), "unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestOTPService_IssuesSixDigitCodes(t *testing.T) {
	svc, _ := newTestOTPService(&fakeGateway{}, newFakeClock())
	var requested int
	svc.generate = func(length int) (string, error) {
		requested = length
		return generateRandomOTP(length)
	}

	issued, err := svc.Issue(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, 6, requested)
	assert.Regexp(t, `^[0-9]{6}$`, issued.Code)
}

func TestGenerateRandomOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateRandomOTP(6)
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
