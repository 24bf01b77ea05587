package faucet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gabapcia/faucet/internal/pkg/logger"
	"github.com/gabapcia/faucet/internal/pkg/x/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testAddress           = "0x3eD4A1C7D2bB2F1b0d2a0c5a1Eb3a5B2c1d0896b"
	testAddressNormalized = "0x3ed4a1c7d2bb2f1b0d2a0c5a1eb3a5b2c1d0896b"
	testTxReference       = "0x5f0c1a9d6e"
)

var testAmount = big.NewInt(1_000_000_000_000_000_000)

func amountEq(expected *big.Int) any {
	return mock.MatchedBy(func(v *big.Int) bool { return v.Cmp(expected) == 0 })
}

// memoryStorage is an in-memory ClaimStorage with an atomic insert-if-absent.
type memoryStorage struct {
	mu      sync.Mutex
	records map[string]ClaimRecord
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{records: make(map[string]ClaimRecord)}
}

func (m *memoryStorage) HasClaimed(ctx context.Context, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[address]
	return ok, nil
}

func (m *memoryStorage) MarkClaimed(ctx context.Context, address, txReference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[address]; ok {
		return ErrDuplicateClaim
	}
	m.records[address] = ClaimRecord{Address: address, ClaimedAt: time.Now(), TxReference: txReference}
	return nil
}

func (m *memoryStorage) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records)
}

// slowDisburser counts sends and waits before answering, widening the check-then-send window.
type slowDisburser struct {
	delay time.Duration
	sends atomic.Int32
}

func (d *slowDisburser) Send(ctx context.Context, to string, amount *big.Int) (string, error) {
	d.sends.Add(1)
	time.Sleep(d.delay)
	return testTxReference, nil
}

func TestNew(t *testing.T) {
	t.Run("creates service with default configuration", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)

		svc := New(claimStorage, disburser, testAmount)

		require.NotNil(t, svc)
		assert.Equal(t, claimStorage, svc.claimStorage)
		assert.Equal(t, disburser, svc.disburser)
		assert.Equal(t, defaultRecordTimeout, svc.recordTimeout)
		assert.Zero(t, svc.disbursementTimeout)
		assert.Equal(t, 0, svc.amount.Cmp(testAmount))

		_, ok := svc.locker.(nopLocker)
		assert.True(t, ok, "expected default locker to be nopLocker")
	})

	t.Run("applies options", func(t *testing.T) {
		locker := NewLockerMock(t)

		svc := New(
			NewClaimStorageMock(t),
			NewDisburserMock(t),
			testAmount,
			WithLocker(locker),
			WithDisbursementTimeout(30*time.Second),
			WithRecordTimeout(time.Second),
		)

		assert.Equal(t, locker, svc.locker)
		assert.Equal(t, 30*time.Second, svc.disbursementTimeout)
		assert.Equal(t, time.Second, svc.recordTimeout)
	})

	t.Run("copies the amount", func(t *testing.T) {
		amount := big.NewInt(10)

		svc := New(NewClaimStorageMock(t), NewDisburserMock(t), amount)
		amount.SetInt64(99)

		assert.Equal(t, int64(10), svc.amount.Int64())
	})
}

func TestService_Claim(t *testing.T) {
	_ = logger.Init("error")

	t.Run("should disburse and record a first claim", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)

		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, nil).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, amountEq(testAmount)).Return(testTxReference, nil).Once()
		claimStorage.EXPECT().MarkClaimed(mock.Anything, testAddressNormalized, testTxReference).Return(nil).Once()

		svc := New(claimStorage, disburser, testAmount)
		receipt, err := svc.Claim(t.Context(), testAddress)

		require.NoError(t, err)
		assert.Equal(t, Receipt{Address: testAddressNormalized, TxReference: testTxReference}, receipt)
	})

	t.Run("should reject a malformed address without touching store or disburser", func(t *testing.T) {
		svc := New(NewClaimStorageMock(t), NewDisburserMock(t), testAmount)

		for _, address := range []string{"", "0x123", "3eD4A1C7D2bB2F1b0d2a0c5a1Eb3a5B2c1d0896b", "0xZZD4A1C7D2bB2F1b0d2a0c5a1Eb3a5B2c1d0896b"} {
			_, err := svc.Claim(t.Context(), address)
			assert.ErrorIs(t, err, ErrInvalidAddress, "address %q", address)
		}
	})

	t.Run("should refuse an address that already claimed", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(true, nil).Once()

		svc := New(claimStorage, NewDisburserMock(t), testAmount)
		_, err := svc.Claim(t.Context(), testAddress)

		assert.ErrorIs(t, err, ErrAlreadyClaimed)
	})

	t.Run("should fail closed when the store cannot be read", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, errors.New("connection refused")).Once()

		svc := New(claimStorage, NewDisburserMock(t), testAmount)
		_, err := svc.Claim(t.Context(), testAddress)

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, "Database error", Reason(err))
	})

	t.Run("should keep the address eligible when the disbursement fails", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)

		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, nil).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).
			Return("", ErrInsufficientOperatorFunds).Once()

		svc := New(claimStorage, disburser, testAmount)
		_, err := svc.Claim(t.Context(), testAddress)

		assert.ErrorIs(t, err, ErrDisbursementFailed)
		assert.ErrorIs(t, err, ErrInsufficientOperatorFunds)
		assert.Equal(t, "Failed to send token: insufficient operator funds", Reason(err))
		claimStorage.AssertNotCalled(t, "MarkClaimed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should allow a retry after a failed disbursement", func(t *testing.T) {
		claimStorage := newMemoryStorage()
		disburser := NewDisburserMock(t)

		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).Return("", ErrNetwork).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).Return(testTxReference, nil).Once()

		svc := New(claimStorage, disburser, testAmount)

		_, err := svc.Claim(t.Context(), testAddress)
		require.ErrorIs(t, err, ErrNetwork)

		receipt, err := svc.Claim(t.Context(), testAddress)
		require.NoError(t, err)
		assert.Equal(t, testTxReference, receipt.TxReference)

		_, err = svc.Claim(t.Context(), testAddress)
		assert.ErrorIs(t, err, ErrAlreadyClaimed)
	})

	t.Run("should classify a disbursement deadline as a timeout", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)

		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, nil).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).
			RunAndReturn(func(ctx context.Context, _ string, _ *big.Int) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}).Once()

		svc := New(claimStorage, disburser, testAmount, WithDisbursementTimeout(10*time.Millisecond))
		_, err := svc.Claim(t.Context(), testAddress)

		assert.ErrorIs(t, err, ErrDisbursementFailed)
		assert.ErrorIs(t, err, ErrDisbursementTimeout)
		assert.Equal(t, "Failed to send token: disbursement timed out", Reason(err))
	})

	t.Run("should report success when the record is a duplicate", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)

		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, nil).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).Return(testTxReference, nil).Once()
		claimStorage.EXPECT().MarkClaimed(mock.Anything, testAddressNormalized, testTxReference).Return(ErrDuplicateClaim).Once()

		svc := New(claimStorage, disburser, testAmount)
		receipt, err := svc.Claim(t.Context(), testAddress)

		require.NoError(t, err)
		assert.Equal(t, testTxReference, receipt.TxReference)
	})

	t.Run("should report success when the record write fails after sending", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)

		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, nil).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).Return(testTxReference, nil).Once()
		claimStorage.EXPECT().MarkClaimed(mock.Anything, testAddressNormalized, testTxReference).
			Return(errors.Join(ErrStoreUnavailable, errors.New("disk full"))).Once()

		svc := New(claimStorage, disburser, testAmount)
		receipt, err := svc.Claim(t.Context(), testAddress)

		require.NoError(t, err)
		assert.Equal(t, Receipt{Address: testAddressNormalized, TxReference: testTxReference}, receipt)
	})

	t.Run("should record the claim even if the caller goes away after sending", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, nil).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).
			RunAndReturn(func(context.Context, string, *big.Int) (string, error) {
				cancel()
				return testTxReference, nil
			}).Once()
		claimStorage.EXPECT().MarkClaimed(mock.Anything, testAddressNormalized, testTxReference).
			RunAndReturn(func(ctx context.Context, _, _ string) error {
				return ctx.Err()
			}).Once()

		svc := New(claimStorage, disburser, testAmount)
		_, err := svc.Claim(ctx, testAddress)

		require.NoError(t, err)
	})

	t.Run("should hold the address lock for the whole claim", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		disburser := NewDisburserMock(t)
		locker := NewLockerMock(t)
		var unlocked bool

		locker.EXPECT().Lock(mock.Anything, testAddressNormalized).Return(func() { unlocked = true }, nil).Once()
		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, nil).Once()
		disburser.EXPECT().Send(mock.Anything, testAddressNormalized, mock.Anything).Return(testTxReference, nil).Once()
		claimStorage.EXPECT().MarkClaimed(mock.Anything, testAddressNormalized, testTxReference).
			RunAndReturn(func(context.Context, string, string) error {
				assert.False(t, unlocked, "lock released before the record write")
				return nil
			}).Once()

		svc := New(claimStorage, disburser, testAmount, WithLocker(locker))
		_, err := svc.Claim(t.Context(), testAddress)

		require.NoError(t, err)
		assert.True(t, unlocked)
	})

	t.Run("should report a claim in progress when the lock cannot be acquired", func(t *testing.T) {
		locker := NewLockerMock(t)
		locker.EXPECT().Lock(mock.Anything, testAddressNormalized).Return(nil, context.DeadlineExceeded).Once()

		svc := New(NewClaimStorageMock(t), NewDisburserMock(t), testAmount, WithLocker(locker))
		_, err := svc.Claim(t.Context(), testAddress)

		assert.ErrorIs(t, err, ErrClaimInProgress)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, "Claim already in progress", Reason(err))
	})
}

func TestService_Claim_Concurrent(t *testing.T) {
	_ = logger.Init("error")

	const workers = 8

	run := func(svc Service) (successes int32) {
		var (
			wg sync.WaitGroup
			ok atomic.Int32
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.Claim(context.Background(), testAddress); err == nil {
					ok.Add(1)
				} else {
					assert.ErrorIs(t, err, ErrAlreadyClaimed)
				}
			}()
		}
		wg.Wait()
		return ok.Load()
	}

	t.Run("should keep exactly one record without a lock", func(t *testing.T) {
		claimStorage := newMemoryStorage()
		disburser := &slowDisburser{delay: 20 * time.Millisecond}

		successes := run(New(claimStorage, disburser, testAmount))

		assert.Equal(t, 1, claimStorage.len())
		assert.GreaterOrEqual(t, successes, int32(1))
		assert.Equal(t, successes, disburser.sends.Load())
	})

	t.Run("should disburse exactly once with a lock", func(t *testing.T) {
		claimStorage := newMemoryStorage()
		disburser := &slowDisburser{delay: 5 * time.Millisecond}

		successes := run(New(claimStorage, disburser, testAmount, WithLocker(keylock.New())))

		assert.Equal(t, 1, claimStorage.len())
		assert.Equal(t, int32(1), successes)
		assert.Equal(t, int32(1), disburser.sends.Load())
	})
}

func TestService_Status(t *testing.T) {
	_ = logger.Init("error")

	t.Run("should report the stored state", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(true, nil).Once()
		claimStorage.EXPECT().HasClaimed(mock.Anything, "0x0000000000000000000000000000000000000001").Return(false, nil).Once()

		svc := New(claimStorage, NewDisburserMock(t), testAmount)

		claimed, err := svc.Status(t.Context(), testAddress)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = svc.Status(t.Context(), "0x0000000000000000000000000000000000000001")
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("should read the stored state without a disburser", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(true, nil).Once()

		claimed, err := NewStatusReader(claimStorage).Status(t.Context(), testAddress)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("should reject a malformed address", func(t *testing.T) {
		svc := New(NewClaimStorageMock(t), NewDisburserMock(t), testAmount)

		_, err := svc.Status(t.Context(), "not-an-address")

		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("should surface store failures", func(t *testing.T) {
		claimStorage := NewClaimStorageMock(t)
		claimStorage.EXPECT().HasClaimed(mock.Anything, testAddressNormalized).Return(false, errors.New("timeout")).Once()

		svc := New(claimStorage, NewDisburserMock(t), testAmount)
		_, err := svc.Status(t.Context(), testAddress)

		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestReason(t *testing.T) {
	t.Run("maps every error class to its message", func(t *testing.T) {
		assert.Empty(t, Reason(nil))
		assert.Equal(t, "Invalid address", Reason(ErrInvalidAddress))
		assert.Equal(t, "Already claimed", Reason(ErrAlreadyClaimed))
		assert.Equal(t, "Database error", Reason(wrapStoreUnavailable(errors.New("boom"))))
		assert.Equal(t, "Failed to send token", Reason(ErrDisbursementFailed))
		assert.Equal(t, "Failed to send token: network error", Reason(errors.Join(ErrDisbursementFailed, ErrNetwork)))
		assert.Equal(t, "Failed to send token: transaction rejected", Reason(errors.Join(ErrDisbursementFailed, ErrTransactionRejected)))
		assert.Equal(t, "Internal error", Reason(errors.New("unexpected")))
	})

	t.Run("does not double wrap store errors", func(t *testing.T) {
		err := wrapStoreUnavailable(ErrStoreUnavailable)
		assert.Equal(t, ErrStoreUnavailable, err)
	})
}
