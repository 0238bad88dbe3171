package service

import (
	"context"
	"sync"
	"time"

	"carhire-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*domain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepo) FindConflicting(ctx context.Context, vehicleID int32, from, to time.Time, excludeID int32) (*domain.Interval, error) {
	args := m.Called(ctx, vehicleID, from, to, excludeID)
	if iv := args.Get(0); iv != nil {
		return iv.(*domain.Interval), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingRepo) UpdateStatusCAS(ctx context.Context, id int32, prev, next domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, prev, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) MarkPendingApproval(ctx context.Context, id int32, prev domain.BookingStatus, createdBy int32) (bool, error) {
	args := m.Called(ctx, id, prev, createdBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) Approve(ctx context.Context, id, approverID int32, notes string) (bool, error) {
	args := m.Called(ctx, id, approverID, notes)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) Reject(ctx context.Context, id, rejecterID int32, notes string) (bool, error) {
	args := m.Called(ctx, id, rejecterID, notes)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) SetCancelRequested(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) ListPendingApprovals(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if bs := args.Get(0); bs != nil {
		return bs.([]domain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingRepo) ListByDriver(ctx context.Context, driverID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, driverID, status, page, pageSize)
	if bs := args.Get(0); bs != nil {
		return bs.([]domain.Booking), int32(args.Int(1)), args.Error(2)
	}
	return nil, int32(args.Int(1)), args.Error(2)
}

func (m *MockBookingRepo) ListBySupplier(ctx context.Context, supplierID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, supplierID, status, page, pageSize)
	if bs := args.Get(0); bs != nil {
		return bs.([]domain.Booking), int32(args.Int(1)), args.Error(2)
	}
	return nil, int32(args.Int(1)), args.Error(2)
}

func (m *MockBookingRepo) ListExpired(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, now)
	if bs := args.Get(0); bs != nil {
		return bs.([]domain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingRepo) DeleteExpired(ctx context.Context, id int32, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

type MockCounterRepo struct {
	mock.Mock
}

func (m *MockCounterRepo) Next(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return int64(args.Int(0)), args.Error(1)
}

type MockAdditionalDriverRepo struct {
	mock.Mock
}

func (m *MockAdditionalDriverRepo) Create(ctx context.Context, d *domain.AdditionalDriver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockAdditionalDriverRepo) GetByID(ctx context.Context, id int32) (*domain.AdditionalDriver, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*domain.AdditionalDriver), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdditionalDriverRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockContractRepo struct {
	mock.Mock
}

func (m *MockContractRepo) Create(ctx context.Context, c *domain.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepo) GetByBookingID(ctx context.Context, bookingID int32) (*domain.Contract, error) {
	args := m.Called(ctx, bookingID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Contract), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContractRepo) DeleteByBookingID(ctx context.Context, bookingID int32) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if ns := args.Get(0); ns != nil {
		return ns.([]domain.Notification), int32(args.Int(1)), args.Error(2)
	}
	return nil, int32(args.Int(1)), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepo) MarkAllAsRead(ctx context.Context, userID int32) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepo) Delete(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepo) IncrementUnread(ctx context.Context, userID int32) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepo) DecrementUnread(ctx context.Context, userID int32, by int32) error {
	args := m.Called(ctx, userID, by)
	return args.Error(0)
}

func (m *MockNotificationRepo) GetUnreadCount(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return int32(args.Int(0)), args.Error(1)
}

func (m *MockNotificationRepo) ResetUnread(ctx context.Context, userID int32) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if us := args.Get(0); us != nil {
		return us.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) DeleteUnverifiedBySession(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingStatusNotification(ctx context.Context, email, name, bookingNumber string, status domain.BookingStatus) error {
	args := m.Called(ctx, email, name, bookingNumber, status)
	return args.Error(0)
}

func (m *MockEmailService) SendBookingCreatedNotification(ctx context.Context, email, name, bookingNumber string, from, to time.Time) error {
	args := m.Called(ctx, email, name, bookingNumber, from, to)
	return args.Error(0)
}

func (m *MockEmailService) SendApprovalRequestNotification(ctx context.Context, adminEmail, staffName, bookingNumber string) error {
	args := m.Called(ctx, adminEmail, staffName, bookingNumber)
	return args.Error(0)
}

func (m *MockEmailService) SendApprovalOutcomeNotification(ctx context.Context, email, bookingNumber string, approved bool, notes string) error {
	args := m.Called(ctx, email, bookingNumber, approved, notes)
	return args.Error(0)
}

func (m *MockEmailService) SendCancelRequestNotification(ctx context.Context, adminEmail, driverName, bookingNumber string) error {
	args := m.Called(ctx, adminEmail, driverName, bookingNumber)
	return args.Error(0)
}

type MockPushService struct {
	mock.Mock
}

func (m *MockPushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	args := m.Called(ctx, token, title, body, data)
	return args.Error(0)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) GenerateContract(ctx context.Context, b *domain.Booking) (*domain.Contract, error) {
	args := m.Called(ctx, b)
	if c := args.Get(0); c != nil {
		return c.(*domain.Contract), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) GetPaymentStatus(ctx context.Context, paymentIntentID string) (PaymentStatus, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.Get(0).(PaymentStatus), args.Error(1)
}

// captureSink records enqueued transitions for assertions.
type captureSink struct {
	mu          sync.Mutex
	transitions []Transition
}

func (s *captureSink) Enqueue(t Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, t)
}

func (s *captureSink) all() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transition, len(s.transitions))
	copy(out, s.transitions)
	return out
}
