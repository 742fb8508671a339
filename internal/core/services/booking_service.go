package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
	"github.com/agiledatalabs/booking-management-system/internal/core/holds"
	"github.com/agiledatalabs/booking-management-system/internal/core/ports"
	"github.com/agiledatalabs/booking-management-system/internal/platform/clock"
)

const (
	DefaultHoldDuration    = 5 * time.Minute
	DefaultMaxHoldsPerUser = 5

	bookingDateLayout = "2006-01-02"
	publishTimeout    = 5 * time.Second
)

type BlockRequest struct {
	UserID      string `json:"userId"`
	ResourceID  string `json:"resourceId"`
	BookingDate string `json:"bookingDate"`
	TimeSlot    string `json:"timeSlot"`
	ResourceQty int    `json:"resourceQty"`
}

type BlockResponse struct {
	Message        string    `json:"message"`
	BlockStartTime time.Time `json:"blockStartTime"`
	BlockEndTime   time.Time `json:"blockEndTime"`
}

type ConfirmRequest struct {
	UserID        string  `json:"userId"`
	ResourceID    string  `json:"resourceId"`
	ResourceQty   int     `json:"resourceQty"`
	BookingDate   string  `json:"bookingDate"`
	Amount        float64 `json:"amount"`
	BookingType   string  `json:"bookingType"`
	TimeSlot      string  `json:"timeSlot"`
	Mode          string  `json:"mode"`
	TransactionID string  `json:"transactionId"`
}

type SlotAvailability struct {
	TimeSlot     domain.TimeSlot `json:"timeSlot"`
	MaxQty       int             `json:"maxQty"`
	BookedQty    int             `json:"bookedQty"`
	HeldQty      int             `json:"heldQty"`
	HoldCount    int             `json:"holdCount"`
	AvailableQty int             `json:"availableQty"`
}

type BookingService struct {
	resourceRepo ports.ResourceRepository
	orderRepo    ports.OrderRepository
	publisher    ports.EventPublisher
	holds        *holds.Table
	locks        *keyLocks
	clock        clock.Clock
	log          *zap.Logger

	holdDuration    time.Duration
	maxHoldsPerUser int
}

type Option func(*BookingService)

func WithHoldDuration(d time.Duration) Option {
	return func(s *BookingService) {
		if d > 0 {
			s.holdDuration = d
		}
	}
}

func WithMaxHoldsPerUser(n int) Option {
	return func(s *BookingService) {
		if n > 0 {
			s.maxHoldsPerUser = n
		}
	}
}

func WithClock(clk clock.Clock) Option {
	return func(s *BookingService) {
		if clk != nil {
			s.clock = clk
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *BookingService) {
		if log != nil {
			s.log = log
		}
	}
}

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *BookingService) {
		s.publisher = p
	}
}

func NewBookingService(resourceRepo ports.ResourceRepository, orderRepo ports.OrderRepository, table *holds.Table, opts ...Option) *BookingService {
	s := &BookingService{
		resourceRepo:    resourceRepo,
		orderRepo:       orderRepo,
		holds:           table,
		locks:           newKeyLocks(),
		clock:           clock.NewSystem(),
		log:             zap.NewNop(),
		holdDuration:    DefaultHoldDuration,
		maxHoldsPerUser: DefaultMaxHoldsPerUser,
	}
	for _, opt := range opts {
		opt(s)
	}

	table.OnExpire(s.handleExpired)
	return s
}

// Block reserves resource quantity for the user until the hold expires or is
// confirmed.
func (s *BookingService) Block(ctx context.Context, req BlockRequest) (*BlockResponse, error) {
	if err := validateBlock(req); err != nil {
		return nil, err
	}

	resource, err := s.getResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}

	slot := domain.TimeSlot(req.TimeSlot)
	if !domain.IsLegalSlot(resource.BookingType, slot) {
		valid := domain.TimeSlotsFor(resource.BookingType)
		return nil, domain.NewValidationError("timeSlot",
			"invalid time slot for the selected booking type, valid slots are: %s", joinSlots(valid)).
			With("validSlots", valid)
	}

	key := domain.NewHoldKey(req.ResourceID, req.BookingDate, slot)
	unlock := s.locks.Lock(key)
	defer unlock()

	if existing, ok := s.holds.FindByUser(key, req.UserID); ok {
		return nil, s.conflictError(existing)
	}

	bookedQty, err := s.orderRepo.SumConfirmedQty(ctx, req.ResourceID, req.BookingDate, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to sum confirmed orders for %s: %w", key, err)
	}
	heldQty := s.holds.TotalQty(key)

	if bookedQty+heldQty+req.ResourceQty > resource.MaxQty {
		return nil, (&domain.Error{
			Kind: domain.ErrCapacity,
			Message: fmt.Sprintf("not enough availability for the selected time slot, alreadyBooked: %d, blocked: %d, max: %d",
				bookedQty, heldQty, resource.MaxQty),
		}).With("booked", bookedQty).With("held", heldQty).With("max", resource.MaxQty).With("requested", req.ResourceQty)
	}

	if s.holds.CountForUser(req.UserID) >= s.maxHoldsPerUser {
		return nil, s.rateLimitError()
	}

	hold := domain.Hold{
		ID:          uuid.New(),
		UserID:      req.UserID,
		ResourceID:  req.ResourceID,
		BookingDate: req.BookingDate,
		TimeSlot:    slot,
		ResourceQty: req.ResourceQty,
		StartTime:   s.clock.Now(),
		Duration:    s.holdDuration,
	}

	if err := s.holds.Insert(hold, s.maxHoldsPerUser); err != nil {
		switch {
		case errors.Is(err, holds.ErrUserHoldLimit):
			return nil, s.rateLimitError()
		case errors.Is(err, holds.ErrDuplicateHold):
			if existing, ok := s.holds.FindByUser(key, req.UserID); ok {
				return nil, s.conflictError(existing)
			}
		}
		return nil, fmt.Errorf("failed to insert hold for %s: %w", key, err)
	}

	s.log.Info("resource blocked",
		zap.String("key", key.String()),
		zap.String("user_id", req.UserID),
		zap.Int("qty", req.ResourceQty),
		zap.Time("expires_at", hold.ExpiresAt()),
	)

	return &BlockResponse{
		Message:        "Resource blocked successfully.",
		BlockStartTime: hold.StartTime,
		BlockEndTime:   hold.ExpiresAt(),
	}, nil
}

// Confirm promotes the user's active hold into a confirmed order. The key
// lock is released before the confirmation event is published.
func (s *BookingService) Confirm(ctx context.Context, req ConfirmRequest) (*domain.Order, error) {
	bookingType, err := validateConfirm(req)
	if err != nil {
		return nil, err
	}

	order, err := s.confirmHold(ctx, req, bookingType)
	if err != nil {
		return nil, err
	}

	s.log.Info("order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("key", order.Key().String()),
		zap.String("user_id", req.UserID),
		zap.String("transaction_id", req.TransactionID),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishOrderConfirmed(ctx, order); err != nil {
			s.log.Error("failed to publish order confirmed event", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	return order, nil
}

func (s *BookingService) confirmHold(ctx context.Context, req ConfirmRequest, bookingType domain.BookingType) (*domain.Order, error) {
	slot := domain.TimeSlot(req.TimeSlot)
	key := domain.NewHoldKey(req.ResourceID, req.BookingDate, slot)
	unlock := s.locks.Lock(key)
	defer unlock()

	hold, ok := s.holds.Pin(key, req.UserID)
	if !ok {
		return nil, domain.NewStateError("no block found for the given key").
			With("key", key.String()).With("userId", req.UserID)
	}
	pinned := true
	defer func() {
		if pinned {
			s.holds.Unpin(key, req.UserID)
		}
	}()

	if req.ResourceQty != hold.ResourceQty {
		return nil, domain.NewValidationError("resourceQty",
			"resourceQty %d does not match the blocked quantity %d", req.ResourceQty, hold.ResourceQty).
			With("blockedQty", hold.ResourceQty)
	}

	resource, err := s.getResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if resource.BookingType != bookingType {
		return nil, domain.NewValidationError("bookingType",
			"booking type %q does not match the resource booking type %q", bookingType, resource.BookingType)
	}

	order := &domain.Order{
		ID:            uuid.New(),
		ResourceID:    req.ResourceID,
		ResourceName:  resource.Name,
		ResourceQty:   req.ResourceQty,
		BookingDate:   req.BookingDate,
		TimeSlot:      slot,
		BookingType:   bookingType,
		Amount:        req.Amount,
		PaymentMode:   req.Mode,
		TransactionID: req.TransactionID,
		UserID:        req.UserID,
		Status:        domain.OrderConfirmed,
		Timestamp:     s.clock.Now(),
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order for %s: %w", key, err)
	}

	s.holds.Remove(key, req.UserID)
	pinned = false

	return order, nil
}

// Availability reports booked, held and free quantity, plus the number of
// active holds, for every legal slot of the resource on the given date.
func (s *BookingService) Availability(ctx context.Context, resourceID, bookingDate string) ([]SlotAvailability, error) {
	if strings.TrimSpace(resourceID) == "" {
		return nil, domain.NewValidationError("resourceId", "resourceId is required")
	}
	if err := validateDate(bookingDate); err != nil {
		return nil, err
	}

	resource, err := s.getResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	slots := domain.TimeSlotsFor(resource.BookingType)
	result := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		booked, err := s.orderRepo.SumConfirmedQty(ctx, resourceID, bookingDate, slot)
		if err != nil {
			return nil, fmt.Errorf("failed to sum confirmed orders: %w", err)
		}
		holders := s.holds.Snapshot(domain.NewHoldKey(resourceID, bookingDate, slot))
		held := 0
		for _, h := range holders {
			held += h.ResourceQty
		}

		available := resource.MaxQty - booked - held
		if available < 0 {
			available = 0
		}
		result = append(result, SlotAvailability{
			TimeSlot:     slot,
			MaxQty:       resource.MaxQty,
			BookedQty:    booked,
			HeldQty:      held,
			HoldCount:    len(holders),
			AvailableQty: available,
		})
	}

	return result, nil
}

// RunBackgroundCleanup drives hold expiry until ctx is cancelled. Expiry
// events are published from this goroutine, never from a request.
func (s *BookingService) RunBackgroundCleanup(ctx context.Context) {
	s.log.Info("hold expiry worker started", zap.Duration("hold_duration", s.holdDuration))
	s.holds.Run(ctx)
	s.log.Info("hold expiry worker stopped")
}

func (s *BookingService) handleExpired(hold domain.Hold) {
	s.log.Info("block expired",
		zap.String("key", hold.Key().String()),
		zap.String("user_id", hold.UserID),
		zap.Int("qty", hold.ResourceQty),
	)

	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishBlockExpired(ctx, hold); err != nil {
		s.log.Error("failed to publish block expired event", zap.String("key", hold.Key().String()), zap.Error(err))
	}
}

func (s *BookingService) getResource(ctx context.Context, resourceID string) (*domain.Resource, error) {
	resource, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			return nil, domain.NewNotFoundError("resource not found").With("resourceId", resourceID)
		}
		return nil, fmt.Errorf("failed to load resource %s: %w", resourceID, err)
	}
	if !resource.IsActive() {
		return nil, domain.NewNotFoundError("resource is not active").With("resourceId", resourceID)
	}
	return resource, nil
}

func (s *BookingService) conflictError(existing domain.Hold) *domain.Error {
	remaining := existing.Remaining(s.clock.Now())
	return (&domain.Error{
		Kind:    domain.ErrConflict,
		Message: "user already has a block for the selected time slot",
	}).
		With("blockStartTime", existing.StartTime).
		With("blockEndTime", existing.ExpiresAt()).
		With("remainingSeconds", int(remaining.Seconds()))
}

func (s *BookingService) rateLimitError() *domain.Error {
	return (&domain.Error{
		Kind:    domain.ErrRateLimit,
		Message: fmt.Sprintf("cannot hold more than %d resources", s.maxHoldsPerUser),
	}).With("limit", s.maxHoldsPerUser)
}

func validateBlock(req BlockRequest) error {
	if err := required(
		field{"userId", req.UserID},
		field{"resourceId", req.ResourceID},
		field{"bookingDate", req.BookingDate},
		field{"timeSlot", req.TimeSlot},
	); err != nil {
		return err
	}
	if req.ResourceQty <= 0 {
		return domain.NewValidationError("resourceQty", "resource quantity should be greater than 0")
	}
	return validateDate(req.BookingDate)
}

func validateConfirm(req ConfirmRequest) (domain.BookingType, error) {
	if err := required(
		field{"userId", req.UserID},
		field{"resourceId", req.ResourceID},
		field{"bookingDate", req.BookingDate},
		field{"bookingType", req.BookingType},
		field{"timeSlot", req.TimeSlot},
		field{"mode", req.Mode},
		field{"transactionId", req.TransactionID},
	); err != nil {
		return "", err
	}
	if req.ResourceQty <= 0 {
		return "", domain.NewValidationError("resourceQty", "resource quantity should be greater than 0")
	}
	if req.Amount <= 0 {
		return "", domain.NewValidationError("amount", "amount should be greater than 0")
	}
	if err := validateDate(req.BookingDate); err != nil {
		return "", err
	}

	bookingType, ok := domain.ParseBookingType(req.BookingType)
	if !ok {
		return "", domain.NewValidationError("bookingType", "unrecognized booking type %q", req.BookingType)
	}
	return bookingType, nil
}

type field struct {
	name  string
	value string
}

func required(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewValidationError(f.name, "%s is required", f.name)
		}
	}
	return nil
}

func validateDate(date string) error {
	if date == "" {
		return domain.NewValidationError("bookingDate", "bookingDate is required")
	}
	if _, err := time.Parse(bookingDateLayout, date); err != nil {
		return domain.NewValidationError("bookingDate", "bookingDate must be formatted as YYYY-MM-DD")
	}
	return nil
}

func joinSlots(slots []domain.TimeSlot) string {
	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = string(s)
	}
	return strings.Join(labels, ", ")
}
