package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aviato/internal/bookings"
	"aviato/internal/flights"
	"aviato/internal/shared/constants"
	"aviato/pkg/apperrors"
	"aviato/pkg/cache"
	"aviato/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier receives post-commit resolution events, best effort.
type Notifier interface {
	RefundApproved(ctx context.Context, userID uuid.UUID, ticketCode string, amount int64)
	RefundRejected(ctx context.Context, userID uuid.UUID, ticketCode string, reason string)
	RescheduleApproved(ctx context.Context, userID uuid.UUID, ticketCode string, newFlightID uuid.UUID)
}

type Service interface {
	PreviewRefund(ctx context.Context, ticketCode string, callerID uuid.UUID, isAdmin bool) (*RefundPreviewResponse, error)
	CreateRequest(ctx context.Context, callerID uuid.UUID, req CreateRefundRequest) (*RefundRequestResponse, error)
	ListMyRequests(ctx context.Context, userID uuid.UUID) ([]RefundRequestResponse, error)
	ListPending(ctx context.Context) ([]RefundRequestResponse, error)

	ApproveRefund(ctx context.Context, requestID string, req ApproveRequest) (*RefundRequestResponse, error)
	ApproveReschedule(ctx context.Context, requestID string, req RescheduleRequest) (*RefundRequestResponse, error)
	Reject(ctx context.Context, requestID string, req RejectRequest) (*RefundRequestResponse, error)
}

type service struct {
	repo          Repository
	ticketRepo    bookings.Repository
	flightService flights.Service
	cacheService  cache.Service
	notifier      Notifier

	// injectable clock for tests
	now func() time.Time
}

func NewService(repo Repository, ticketRepo bookings.Repository, flightService flights.Service) *service {
	return &service{
		repo:          repo,
		ticketRepo:    ticketRepo,
		flightService: flightService,
		now:           time.Now,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// PreviewRefund quotes the refund for a ticket at this instant without
// touching anything.
func (s *service) PreviewRefund(ctx context.Context, ticketCode string, callerID uuid.UUID, isAdmin bool) (*RefundPreviewResponse, error) {
	ticket, err := s.loadRefundableTicket(ctx, ticketCode, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	now := s.now()
	percent, amount := CalculateRefund(ticket.Price, ticket.Flight.DepartureTime, now)

	return &RefundPreviewResponse{
		TicketCode:     ticket.Code,
		OriginalAmount: ticket.Price,
		RefundPercent:  percent,
		RefundAmount:   amount,
		DepartureTime:  ticket.Flight.DepartureTime,
		EvaluatedAt:    now,
	}, nil
}

// CreateRequest opens a PENDING refund request for one of the caller's
// tickets. One live request per ticket.
func (s *service) CreateRequest(ctx context.Context, callerID uuid.UUID, req CreateRefundRequest) (*RefundRequestResponse, error) {
	ticket, err := s.loadRefundableTicket(ctx, req.TicketCode, callerID, false)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.HasPendingForTicket(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, apperrors.ErrStateConflict
	}

	request := &RefundRequest{
		TicketID: ticket.ID,
		UserID:   callerID,
		Status:   StatusPending,
		Reason:   req.Reason,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create refund request: %w", err)
	}

	logger.GetDefault().Info("refund request created",
		"request_id", request.ID.String(),
		"ticket_code", ticket.Code,
		"user_id", callerID.String())

	resp := toRequestResponse(request)
	resp.TicketCode = ticket.Code
	return resp, nil
}

func (s *service) ListMyRequests(ctx context.Context, userID uuid.UUID) ([]RefundRequestResponse, error) {
	requests, err := s.repo.GetRequestsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund requests: %w", err)
	}
	return toRequestResponses(requests), nil
}

func (s *service) ListPending(ctx context.Context) ([]RefundRequestResponse, error) {
	requests, err := s.repo.GetPendingRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending refund requests: %w", err)
	}
	return toRequestResponses(requests), nil
}

// ApproveRefund resolves a PENDING request as a payout. The tier is
// recomputed here, at approval time, with the current clock: the figures
// the customer saw at request time are a quote, not a promise.
func (s *service) ApproveRefund(ctx context.Context, requestID string, req ApproveRequest) (*RefundRequestResponse, error) {
	request, err := s.loadPendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Recompute from the ticket row as it stands now, not the snapshot
	// preloaded with the request; a reschedule in the meantime changes the
	// departure the tier keys on.
	ticket, err := s.ticketRepo.GetTicketByID(ctx, request.TicketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to reload ticket: %w", err)
	}
	if ticket.Flight == nil {
		return nil, fmt.Errorf("ticket %s has no flight loaded", ticket.ID)
	}

	now := s.now()
	percent, amount := CalculateRefund(ticket.Price, ticket.Flight.DepartureTime, now)

	notes := optionalString(req.Notes)
	if err := s.repo.ApproveRefundTx(ctx, request.ID, percent, amount, notes, now); err != nil {
		return nil, err
	}

	s.invalidateSeatMap(ctx, ticket.FlightID)
	logger.GetDefault().LogRefundApproved(ctx, request.ID.String(), request.TicketID.String(), amount, percent)

	if s.notifier != nil {
		s.notifier.RefundApproved(ctx, request.UserID, ticket.Code, amount)
	}

	return s.resolvedResponse(ctx, request.ID)
}

// ApproveReschedule resolves a PENDING request by moving the ticket to a
// seat on another flight. No money moves.
func (s *service) ApproveReschedule(ctx context.Context, requestID string, req RescheduleRequest) (*RefundRequestResponse, error) {
	request, err := s.loadPendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	newFlightID, err := uuid.Parse(req.NewFlightID)
	if err != nil {
		return nil, apperrors.NewValidation("new_flight_id", "invalid flight ID")
	}
	newSeatID, err := uuid.Parse(req.NewSeatID)
	if err != nil {
		return nil, apperrors.NewValidation("new_seat_id", "invalid seat ID")
	}

	now := s.now()
	flight, err := s.flightService.GetFlightEntity(ctx, newFlightID)
	if err != nil {
		return nil, err
	}
	if !flight.Status.IsBookable() {
		return nil, apperrors.ErrStateConflict
	}
	if flight.HasDeparted(now) {
		return nil, apperrors.NewValidation("new_flight_id", "new flight has already departed")
	}

	notes := optionalString(req.Notes)
	if err := s.repo.ApproveRescheduleTx(ctx, request.ID, newFlightID, newSeatID, notes, now); err != nil {
		return nil, err
	}

	s.invalidateSeatMap(ctx, request.Ticket.FlightID)
	s.invalidateSeatMap(ctx, newFlightID)
	logger.GetDefault().LogRescheduleApproved(ctx, request.ID.String(), request.TicketID.String(), newFlightID.String(), newSeatID.String())

	if s.notifier != nil {
		s.notifier.RescheduleApproved(ctx, request.UserID, request.Ticket.Code, newFlightID)
	}

	return s.resolvedResponse(ctx, request.ID)
}

// Reject closes a PENDING request; the ticket and seat stay untouched.
func (s *service) Reject(ctx context.Context, requestID string, req RejectRequest) (*RefundRequestResponse, error) {
	request, err := s.loadPendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RejectTx(ctx, request.ID, req.Reason, s.now()); err != nil {
		return nil, err
	}

	logger.GetDefault().Info("refund request rejected",
		"request_id", request.ID.String(),
		"ticket_id", request.TicketID.String())

	if s.notifier != nil {
		s.notifier.RefundRejected(ctx, request.UserID, request.Ticket.Code, req.Reason)
	}

	return s.resolvedResponse(ctx, request.ID)
}

// loadRefundableTicket fetches a ticket by code and verifies the caller may
// act on it and that it is still refundable.
func (s *service) loadRefundableTicket(ctx context.Context, code string, callerID uuid.UUID, isAdmin bool) (*bookings.Ticket, error) {
	if code == "" {
		return nil, apperrors.NewValidation("ticket_code", "required")
	}

	ticket, err := s.ticketRepo.GetTicketByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if !isAdmin && !ticket.BelongsTo(callerID) {
		return nil, apperrors.ErrUnauthorized
	}
	if !ticket.Status.CanBeRefunded() {
		return nil, apperrors.ErrStateConflict
	}
	if ticket.Flight == nil {
		return nil, fmt.Errorf("ticket %s has no flight loaded", ticket.ID)
	}

	return ticket, nil
}

// loadPendingRequest is the fast-path check before the transactional
// workflows; the transaction re-verifies PENDING under lock.
func (s *service) loadPendingRequest(ctx context.Context, requestID string) (*RefundRequest, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperrors.NewValidation("request_id", "invalid request ID")
	}

	request, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}
	if request.Status != StatusPending {
		return nil, apperrors.ErrStateConflict
	}
	if request.Ticket == nil || request.Ticket.Flight == nil {
		return nil, fmt.Errorf("refund request %s has no ticket loaded", request.ID)
	}

	return request, nil
}

func (s *service) resolvedResponse(ctx context.Context, requestID uuid.UUID) (*RefundRequestResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload refund request: %w", err)
	}
	return toRequestResponse(request), nil
}

func (s *service) invalidateSeatMap(ctx context.Context, flightID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildSeatMapKey(flightID.String())); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat map cache", "flight_id", flightID.String(), "error", err)
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func toRequestResponse(r *RefundRequest) *RefundRequestResponse {
	resp := &RefundRequestResponse{
		ID:            r.ID.String(),
		TicketID:      r.TicketID.String(),
		Status:        r.Status.String(),
		Reason:        r.Reason,
		RefundPercent: r.RefundPercent,
		RefundAmount:  r.RefundAmount,
		AdminNotes:    r.AdminNotes,
		ResolvedAt:    r.ResolvedAt,
		CreatedAt:     r.CreatedAt,
	}
	if r.Ticket != nil {
		resp.TicketCode = r.Ticket.Code
	}
	if r.NewFlightID != nil {
		v := r.NewFlightID.String()
		resp.NewFlightID = &v
	}
	if r.NewSeatID != nil {
		v := r.NewSeatID.String()
		resp.NewSeatID = &v
	}
	return resp
}

func toRequestResponses(requests []RefundRequest) []RefundRequestResponse {
	out := make([]RefundRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, *toRequestResponse(&requests[i]))
	}
	return out
}
