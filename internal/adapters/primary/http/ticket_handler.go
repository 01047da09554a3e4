package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/lorrc/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// PagingConfig bounds the page size clients may ask for.
type PagingConfig struct {
	DefaultSize int
	MaxSize     int
}

func (p PagingConfig) parse(r *http.Request) domain.PageRequest {
	params := validation.ParsePage(r, p.DefaultSize, p.MaxSize)
	return domain.PageRequest{Index: params.Page, Size: params.Count}
}

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService ports.TicketService
	paging        PagingConfig
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	ticketService ports.TicketService,
	paging PagingConfig,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		paging:        paging,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)
	r.Put("/", h.HandleUpdateTicket)
	r.Get("/search", h.HandleSearchTickets)
	r.Get("/summary", h.HandleSummary)

	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Delete("/", h.HandleDeleteTicket)
		r.Put("/status", h.HandleChangeStatus)
	})
}

// --- Request/Response DTOs ---

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest carries the ticket id in the body.
type UpdateTicketRequest struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	AssigneeID  *string `json:"assigneeId"`
}

// ChangeStatusRequest defines the expected JSON body for status changes
type ChangeStatusRequest struct {
	Status      string `json:"status"`
	Description string `json:"description"`
}

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID          uuid.UUID             `json:"id"`
	Number      int                   `json:"number"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      string                `json:"status"`
	Priority    string                `json:"priority"`
	OwnerID     uuid.UUID             `json:"ownerId"`
	AssigneeID  *uuid.UUID            `json:"assigneeId"`
	CreatedAt   string                `json:"createdAt"`
	Changes     []domain.HistoryEntry `json:"changes,omitempty"`
}

// StatusCountDTO is one row of the summary response.
type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func toTicketDTO(ticket *domain.Ticket) TicketDTO {
	return TicketDTO{
		ID:          ticket.ID,
		Number:      ticket.Number,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		Priority:    string(ticket.Priority),
		OwnerID:     ticket.OwnerID,
		AssigneeID:  ticket.AssigneeID,
		CreatedAt:   ticket.CreatedAt.UTC().Format(time.RFC3339),
		Changes:     ticket.Changes,
	}
}

func toTicketPage(page *domain.Page[*domain.Ticket]) *domain.Page[TicketDTO] {
	return domain.MapPage(page, toTicketDTO)
}

// --- Handlers ---

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[CreateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), caller, ports.CreateTicketParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created",
		"ticket_id", ticket.ID,
		"number", ticket.Number,
	)

	WriteCreated(w, toTicketDTO(ticket))
}

// HandleUpdateTicket handles PUT /tickets
func (h *TicketHandler) HandleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[UpdateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	v := validation.NewValidator()
	ticketID := v.UUID("id", req.ID, "Id must be a valid UUID")
	assigneeID := v.OptionalUUID("assigneeId", req.AssigneeID, "Assignee id must be a valid UUID")
	if err := v.Err(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.UpdateTicket(r.Context(), caller, ports.UpdateTicketParams{
		TicketID:    ticketID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
		AssigneeID:  assigneeID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, notFound(err, req.ID))
		return
	}

	WriteSuccess(w, toTicketDTO(ticket))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	ticketID, raw, err := parseIDParam(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), caller, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, notFound(err, raw))
		return
	}

	WriteSuccess(w, toTicketDTO(ticket))
}

// HandleDeleteTicket handles DELETE /tickets/{ticketID}
func (h *TicketHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	ticketID, raw, err := parseIDParam(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.ticketService.DeleteTicket(r.Context(), caller, ticketID); err != nil {
		h.errorHandler.Handle(w, r, notFound(err, raw))
		return
	}

	h.logger.InfoContext(r.Context(), "ticket deleted", "ticket_id", ticketID)

	WriteSuccess(w, nil)
}

// HandleListTickets handles GET /tickets?page=&count=
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	page, err := h.ticketService.ListTickets(r.Context(), caller, h.paging.parse(r))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toTicketPage(page))
}

// HandleSearchTickets handles GET /tickets/search. Each of title, status and
// priority may be omitted or sent as "uninformed"; number <= 0 is ignored.
func (h *TicketHandler) HandleSearchTickets(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.ticketService.SearchTickets(r.Context(), caller, ports.SearchTicketsParams{
		Title:        q.Get("title"),
		Status:       q.Get("status"),
		Priority:     q.Get("priority"),
		Number:       validation.ParseIntQueryParam(r, "number", 0),
		AssignedOnly: validation.ParseBoolQueryParam(r, "assigned", false),
		Page:         h.paging.parse(r),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toTicketPage(page))
}

// HandleChangeStatus handles PUT /tickets/{ticketID}/status
func (h *TicketHandler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	ticketID, raw, err := parseIDParam(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeJSON[ChangeStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.ChangeStatus(r.Context(), caller, ports.ChangeStatusParams{
		TicketID:    ticketID,
		Status:      domain.TicketStatus(req.Status),
		Description: req.Description,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, notFound(err, raw))
		return
	}

	h.logger.InfoContext(r.Context(), "ticket status changed",
		"ticket_id", ticketID,
		"status", ticket.Status,
	)

	WriteSuccess(w, toTicketDTO(ticket))
}

// HandleSummary handles GET /tickets/summary
func (h *TicketHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	counts, err := h.ticketService.Summary(r.Context(), caller)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	out := make([]StatusCountDTO, 0, len(counts))
	for _, c := range counts {
		out = append(out, StatusCountDTO{Status: string(c.Status), Count: c.Count})
	}
	WriteSuccess(w, out)
}

// --- Helpers ---

func (h *TicketHandler) caller(w http.ResponseWriter, r *http.Request) (*domain.Caller, bool) {
	return requireCaller(w, r, h.errorHandler)
}

func requireCaller(w http.ResponseWriter, r *http.Request, eh *ErrorHandler) (*domain.Caller, bool) {
	caller, ok := mw.CallerFromContext(r.Context())
	if !ok {
		eh.Handle(w, r, apperrors.ErrUnauthorized)
		return nil, false
	}
	return caller, true
}

// parseIDParam reads a UUID path parameter. It also returns the raw text
// for not-found messages.
func parseIDParam(r *http.Request, name string) (uuid.UUID, string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, raw, apperrors.NewBadRequestError(err, "Invalid id: "+raw)
	}
	return id, raw, nil
}
