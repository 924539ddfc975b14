package luckynumbers

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/0xpratik010/tridev/go/internal/connectjson"
	"github.com/0xpratik010/tridev/go/internal/models"
)

// LuckyNumberServiceName is the fully-qualified name of the operator service.
const LuckyNumberServiceName = "luckynumber.v1.LuckyNumberService"

var (
	CreateLuckyNumberProcedure = connectjson.Procedure(LuckyNumberServiceName, "CreateLuckyNumber")
	GetLuckyNumberProcedure    = connectjson.Procedure(LuckyNumberServiceName, "GetLuckyNumber")
	UpdateLuckyNumberProcedure = connectjson.Procedure(LuckyNumberServiceName, "UpdateLuckyNumber")
	DeleteLuckyNumberProcedure = connectjson.Procedure(LuckyNumberServiceName, "DeleteLuckyNumber")
	ListLuckyNumbersProcedure  = connectjson.Procedure(LuckyNumberServiceName, "ListLuckyNumbers")
)

type CreateLuckyNumberRequest struct {
	Date       string `json:"date"`
	Slot       string `json:"slot"`
	Number     string `json:"number"`
	RevealTime string `json:"reveal_time"`
}

type CreateLuckyNumberResponse struct {
	LuckyNumber *View `json:"lucky_number"`
}

type GetLuckyNumberRequest struct {
	ID string `json:"id"`
}

type GetLuckyNumberResponse struct {
	LuckyNumber *View `json:"lucky_number"`
}

type UpdateLuckyNumberRequest struct {
	ID         string  `json:"id"`
	Date       *string `json:"date,omitempty"`
	Slot       *string `json:"slot,omitempty"`
	Number     *string `json:"number,omitempty"`
	RevealTime *string `json:"reveal_time,omitempty"`
}

type UpdateLuckyNumberResponse struct {
	LuckyNumber *View `json:"lucky_number"`
}

type DeleteLuckyNumberRequest struct {
	ID string `json:"id"`
}

type DeleteLuckyNumberResponse struct{}

type ListLuckyNumbersRequest struct{}

type ListLuckyNumbersResponse struct {
	LuckyNumbers []*View `json:"lucky_numbers"`
}

// LuckyNumbersApp defines what the service layer needs from the lucky numbers application
type LuckyNumbersApp interface {
	CreateLuckyNumber(ctx context.Context, draft Draft) (*models.LuckyNumber, error)
	GetLuckyNumber(ctx context.Context, id uuid.UUID) (*models.LuckyNumber, error)
	UpdateLuckyNumber(ctx context.Context, id uuid.UUID, patch Patch) (*models.LuckyNumber, error)
	DeleteLuckyNumber(ctx context.Context, id uuid.UUID) error
	ListLuckyNumbers(ctx context.Context) ([]models.LuckyNumber, error)
}

// Service implements the operator LuckyNumberService
type Service struct {
	app LuckyNumbersApp
}

// NewService creates a new lucky numbers service
func NewService(app LuckyNumbersApp) *Service {
	return &Service{
		app: app,
	}
}

// CreateLuckyNumber creates a new record
func (s *Service) CreateLuckyNumber(ctx context.Context, req *connect.Request[CreateLuckyNumberRequest]) (*connect.Response[CreateLuckyNumberResponse], error) {
	rec, err := s.app.CreateLuckyNumber(ctx, Draft{
		Date:       req.Msg.Date,
		Slot:       normalizeSlot(req.Msg.Slot),
		Number:     req.Msg.Number,
		RevealTime: req.Msg.RevealTime,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateLuckyNumberResponse{LuckyNumber: ToView(*rec)}), nil
}

// GetLuckyNumber retrieves a record by ID
func (s *Service) GetLuckyNumber(ctx context.Context, req *connect.Request[GetLuckyNumberRequest]) (*connect.Response[GetLuckyNumberResponse], error) {
	id, err := uuid.Parse(req.Msg.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	rec, err := s.app.GetLuckyNumber(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetLuckyNumberResponse{LuckyNumber: ToView(*rec)}), nil
}

// UpdateLuckyNumber applies the fields present in the request
func (s *Service) UpdateLuckyNumber(ctx context.Context, req *connect.Request[UpdateLuckyNumberRequest]) (*connect.Response[UpdateLuckyNumberResponse], error) {
	id, err := uuid.Parse(req.Msg.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	patch := Patch{
		Date:       req.Msg.Date,
		Number:     req.Msg.Number,
		RevealTime: req.Msg.RevealTime,
	}
	if req.Msg.Slot != nil {
		slot := normalizeSlot(*req.Msg.Slot)
		patch.Slot = &slot
	}

	rec, err := s.app.UpdateLuckyNumber(ctx, id, patch)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateLuckyNumberResponse{LuckyNumber: ToView(*rec)}), nil
}

// DeleteLuckyNumber removes a record
func (s *Service) DeleteLuckyNumber(ctx context.Context, req *connect.Request[DeleteLuckyNumberRequest]) (*connect.Response[DeleteLuckyNumberResponse], error) {
	id, err := uuid.Parse(req.Msg.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.app.DeleteLuckyNumber(ctx, id); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteLuckyNumberResponse{}), nil
}

// ListLuckyNumbers lists every record for the operator dashboard
func (s *Service) ListLuckyNumbers(ctx context.Context, req *connect.Request[ListLuckyNumbersRequest]) (*connect.Response[ListLuckyNumbersResponse], error) {
	recs, err := s.app.ListLuckyNumbers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListLuckyNumbersResponse{LuckyNumbers: ToViews(recs)}), nil
}

// NewLuckyNumberServiceHandler mounts every procedure of the service under one path prefix.
func NewLuckyNumberServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	create := connect.NewUnaryHandler(CreateLuckyNumberProcedure, svc.CreateLuckyNumber, opts...)
	get := connect.NewUnaryHandler(GetLuckyNumberProcedure, svc.GetLuckyNumber, opts...)
	update := connect.NewUnaryHandler(UpdateLuckyNumberProcedure, svc.UpdateLuckyNumber, opts...)
	del := connect.NewUnaryHandler(DeleteLuckyNumberProcedure, svc.DeleteLuckyNumber, opts...)
	list := connect.NewUnaryHandler(ListLuckyNumbersProcedure, svc.ListLuckyNumbers, opts...)

	return "/" + LuckyNumberServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CreateLuckyNumberProcedure:
			create.ServeHTTP(w, r)
		case GetLuckyNumberProcedure:
			get.ServeHTTP(w, r)
		case UpdateLuckyNumberProcedure:
			update.ServeHTTP(w, r)
		case DeleteLuckyNumberProcedure:
			del.ServeHTTP(w, r)
		case ListLuckyNumbersProcedure:
			list.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// normalizeSlot upper-cases known slot names and passes anything else
// through so validation can report it.
func normalizeSlot(v string) models.Slot {
	if slot, err := models.ParseSlot(v); err == nil {
		return slot
	}
	return models.Slot(v)
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrInvalidDraft), errors.Is(err, ErrEmptyPatch):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
