package viewer

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/0xpratik010/tridev/go/internal/connectjson"
	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

const ViewerServiceName = "viewer.v1.ViewerService"

var (
	ListSlotsProcedure    = connectjson.Procedure(ViewerServiceName, "ListSlots")
	GetSlotStateProcedure = connectjson.Procedure(ViewerServiceName, "GetSlotState")
)

type ListSlotsRequest struct{}

type ListSlotsResponse struct {
	Slots []SlotInfo `json:"slots"`
}

type GetSlotStateRequest struct {
	Slot     string `json:"slot"`
	TimeZone string `json:"time_zone"`
}

type GetSlotStateResponse struct {
	State *SlotState `json:"state"`
}

// Service implements ViewerService
type Service struct {
	app *App
}

func NewService(app *App) *Service {
	return &Service{app: app}
}

// ListSlots returns the configured slots
func (s *Service) ListSlots(_ context.Context, _ *connect.Request[ListSlotsRequest]) (*connect.Response[ListSlotsResponse], error) {
	return connect.NewResponse(&ListSlotsResponse{Slots: s.app.Slots()}), nil
}

// GetSlotState returns the current reveal state of one slot
func (s *Service) GetSlotState(ctx context.Context, req *connect.Request[GetSlotStateRequest]) (*connect.Response[GetSlotStateResponse], error) {
	slot, err := models.ParseSlot(req.Msg.Slot)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	loc, err := reveal.LoadZone(req.Msg.TimeZone, s.app.Location())
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	snap, err := s.app.GetSlotState(ctx, slot, loc)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&GetSlotStateResponse{State: NewSlotState(snap, s.app.SlotInfo(slot))}), nil
}

// NewViewerServiceHandler mounts the viewer service.
func NewViewerServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	listSlots := connect.NewUnaryHandler(ListSlotsProcedure, svc.ListSlots, opts...)
	getState := connect.NewUnaryHandler(GetSlotStateProcedure, svc.GetSlotState, opts...)
	return "/" + ViewerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ListSlotsProcedure:
			listSlots.ServeHTTP(w, r)
		case GetSlotStateProcedure:
			getState.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
