package history

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/0xpratik010/tridev/go/internal/connectjson"
	"github.com/0xpratik010/tridev/go/internal/luckynumbers"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

const HistoryServiceName = "history.v1.HistoryService"

var ListPastLuckyNumbersProcedure = connectjson.Procedure(HistoryServiceName, "ListPastLuckyNumbers")

type ListPastLuckyNumbersRequest struct {
	Window   string `json:"window"`
	TimeZone string `json:"time_zone"`
}

type ListPastLuckyNumbersResponse struct {
	Window       string               `json:"window"`
	LuckyNumbers []*luckynumbers.View `json:"lucky_numbers"`
}

// Service implements HistoryService
type Service struct {
	app *App
}

func NewService(app *App) *Service {
	return &Service{app: app}
}

// ListPastLuckyNumbers returns revealed records for a retention window
func (s *Service) ListPastLuckyNumbers(ctx context.Context, req *connect.Request[ListPastLuckyNumbersRequest]) (*connect.Response[ListPastLuckyNumbersResponse], error) {
	window, err := ParseWindow(req.Msg.Window)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	loc, err := reveal.LoadZone(req.Msg.TimeZone, s.app.loc)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	records := s.app.PastRecordsIn(ctx, window, loc)
	return connect.NewResponse(&ListPastLuckyNumbersResponse{
		Window:       string(window),
		LuckyNumbers: luckynumbers.ToViews(records),
	}), nil
}

// NewHistoryServiceHandler mounts the history service.
func NewHistoryServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	list := connect.NewUnaryHandler(ListPastLuckyNumbersProcedure, svc.ListPastLuckyNumbers, opts...)
	return "/" + HistoryServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ListPastLuckyNumbersProcedure:
			list.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

