package luckynumbers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xpratik010/tridev/go/internal/connectjson"
)

func newTestServer(t *testing.T) (*httptest.Server, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	path, handler := NewLuckyNumberServiceHandler(NewService(NewApp(repo)), connectjson.WithCodec())
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestServiceRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	create := connect.NewClient[CreateLuckyNumberRequest, CreateLuckyNumberResponse](
		srv.Client(), srv.URL+CreateLuckyNumberProcedure, connectjson.WithCodec())
	get := connect.NewClient[GetLuckyNumberRequest, GetLuckyNumberResponse](
		srv.Client(), srv.URL+GetLuckyNumberProcedure, connectjson.WithCodec())

	res, err := create.CallUnary(ctx, connect.NewRequest(&CreateLuckyNumberRequest{
		Date: "2024-06-01", Slot: "night", Number: "0042", RevealTime: "19:00",
	}))
	require.NoError(t, err)
	assert.Equal(t, "NIGHT", res.Msg.LuckyNumber.Slot)
	assert.Equal(t, "7:00 PM", res.Msg.LuckyNumber.RevealTimeLabel)

	got, err := get.CallUnary(ctx, connect.NewRequest(&GetLuckyNumberRequest{ID: res.Msg.LuckyNumber.ID}))
	require.NoError(t, err)
	assert.Equal(t, "0042", got.Msg.LuckyNumber.Number)
}

func TestServiceErrorCodes(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	create := connect.NewClient[CreateLuckyNumberRequest, CreateLuckyNumberResponse](
		srv.Client(), srv.URL+CreateLuckyNumberProcedure, connectjson.WithCodec())
	del := connect.NewClient[DeleteLuckyNumberRequest, DeleteLuckyNumberResponse](
		srv.Client(), srv.URL+DeleteLuckyNumberProcedure, connectjson.WithCodec())

	_, err := create.CallUnary(ctx, connect.NewRequest(&CreateLuckyNumberRequest{
		Date: "2024-06-01", Slot: "DAY", Number: "12345678", RevealTime: "11:00",
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = del.CallUnary(ctx, connect.NewRequest(&DeleteLuckyNumberRequest{ID: "not-a-uuid"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = del.CallUnary(ctx, connect.NewRequest(&DeleteLuckyNumberRequest{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae7"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestToConnectError(t *testing.T) {
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(toConnectError(errors.New("boom"))))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(toConnectError(ErrEmptyPatch)))
}
