package grpc_control

import (
	"context"
	"errors"
	"net"
	"testing"

	"synapse-console/src/helpers"
	"synapse-console/src/logger"
	"synapse-console/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeController struct {
	state        models.MDashboardState
	reconnectErr error
	loggedOut    bool
}

func (f *fakeController) Login(_ context.Context, username, password string) error {
	if password != "password" {
		return helpers.NewAuthenticationError("Invalid user credentials")
	}
	f.state.Authenticated = true
	return nil
}

func (f *fakeController) Logout()                         { f.loggedOut = true; f.state.Authenticated = false }
func (f *fakeController) Reconnect(context.Context) error { return f.reconnectErr }
func (f *fakeController) RefreshModels(context.Context)   {}

func (f *fakeController) SelectModel(id string) error {
	for i := range f.state.Models {
		if f.state.Models[i].ID.String() == id {
			m := f.state.Models[i]
			f.state.ActiveModel = &m
			return nil
		}
	}
	return errors.New("unknown model " + id)
}

func (f *fakeController) Snapshot() models.MDashboardState {
	s := f.state
	s.Type = "INITIAL"
	s.StreamState = "open"
	return s
}

func newTestClient(t *testing.T, ctrl *fakeController) *ConsoleControlClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterConsoleControlServer(srv, NewControlService(ctrl, logger.NewNopLogger()))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewConsoleControlClient(conn)
}

func TestGetSnapshot(t *testing.T) {
	ctrl := &fakeController{state: models.MDashboardState{
		Authenticated: true,
		Models:        []models.MModel{{ID: "m1", Name: "Momentum"}},
		Chart:         []models.MChartPoint{{Label: "00:00:00", Price: 101.5}},
	}}
	client := newTestClient(t, ctrl)

	snap, err := client.GetSnapshot(context.Background())
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	fields := snap.GetFields()
	if !fields["authenticated"].GetBoolValue() || fields["streamState"].GetStringValue() != "open" {
		t.Errorf("unexpected snapshot %v", snap)
	}
	chart := fields["chart"].GetListValue().GetValues()
	if len(chart) != 1 || chart[0].GetStructValue().GetFields()["price"].GetNumberValue() != 101.5 {
		t.Errorf("unexpected chart %v", chart)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     codes.Code
	}{
		{name: "missing password", username: "testuser", want: codes.InvalidArgument},
		{name: "bad credentials", username: "testuser", password: "nope", want: codes.Unauthenticated},
		{name: "success", username: "testuser", password: "password", want: codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &fakeController{})
			resp, err := client.Login(context.Background(), tt.username, tt.password)
			if got := status.Code(err); got != tt.want {
				t.Fatalf("code = %s, want %s (%v)", got, tt.want, err)
			}
			if tt.want == codes.OK && !resp.GetFields()["authenticated"].GetBoolValue() {
				t.Errorf("expected authenticated response, got %v", resp)
			}
			if tt.want == codes.Unauthenticated {
				if msg := status.Convert(err).Message(); msg != "Invalid user credentials" {
					t.Errorf("message = %q", msg)
				}
			}
		})
	}
}

func TestLogoutAndReconnect(t *testing.T) {
	ctrl := &fakeController{}
	client := newTestClient(t, ctrl)

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !ctrl.loggedOut {
		t.Error("expected controller logout")
	}

	resp, err := client.Reconnect(context.Background())
	if err != nil || resp.GetFields()["stream"].GetStringValue() != "open" {
		t.Fatalf("Reconnect = %v, %v", resp, err)
	}

	ctrl.reconnectErr = helpers.NewNetworkError("failed to connect to event stream", errors.New("refused"))
	if _, err := client.Reconnect(context.Background()); status.Code(err) != codes.Unavailable {
		t.Errorf("code = %s, want Unavailable", status.Code(err))
	}
}

func TestSelectModel(t *testing.T) {
	ctrl := &fakeController{state: models.MDashboardState{Models: []models.MModel{{ID: "m1", Name: "Momentum"}}}}
	client := newTestClient(t, ctrl)

	if _, err := client.SelectModel(context.Background(), "zzz"); status.Code(err) != codes.NotFound {
		t.Errorf("code = %s, want NotFound", status.Code(err))
	}
	if _, err := client.SelectModel(context.Background(), ""); status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %s, want InvalidArgument", status.Code(err))
	}

	resp, err := client.SelectModel(context.Background(), "m1")
	if err != nil {
		t.Fatalf("SelectModel: %v", err)
	}
	if resp.GetFields()["name"].GetStringValue() != "Momentum" {
		t.Errorf("unexpected response %v", resp)
	}
}
