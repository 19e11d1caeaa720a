package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(base string, obs metrics.Observer) *Client {
	return New(Config{
		BaseURL:     base,
		APIKey:      "secret",
		Timeout:     2 * time.Second,
		SubmitDelay: time.Millisecond,
	}, WithLogger(logging.Discard()), WithObserver(obs))
}

func TestLookupCustomerHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers", r.URL.Path)
		assert.Equal(t, "3305447", r.URL.Query().Get("machineNo"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 200,
			"data": map[string]any{
				"customer_name": " Ramesh Kumar ",
				"city":          "Kota",
				"machine_model": "3DX",
				"mobile":        "9876543210",
				"bp_code":       "BP100",
				"install_date":  "2021-04-01",
			},
		})
	}))
	defer srv.Close()

	obs := metrics.NewMemoryObserver()
	c := newTestClient(srv.URL, obs)
	cust, err := c.LookupCustomer(context.Background(), KindMachine, "3305447")
	require.NoError(t, err)
	require.NotNil(t, cust)
	assert.Equal(t, "Ramesh Kumar", cust.Name)
	assert.Equal(t, "3305447", cust.MachineID)
	assert.Equal(t, "9876543210", cust.Phone)

	events := obs.Named(metrics.EventLookup)
	require.Len(t, events, 1)
	assert.Equal(t, "hit", events[0].Tags["result"])
}

func TestLookupCustomerMissesAreNil(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"http_404": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		},
		"business_not_found": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":404,"message":"no such machine"}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			cust, err := newTestClient(srv.URL, nil).LookupCustomer(context.Background(), KindPhone, "9876543210")
			assert.NoError(t, err)
			assert.Nil(t, cust)
		})
	}
}

func TestSubmitComplaintSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var p Complaint
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "3305447", p.MachineNo)
		_, _ = w.Write([]byte(`{"status":200,"data":{"sap_id":"SAP-9001"}}`))
	}))
	defer srv.Close()

	res := newTestClient(srv.URL, nil).SubmitComplaint(context.Background(), Complaint{CallID: "CA1", MachineNo: "3305447"})
	assert.True(t, res.Success)
	assert.Equal(t, "SAP-9001", res.TicketID)
	assert.Equal(t, 1, res.Attempts)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSubmitComplaintRejectionIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"status":422,"message":"machine_no invalid"}`))
	}))
	defer srv.Close()

	res := newTestClient(srv.URL, nil).SubmitComplaint(context.Background(), Complaint{CallID: "CA1"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "machine_no invalid")
	assert.Equal(t, 1, res.Attempts)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSubmitComplaintRetriesRefusedConnection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	obs := metrics.NewMemoryObserver()
	res := newTestClient(base, obs).SubmitComplaint(context.Background(), Complaint{CallID: "CA1"})
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	require.Len(t, obs.Named(metrics.EventSubmit), 1)
}

func TestIsTransient(t *testing.T) {
	reset := &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}
	assert.True(t, IsTransient(reset))
	assert.True(t, IsTransient(&net.DNSError{Err: "no such host", Name: "api.invalid"}))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(errors.New("validation failed")))
	assert.False(t, IsTransient(nil))
}
