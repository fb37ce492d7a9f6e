package brink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestGetOrdersSendsCredentialHeaders(t *testing.T) {
	var gotAccess, gotLocation, gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccess = r.Header.Get("AccessToken")
		gotLocation = r.Header.Get("LocationToken")
		gotAction = r.Header.Get("SOAPAction")
		w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<GetOrdersResponse xmlns="http://www.brinksoftware.com/webservices/sales/v2">
<GetOrdersResult><ResultCode>0</ResultCode>
<Orders><Order><Id>o-1</Id><NetSales>10.00</NetSales></Order></Orders>
</GetOrdersResult></GetOrdersResponse></s:Body></s:Envelope>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", testLogger())
	ctx := WithCredentials(context.Background(), Credentials{AccessToken: "at-1", LocationToken: "lt-1"})
	orders, err := c.GetOrders(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "at-1", gotAccess)
	assert.Equal(t, "lt-1", gotLocation)
	assert.Contains(t, gotAction, "ISalesWebService2/GetOrders")
}

func TestCallSurfacesFaultOn500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<s:Fault><faultcode>s:Server</faultcode><faultstring>location offline</faultstring></s:Fault>
</s:Body></s:Envelope>`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", testLogger())
	_, err := c.GetShifts(context.Background(), "2024-06-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location offline")
}

func TestCallUnconfiguredEndpoint(t *testing.T) {
	c := NewClient("", "", "", testLogger())
	_, err := c.GetEmployees(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGetLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<GetLocationsResponse xmlns="http://www.brinksoftware.com/webservices/settings/v2">
<GetLocationsResult><ResultCode>0</ResultCode>
<Locations><Location><Id>1001</Id><Name>Downtown</Name><Timezone>America/Chicago</Timezone></Location></Locations>
</GetLocationsResult></GetLocationsResponse></s:Body></s:Envelope>`))
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL, testLogger())
	locs, err := c.GetLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "Downtown", locs[0].Name)
	assert.Equal(t, "America/Chicago", locs[0].Timezone)
}

func TestGetEmployeesParsesJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<GetEmployeesResponse xmlns="http://www.brinksoftware.com/webservices/settings/v2">
<GetEmployeesResult><ResultCode>0</ResultCode>
<Employees><Employee>
<Id>e-1</Id><FirstName>Ana</FirstName><LastName>Diaz</LastName>
<PayrollId>PR-100</PayrollId><IsActive>true</IsActive>
<Jobs><Job><Id>j-1</Id></Job><Job><Id>j-2</Id></Job></Jobs>
</Employee></Employees>
</GetEmployeesResult></GetEmployeesResponse></s:Body></s:Envelope>`))
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL, testLogger())
	emps, err := c.GetEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, "PR-100", emps[0].PayrollID)
	assert.Equal(t, []string{"j-1", "j-2"}, emps[0].JobIDs)
}
