// internal/brink/client.go
package brink

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// Client talks to the PAR Brink SOAP 1.1 services (sales2.svc, labor2.svc,
// Settings2.svc). Credentials ride as HTTP headers on every call.
type Client struct {
	salesURL    string
	laborURL    string
	settingsURL string
	httpc       *http.Client
	log         *zap.SugaredLogger
}

func NewClient(salesURL, laborURL, settingsURL string, log *zap.SugaredLogger) *Client {
	return &Client{
		salesURL:    salesURL,
		laborURL:    laborURL,
		settingsURL: settingsURL,
		httpc:       &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

func (c *Client) call(ctx context.Context, endpoint, action string, payload, out any) error {
	if endpoint == "" {
		return fmt.Errorf("brink endpoint not configured")
	}
	body, err := buildEnvelope(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", `text/xml; charset=utf-8`)
	req.Header.Set("SOAPAction", action)
	creds := credentialsFrom(ctx)
	req.Header.Set("AccessToken", creds.AccessToken)
	req.Header.Set("LocationToken", creds.LocationToken)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("brink unreachable: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	c.log.Debugw("brink call", "action", action, "status", resp.StatusCode, "dur_ms", time.Since(start).Milliseconds())
	// SOAP faults come back as 500 with an envelope; parse before failing on
	// the status code so callers see the fault string.
	if perr := parseEnvelope(raw, out); perr != nil {
		return perr
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("brink returned status %d", resp.StatusCode)
	}
	return nil
}

type ctxCredsKey struct{}

// WithCredentials attaches per-location credentials for subsequent calls.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, ctxCredsKey{}, creds)
}

func credentialsFrom(ctx context.Context) Credentials {
	if v := ctx.Value(ctxCredsKey{}); v != nil {
		if c, ok := v.(Credentials); ok {
			return c
		}
	}
	return Credentials{}
}

// resultHeader carries the vendor result code present on every response.
// Zero means success; anything else carries a message.
type resultHeader struct {
	ResultCode int    `xml:"ResultCode"`
	Message    string `xml:"Message"`
}

func (r resultHeader) err(op string) error {
	if r.ResultCode != 0 {
		return fmt.Errorf("%s failed with result code %d: %s", op, r.ResultCode, r.Message)
	}
	return nil
}

type getOrdersRequest struct {
	XMLName      xml.Name `xml:"GetOrders"`
	NS           string   `xml:"xmlns,attr"`
	BusinessDate string   `xml:"request>BusinessDate"`
}

type getOrdersResponse struct {
	XMLName xml.Name `xml:"GetOrdersResponse"`
	Result  struct {
		resultHeader
		Orders []Order `xml:"Orders>Order"`
	} `xml:"GetOrdersResult"`
}

// GetOrders returns the orders for one business date at the location bound
// to the context credentials.
func (c *Client) GetOrders(ctx context.Context, businessDate string) ([]Order, error) {
	var resp getOrdersResponse
	payload := getOrdersRequest{NS: salesNS, BusinessDate: businessDate}
	if err := c.call(ctx, c.salesURL, salesNS+"/ISalesWebService2/GetOrders", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.err("GetOrders"); err != nil {
		return nil, err
	}
	return resp.Result.Orders, nil
}

type getTillsRequest struct {
	XMLName      xml.Name `xml:"GetTills"`
	NS           string   `xml:"xmlns,attr"`
	BusinessDate string   `xml:"request>BusinessDate"`
}

type getTillsResponse struct {
	XMLName xml.Name `xml:"GetTillsResponse"`
	Result  struct {
		resultHeader
		Tills []Till `xml:"Tills>Till"`
	} `xml:"GetTillsResult"`
}

func (c *Client) GetTills(ctx context.Context, businessDate string) ([]Till, error) {
	var resp getTillsResponse
	payload := getTillsRequest{NS: salesNS, BusinessDate: businessDate}
	if err := c.call(ctx, c.salesURL, salesNS+"/ISalesWebService2/GetTills", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.err("GetTills"); err != nil {
		return nil, err
	}
	return resp.Result.Tills, nil
}

type getShiftsRequest struct {
	XMLName      xml.Name `xml:"GetShifts"`
	NS           string   `xml:"xmlns,attr"`
	BusinessDate string   `xml:"request>BusinessDate"`
}

type getShiftsResponse struct {
	XMLName xml.Name `xml:"GetShiftsResponse"`
	Result  struct {
		resultHeader
		Shifts []Shift `xml:"Shifts>Shift"`
	} `xml:"GetShiftsResult"`
}

func (c *Client) GetShifts(ctx context.Context, businessDate string) ([]Shift, error) {
	var resp getShiftsResponse
	payload := getShiftsRequest{NS: laborNS, BusinessDate: businessDate}
	if err := c.call(ctx, c.laborURL, laborNS+"/ILaborWebService2/GetShifts", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.err("GetShifts"); err != nil {
		return nil, err
	}
	return resp.Result.Shifts, nil
}

type getEmployeesRequest struct {
	XMLName xml.Name `xml:"GetEmployees"`
	NS      string   `xml:"xmlns,attr"`
}

type getEmployeesResponse struct {
	XMLName xml.Name `xml:"GetEmployeesResponse"`
	Result  struct {
		resultHeader
		Employees []Employee `xml:"Employees>Employee"`
	} `xml:"GetEmployeesResult"`
}

func (c *Client) GetEmployees(ctx context.Context) ([]Employee, error) {
	var resp getEmployeesResponse
	payload := getEmployeesRequest{NS: settingsNS}
	if err := c.call(ctx, c.settingsURL, settingsNS+"/ISettingsWebService2/GetEmployees", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.err("GetEmployees"); err != nil {
		return nil, err
	}
	return resp.Result.Employees, nil
}

type getLocationsRequest struct {
	XMLName xml.Name `xml:"GetLocations"`
	NS      string   `xml:"xmlns,attr"`
}

type getLocationsResponse struct {
	XMLName xml.Name `xml:"GetLocationsResponse"`
	Result  struct {
		resultHeader
		Locations []Location `xml:"Locations>Location"`
	} `xml:"GetLocationsResult"`
}

func (c *Client) GetLocations(ctx context.Context) ([]Location, error) {
	var resp getLocationsResponse
	payload := getLocationsRequest{NS: settingsNS}
	if err := c.call(ctx, c.settingsURL, settingsNS+"/ISettingsWebService2/GetLocations", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.err("GetLocations"); err != nil {
		return nil, err
	}
	return resp.Result.Locations, nil
}
