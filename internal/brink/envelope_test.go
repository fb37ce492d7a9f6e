package brink

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvelope(t *testing.T) {
	payload := getOrdersRequest{NS: salesNS, BusinessDate: "2024-06-01"}
	raw, err := buildEnvelope(payload)
	require.NoError(t, err)

	s := string(raw)
	assert.True(t, strings.HasPrefix(s, xml.Header))
	assert.Contains(t, s, `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">`)
	assert.Contains(t, s, `<GetOrders xmlns="http://www.brinksoftware.com/webservices/sales/v2">`)
	assert.Contains(t, s, `<request><BusinessDate>2024-06-01</BusinessDate></request>`)
}

func TestParseEnvelopeSuccess(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <GetOrdersResponse xmlns="http://www.brinksoftware.com/webservices/sales/v2">
      <GetOrdersResult>
        <ResultCode>0</ResultCode>
        <Orders>
          <Order>
            <Id>o-1</Id>
            <Number>101</Number>
            <NetSales>25.50</NetSales>
            <Tax>2.04</Tax>
            <Total>27.54</Total>
            <GuestCount>2</GuestCount>
            <IsVoided>false</IsVoided>
            <Payments>
              <Payment><Id>p-1</Id><Amount>27.54</Amount><TipAmount>5.00</TipAmount></Payment>
            </Payments>
          </Order>
        </Orders>
      </GetOrdersResult>
    </GetOrdersResponse>
  </s:Body>
</s:Envelope>`)

	var resp getOrdersResponse
	require.NoError(t, parseEnvelope(raw, &resp))
	assert.Equal(t, 0, resp.Result.ResultCode)
	require.Len(t, resp.Result.Orders, 1)
	o := resp.Result.Orders[0]
	assert.Equal(t, "o-1", o.ID)
	assert.Equal(t, "25.5", o.NetSales.String())
	assert.Equal(t, 2, o.GuestCount)
	require.Len(t, o.Payments, 1)
	assert.Equal(t, "5", o.Payments[0].TipAmount.String())
}

func TestParseEnvelopeFault(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <faultcode>s:Client</faultcode>
      <faultstring>Invalid location token</faultstring>
    </s:Fault>
  </s:Body>
</s:Envelope>`)

	var resp getOrdersResponse
	err := parseEnvelope(raw, &resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid location token")
}

func TestParseEnvelopeResultCode(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <GetShiftsResponse xmlns="http://www.brinksoftware.com/webservices/labor/v2">
      <GetShiftsResult>
        <ResultCode>3</ResultCode>
        <Message>Unknown business date</Message>
      </GetShiftsResult>
    </GetShiftsResponse>
  </s:Body>
</s:Envelope>`)

	var resp getShiftsResponse
	require.NoError(t, parseEnvelope(raw, &resp))
	err := resp.Result.err("GetShifts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result code 3")
	assert.Contains(t, err.Error(), "Unknown business date")
}
