package brink

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	soapEnvNS  = "http://schemas.xmlsoap.org/soap/envelope/"
	salesNS    = "http://www.brinksoftware.com/webservices/sales/v2"
	laborNS    = "http://www.brinksoftware.com/webservices/labor/v2"
	settingsNS = "http://www.brinksoftware.com/webservices/settings/v2"
)

// requestEnvelope wraps an operation payload in a SOAP 1.1 envelope.
type requestEnvelope struct {
	XMLName xml.Name `xml:"s:Envelope"`
	EnvNS   string   `xml:"xmlns:s,attr"`
	Body    requestBody
}

type requestBody struct {
	XMLName xml.Name `xml:"s:Body"`
	Payload any
}

func buildEnvelope(payload any) ([]byte, error) {
	env := requestEnvelope{EnvNS: soapEnvNS, Body: requestBody{Payload: payload}}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// soapFault is a structured SOAP 1.1 fault.
type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail string `xml:"detail"`
}

func (f *soapFault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault *soapFault `xml:"Fault"`
		Inner []byte     `xml:",innerxml"`
	} `xml:"Body"`
}

// parseEnvelope unwraps the SOAP body, surfacing faults as errors, and
// unmarshals the operation response into out.
func parseEnvelope(raw []byte, out any) error {
	var env responseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse soap envelope: %w", err)
	}
	if env.Body.Fault != nil {
		return env.Body.Fault
	}
	if out == nil {
		return nil
	}
	if err := xml.Unmarshal(env.Body.Inner, out); err != nil {
		return fmt.Errorf("parse soap body: %w", err)
	}
	return nil
}
