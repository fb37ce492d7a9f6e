// Package brink is the PAR Brink POS SOAP client. Domain objects here are
// transient: parsed per request from the SOAP response and never persisted.
package brink

import (
	"github.com/shopspring/decimal"
)

// Credentials carry the per-tenant access token and the opaque
// per-location token issued by PAR Brink.
type Credentials struct {
	AccessToken   string
	LocationToken string
}

type Payment struct {
	ID         string          `xml:"Id" json:"id"`
	OrderID    string          `xml:"OrderId" json:"orderId"`
	Amount     decimal.Decimal `xml:"Amount" json:"amount"`
	TipAmount  decimal.Decimal `xml:"TipAmount" json:"tipAmount"`
	CardType   string          `xml:"CardType" json:"cardType,omitempty"`
	TenderName string          `xml:"TenderName" json:"tenderName,omitempty"`
}

type Order struct {
	ID           string          `xml:"Id" json:"id"`
	Number       string          `xml:"Number" json:"number"`
	Name         string          `xml:"Name" json:"name,omitempty"`
	EmployeeID   string          `xml:"EmployeeId" json:"employeeId,omitempty"`
	BusinessDate string          `xml:"BusinessDate" json:"businessDate"`
	OpenedTime   string          `xml:"OpenedTime" json:"openedTime,omitempty"`
	ClosedTime   string          `xml:"ClosedTime" json:"closedTime,omitempty"`
	NetSales     decimal.Decimal `xml:"NetSales" json:"netSales"`
	Tax          decimal.Decimal `xml:"Tax" json:"tax"`
	Total        decimal.Decimal `xml:"Total" json:"total"`
	GuestCount   int             `xml:"GuestCount" json:"guestCount"`
	IsVoided     bool            `xml:"IsVoided" json:"isVoided"`
	Payments     []Payment       `xml:"Payments>Payment" json:"payments,omitempty"`
}

type Shift struct {
	ID           string          `xml:"Id" json:"id"`
	EmployeeID   string          `xml:"EmployeeId" json:"employeeId"`
	JobID        string          `xml:"JobId" json:"jobId,omitempty"`
	BusinessDate string          `xml:"BusinessDate" json:"businessDate"`
	ClockInTime  string          `xml:"ClockInTime" json:"clockInTime,omitempty"`
	ClockOutTime string          `xml:"ClockOutTime" json:"clockOutTime,omitempty"`
	TotalMinutes int             `xml:"TotalMinutes" json:"totalMinutes"`
	PayRate      decimal.Decimal `xml:"PayRate" json:"payRate"`
}

type PaidInOut struct {
	ID          string          `xml:"Id" json:"id"`
	TillID      string          `xml:"TillId" json:"tillId,omitempty"`
	EmployeeID  string          `xml:"EmployeeId" json:"employeeId,omitempty"`
	Description string          `xml:"Description" json:"description,omitempty"`
	Amount      decimal.Decimal `xml:"Amount" json:"amount"`
	// IsPaidOut distinguishes cash leaving the drawer (tip payouts) from
	// cash coming in.
	IsPaidOut bool `xml:"IsPaidOut" json:"isPaidOut"`
}

type Till struct {
	ID           string          `xml:"Id" json:"id"`
	Name         string          `xml:"Name" json:"name,omitempty"`
	BusinessDate string          `xml:"BusinessDate" json:"businessDate"`
	StartAmount  decimal.Decimal `xml:"StartAmount" json:"startAmount"`
	PaidInOuts   []PaidInOut     `xml:"PaidInOuts>PaidInOut" json:"paidInOuts,omitempty"`
}

type Employee struct {
	ID          string   `xml:"Id" json:"id"`
	FirstName   string   `xml:"FirstName" json:"firstName"`
	LastName    string   `xml:"LastName" json:"lastName"`
	DisplayName string   `xml:"DisplayName" json:"displayName,omitempty"`
	Email       string   `xml:"Email" json:"email,omitempty"`
	Phone       string   `xml:"Phone" json:"phone,omitempty"`
	PayrollID   string   `xml:"PayrollId" json:"payrollId,omitempty"`
	IsActive    bool     `xml:"IsActive" json:"isActive"`
	JobIDs      []string `xml:"Jobs>Job>Id" json:"jobIds,omitempty"`
}

type Location struct {
	ID       string `xml:"Id" json:"id"`
	Name     string `xml:"Name" json:"name"`
	Timezone string `xml:"Timezone" json:"timezone,omitempty"`
	State    string `xml:"State" json:"state,omitempty"`
	Address  string `xml:"Address" json:"address,omitempty"`
}
