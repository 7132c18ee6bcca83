package model

import "time"

// RecordKind tags which entity a record carries.
type RecordKind string

const (
	KindOrder    RecordKind = "order"
	KindCustomer RecordKind = "customer"
)

func (k RecordKind) Valid() bool {
	return k == KindOrder || k == KindCustomer
}

// Record is a single export candidate. The payload matching Kind is owned by
// the record source and is read-only to the exporter.
type Record struct {
	ID       int64
	Kind     RecordKind
	Order    *Order
	Customer *Customer
}

// Address is shared between billing and shipping blocks. The json tags match
// the address columns as the shop tables store them.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type LineItem struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice float64
	Total     float64
}

type Order struct {
	ID             int64
	Number         string
	CreatedAt      time.Time
	Status         string
	ShippingTotal  float64
	ShippingTax    float64
	FeeTotal       float64
	FeeTax         float64
	TaxTotal       float64
	DiscountTotal  float64
	Total          float64
	PaymentMethod  string
	ShippingMethod string
	CustomerID     int64
	CustomerNote   string
	Billing        Address
	Shipping       Address
	Items          []LineItem
}

type Customer struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
	Billing   Address
	Shipping  Address
}
