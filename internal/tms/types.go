package tms

// Party is an embedded company reference on a load.
type Party struct {
	ID          string `json:"_id"`
	CompanyName string `json:"company_name"`
}

// ChargeLine is one itemized pricing entry on a load. Revenue reporting
// deliberately uses the flat TotalAmount instead of summing these.
type ChargeLine struct {
	ChargeCode  string  `json:"chargeCode"`
	Description string  `json:"description"`
	FinalAmount float64 `json:"finalAmount"`
}

// Load is a raw load object as returned by the TMS. Absent fields stay
// at their zero value; the pipeline treats absence as absence, not as a
// reported zero.
type Load struct {
	ReferenceNumber   string       `json:"reference_number"`
	CallerName        string       `json:"callerName"`
	Caller            *Party       `json:"caller,omitempty"`
	ShipperName       string       `json:"shipperName"`
	ShipperAddress    string       `json:"shipperAddress"`
	ConsigneeName     string       `json:"consigneeName"`
	ConsigneeAddress  string       `json:"consigneeAddress"`
	TotalAmount       float64      `json:"totalAmount"`
	TotalWeight       float64      `json:"totalWeight"`
	TotalMiles        float64      `json:"totalMiles"`
	Status            string       `json:"status"`
	TypeOfLoad        string       `json:"type_of_load"`
	LoadCompletedAt   string       `json:"loadCompletedAt"`
	LoadCompletedDate string       `json:"loadCompletedDate"`
	ContainerNo       string       `json:"containerNo"`
	TerminalHold      bool         `json:"terminalHold"`
	Custom            string       `json:"custom"`
	Pricing           []ChargeLine `json:"pricing,omitempty"`
}

// CompletedAt returns the completion timestamp, preferring
// loadCompletedAt over the legacy loadCompletedDate field. Empty means
// the load has not been delivered yet.
func (l Load) CompletedAt() string {
	if l.LoadCompletedAt != "" {
		return l.LoadCompletedAt
	}
	return l.LoadCompletedDate
}

// Customer is a raw customer object from the TMS customer endpoint.
type Customer struct {
	ID          string `json:"_id"`
	CompanyName string `json:"company_name"`
}

// LoadsPage is one page of the paginated loads endpoint.
type LoadsPage struct {
	Count int    `json:"count"`
	Data  []Load `json:"data"`
}

// CustomersResponse wraps the customer list endpoint.
type CustomersResponse struct {
	Data []Customer `json:"data"`
}

// InvoicesPage is one page of the invoices endpoint. The dashboard does
// not consume invoices yet; the endpoint is exposed for parity with the
// TMS API surface.
type InvoicesPage struct {
	Count int              `json:"count"`
	Data  []map[string]any `json:"data"`
}

// ConnectionStatus is the result of a connectivity probe.
type ConnectionStatus struct {
	Status     string   `json:"status"`
	TotalLoads int      `json:"total_loads,omitempty"`
	SampleRefs []string `json:"sample_refs,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}
