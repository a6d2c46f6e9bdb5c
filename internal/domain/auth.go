package domain

// LoginCredentials is submitted by the login form.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CustomerRegistration is submitted by the customer registration form.
type CustomerRegistration struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	CustomerEmail   string  `json:"customerEmail,omitempty"`
	AddressLine1    string  `json:"addressLine1,omitempty"`
	AddressLine2    string  `json:"addressLine2,omitempty"`
	City            string  `json:"city,omitempty"`
	District        string  `json:"district,omitempty"`
	PostalCode      string  `json:"postalCode,omitempty"`
	Country         string  `json:"country,omitempty"`
	DateOfBirth     *string `json:"dateOfBirth"`
	DisplayName     string  `json:"displayName,omitempty"`
	RolePermissions Role    `json:"rolePermissions,omitempty"`
	IsActive        bool    `json:"isActive"`
	Status          string  `json:"status,omitempty"`
}

// ServiceProviderRegistration is submitted by the service provider sign-up
// wizard. Optional numeric settings left nil receive defaults before
// submission.
type ServiceProviderRegistration struct {
	Email                 string `json:"email"`
	Password              string `json:"password"`
	IsActive              *bool  `json:"isActive"`
	CompanyName           string `json:"companyName"`
	BrandName             string `json:"brandName"`
	Phone                 string `json:"phone"`
	Description           string `json:"description"`
	AddressLine1          string `json:"addressLine1"`
	AddressLine2          string `json:"addressLine2,omitempty"`
	City                  string `json:"city"`
	District              string `json:"district"`
	PostalCode            string `json:"postalCode"`
	Country               string `json:"country"`
	MaxConcurrentBookings *int   `json:"maxConcurrentBookings"`
	MinLeadTimeDays       *int   `json:"minLeadTimeDays"`
	BookingWindowDays     *int   `json:"bookingWindowDays"`
	CreditPeriod          *int   `json:"creditPeriod"`
	BusinessLicense       string `json:"businessLicense"`
	TaxID                 string `json:"taxId"`
	CancellationPolicy    string `json:"cancellationPolicy"`
	PaymentMethods        string `json:"paymentMethods"`
	RolePermissions       Role   `json:"rolePermissions"`
}
