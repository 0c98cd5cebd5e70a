package models

// -----------------------------------------------------------------------------
// Game State (thin arithmetic model, no simulation logic)
// -----------------------------------------------------------------------------

type MPlayer struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Cash       float64            `json:"cash"`
	NetWorth   float64            `json:"net_worth"`
	Portfolio  map[string]float64 `json:"portfolio"` // symbol -> shares
	Reputation float64            `json:"reputation"`
	LegalRisk  float64            `json:"legal_risk"`
}

type MEmployee struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Role       string  `json:"role"` // analyst, trader, lawyer, manager, compliance
	Competence int     `json:"competence"`
	Loyalty    int     `json:"loyalty"`
	Salary     float64 `json:"salary"`
	HireDate   int64   `json:"hire_date"`
}

type MCompany struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Value       float64     `json:"value"`
	Employees   []MEmployee `json:"employees"`
	Performance float64     `json:"performance"`
	CashFlow    float64     `json:"cash_flow"`
}

type MContact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Loyalty      int    `json:"loyalty"`
	Influence    int    `json:"influence"`
	Relationship string `json:"relationship"` // ally, neutral, rival
}

// -----------------------------------------------------------------------------
// Player Actions
// -----------------------------------------------------------------------------

// MPlayerAction is the inner payload of a player_action message.
type MPlayerAction struct {
	Type   string  `json:"type"` // "trade" or "hire_employee"
	Symbol string  `json:"symbol,omitempty"`
	Side   string  `json:"side,omitempty"` // "buy" or "sell"
	Shares float64 `json:"shares,omitempty"`
	Name   string  `json:"name,omitempty"`
	Role   string  `json:"role,omitempty"`
}

type MTradeResult struct {
	Type      string  `json:"type"`
	Success   bool    `json:"success"`
	Symbol    string  `json:"symbol"`
	Shares    float64 `json:"shares"`
	Price     float64 `json:"price"`
	Error     string  `json:"error,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

type MHireResult struct {
	Type      string    `json:"type"`
	Success   bool      `json:"success"`
	Employee  MEmployee `json:"employee"`
	Timestamp int64     `json:"timestamp"`
}
