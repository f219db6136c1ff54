package upstream

import "time"

// DTOs as consumed by the console. The backend owns the authoritative
// definitions; these are display copies.

// User is a platform account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Balance   float64   `json:"balance"`
	Frozen    bool      `json:"frozen"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account may reach the console.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// Market statuses move strictly forward: open -> closed -> resolved.
type Market struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ClosingDate time.Time `json:"closingDate"`
	Status      string    `json:"status"`
	Volume      float64   `json:"volume"`
	ImageURL    string    `json:"imageUrl"`
	MarketType  string    `json:"marketType"` // "binary" or "multiple_choice"
	Options     []string  `json:"options,omitempty"`
	PauseReason string    `json:"pauseReason,omitempty"`
}

type MarketPage struct {
	Markets    []Market `json:"markets"`
	Total      int      `json:"total"`
	TotalPages int      `json:"totalPages"`
}

type UserPage struct {
	Users      []User `json:"users"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// Deposit is a fiat deposit awaiting manual verification.
type Deposit struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Username          string    `json:"username"`
	Amount            float64   `json:"amount"`
	PaymentMethod     string    `json:"paymentMethod"`
	ReferenceNumber   string    `json:"referenceNumber"`
	Status            string    `json:"status"`
	VerificationNotes string    `json:"verificationNotes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type DepositPage struct {
	Deposits   []Deposit `json:"deposits"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

type Withdrawal struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Username          string    `json:"username"`
	Amount            float64   `json:"amount"`
	PaymentMethod     string    `json:"paymentMethod"`
	ReferenceNumber   string    `json:"referenceNumber"`
	Status            string    `json:"status"`
	VerificationNotes string    `json:"verificationNotes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type WithdrawalPage struct {
	Withdrawals []Withdrawal `json:"withdrawals"`
	Total       int          `json:"total"`
	TotalPages  int          `json:"totalPages"`
}

type Dispute struct {
	ID               string    `json:"id"`
	MarketID         string    `json:"marketId"`
	UserID           string    `json:"userId"`
	Reason           string    `json:"reason"`
	Evidence         string    `json:"evidence,omitempty"`
	Status           string    `json:"status"`
	Priority         string    `json:"priority"`
	ReviewNotes      string    `json:"reviewNotes,omitempty"`
	ResolutionAction string    `json:"resolutionAction,omitempty"`
	ResolutionNotes  string    `json:"resolutionNotes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type DisputePage struct {
	Disputes   []Dispute `json:"disputes"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

type DisputeStats struct {
	Total       int            `json:"total"`
	Pending     int            `json:"pending"`
	UnderReview int            `json:"underReview"`
	Approved    int            `json:"approved"`
	Rejected    int            `json:"rejected"`
	Resolved    int            `json:"resolved"`
	ByPriority  map[string]int `json:"byPriority,omitempty"`
}

// Transaction is a read-only ledger row. Amount is signed.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	MarketTitle string    `json:"marketTitle,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	TotalPages   int           `json:"totalPages"`
}

// BalanceEntry is one row of a user's balance history.
type BalanceEntry struct {
	ID           string    `json:"id"`
	Amount       float64   `json:"amount"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	BalanceAfter float64   `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

type BalanceHistoryPage struct {
	Entries    []BalanceEntry `json:"entries"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

// TreasuryOverview is the backend-computed treasury snapshot.
type TreasuryOverview struct {
	PlatformBalance   float64 `json:"platformBalance"`
	TotalUserBalances float64 `json:"totalUserBalances"`
	LockedFunds       float64 `json:"lockedFunds"`
	PlatformProfit30d float64 `json:"platformProfit30d"`
	ActiveUsers       int     `json:"activeUsers"`
	ActiveMarkets     int     `json:"activeMarkets"`
	LiquidityStatus   string  `json:"liquidityStatus"`
}

type LiquidityReport struct {
	Status             string  `json:"status"`
	AvailableLiquidity float64 `json:"availableLiquidity"`
	RequiredLiquidity  float64 `json:"requiredLiquidity"`
	Ratio              float64 `json:"ratio"`
}

type NegativeBalance struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
}

type TopHolder struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
}

// MarketHealth is a backend-scored liquidity/health row; the console
// only displays the numbers.
type MarketHealth struct {
	MarketID       string  `json:"marketId"`
	Title          string  `json:"title"`
	LiquidityScore float64 `json:"liquidityScore"`
	Spread         float64 `json:"spread"`
	OpenOrders     int     `json:"openOrders"`
	Status         string  `json:"status"`
}

// PayoutRow is one winner/loser line of a resolution preview.
type PayoutRow struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Shares   float64 `json:"shares"`
	Payout   float64 `json:"payout"`
}

// ResolutionPreview is the backend's dry-run payout computation.
// Requesting it never mutates backend state.
type ResolutionPreview struct {
	Market     Market `json:"market"`
	Resolution struct {
		Outcome *bool  `json:"outcome"` // true=YES, false=NO, nil=REFUND
		Type    string `json:"type"`
	} `json:"resolution"`
	Impact struct {
		TotalHolders       int     `json:"totalHolders"`
		TotalPayout        float64 `json:"totalPayout"`
		WinnersCount       int     `json:"winnersCount"`
		LosersCount        int     `json:"losersCount"`
		OpenOrdersToCancel int     `json:"openOrdersToCancel"`
	} `json:"impact"`
	Winners []PayoutRow `json:"winners"`
	Losers  []PayoutRow `json:"losers,omitempty"`
	HasMore struct {
		Winners bool `json:"winners"`
		Losers  bool `json:"losers"`
	} `json:"hasMore"`
}

type ScheduledResolution struct {
	ID           string    `json:"id"`
	MarketID     string    `json:"marketId"`
	MarketTitle  string    `json:"marketTitle"`
	Outcome      string    `json:"outcome"`
	ScheduledFor time.Time `json:"scheduledFor"`
	CreatedBy    string    `json:"createdBy"`
}

// DashboardStats is the admin dashboard aggregate card.
type DashboardStats struct {
	ActiveMarkets      int     `json:"activeMarkets"`
	TotalMarkets       int     `json:"totalMarkets"`
	TotalVolume        float64 `json:"totalVolume"`
	TotalUsers         int     `json:"totalUsers"`
	PendingDeposits    int     `json:"pendingDeposits"`
	PendingWithdrawals int     `json:"pendingWithdrawals"`
	OpenDisputes       int     `json:"openDisputes"`
}
