package user

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a storefront customer keyed by the platform openid.
type User struct {
	OpenID    string          `json:"openid"`
	NickName  string          `json:"nickName"`
	AvatarURL string          `json:"avatarUrl"`
	Points    int64           `json:"points"`
	Balance   decimal.Decimal `json:"balance"`
	Role      Role            `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type PointsType string

const (
	PointsSpend  PointsType = "spend"
	PointsRefund PointsType = "refund"
)

// PointsRecord is an immutable points ledger entry. Balance is the user's
// points right after the change.
type PointsRecord struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Type        PointsType `json:"type"`
	Amount      int64      `json:"amount"`
	Balance     int64      `json:"balance"`
	OrderID     string     `json:"orderId"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Admin is a back-office account.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

type LoginResult struct {
	Token    string `json:"token"`
	AdminID  string `json:"adminId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
